package commands

import "log"

var MsgToggle = Define(Definition{
	Name:        "msgtoggle",
	Usage:       "/msgtoggle",
	Description: "enable or disable receiving private messages",
}, func(ctx *Context) bool {
	enabled := !ctx.Core.Prefs.Get(ctx.Player.Name).MessagesEnabled
	if err := ctx.Core.Prefs.SetMessagesEnabled(ctx.Player.Name, enabled); err != nil {
		log.Printf("persist message toggle for %s: %v", ctx.Player.Name, err)
	}
	if enabled {
		ctx.Core.Tell(ctx.Player, "messages.enabled", nil)
	} else {
		ctx.Core.Tell(ctx.Player, "messages.disabled", nil)
	}
	return false
})

var SocialSpy = Define(Definition{
	Name:        "socialspy",
	Usage:       "/socialspy",
	Description: "watch other players' private messages (admin only)",
}, func(ctx *Context) bool {
	if !ctx.Player.IsAdmin {
		ctx.Core.Tell(ctx.Player, "command.denied", nil)
		return false
	}
	enabled := !ctx.Core.Prefs.Get(ctx.Player.Name).SocialSpy
	if err := ctx.Core.Prefs.SetSocialSpy(ctx.Player.Name, enabled); err != nil {
		log.Printf("persist social spy for %s: %v", ctx.Player.Name, err)
	}
	if enabled {
		ctx.Core.Tell(ctx.Player, "spy.enabled", nil)
	} else {
		ctx.Core.Tell(ctx.Player, "spy.disabled", nil)
	}
	return false
})

var Mentions = Define(Definition{
	Name:        "mentions",
	Usage:       "/mentions",
	Description: "enable or disable mention highlighting and alerts",
}, func(ctx *Context) bool {
	enabled := !ctx.Core.Prefs.Get(ctx.Player.Name).MentionsEnabled
	if err := ctx.Core.Prefs.SetMentionsEnabled(ctx.Player.Name, enabled); err != nil {
		log.Printf("persist mention toggle for %s: %v", ctx.Player.Name, err)
	}
	if enabled {
		ctx.Core.Tell(ctx.Player, "mentions.enabled", nil)
	} else {
		ctx.Core.Tell(ctx.Player, "mentions.disabled", nil)
	}
	return false
})
