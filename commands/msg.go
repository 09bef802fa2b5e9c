package commands

import "strings"

var Msg = Define(Definition{
	Name:        "msg",
	Aliases:     []string{"tell", "m", "w"},
	Usage:       "/msg <player> <message>",
	Description: "send a private message to an online player",
}, func(ctx *Context) bool {
	fields := strings.Fields(ctx.Arg)
	if len(fields) < 2 {
		ctx.Core.Tell(ctx.Player, "command.usage", map[string]string{"usage": ctx.Command.Usage})
		return false
	}
	target := fields[0]
	message := strings.TrimSpace(strings.TrimPrefix(ctx.Arg, target))
	ctx.Core.Messages.Send(ctx.Player, target, message)
	return false
})
