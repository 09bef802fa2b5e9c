package commands

import (
	"log"
	"strings"

	"EmberChat/internal/chat"
)

var Ignore = Define(Definition{
	Name:        "ignore",
	Usage:       "/ignore <player>",
	Description: "toggle whether a player's chat and messages reach you",
}, func(ctx *Context) bool {
	target := strings.TrimSpace(ctx.Arg)
	if target == "" {
		ctx.Core.Tell(ctx.Player, "command.usage", map[string]string{"usage": ctx.Command.Usage})
		return false
	}
	if chat.FoldName(target) == chat.FoldName(ctx.Player.Name) {
		ctx.Core.Tell(ctx.Player, "ignore.self", nil)
		return false
	}
	if other, online := ctx.Core.FindPlayer(target); online {
		target = other.Name
	}
	ignored, err := ctx.Core.Prefs.ToggleIgnore(ctx.Player.Name, target)
	if err != nil {
		log.Printf("persist ignore list for %s: %v", ctx.Player.Name, err)
	}
	if ignored {
		ctx.Core.Tell(ctx.Player, "ignore.added", map[string]string{"target": target})
	} else {
		ctx.Core.Tell(ctx.Player, "ignore.removed", map[string]string{"target": target})
	}
	return false
})
