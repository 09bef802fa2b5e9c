package commands

import (
	"log"
	"strings"
)

var ChatFormat *Command

func init() {
	ChatFormat = Define(Definition{
		Name:        "chatformat",
		Aliases:     []string{"format"},
		Usage:       "/chatformat [set <name>|clear|list|reload]",
		Description: "show, switch, clear, or reload chat formats",
	}, func(ctx *Context) bool {
		arg := strings.TrimSpace(ctx.Arg)
		word, rest, _ := strings.Cut(arg, " ")
		switch word {
		case "":
			current, err := ctx.Core.Formats.ForPlayer(ctx.Player, ctx.Core.Prefs.Get(ctx.Player.Name))
			if err != nil {
				ctx.Core.Tell(ctx.Player, "chat.no_format", nil)
				return false
			}
			ctx.Core.Tell(ctx.Player, "format.current", map[string]string{"format": current.Name})
			listFormats(ctx)
		case "list":
			listFormats(ctx)
		case "clear":
			if err := ctx.Core.Prefs.SetFormat(ctx.Player.Name, ""); err != nil {
				log.Printf("persist format for %s: %v", ctx.Player.Name, err)
			}
			ctx.Core.Tell(ctx.Player, "format.cleared", nil)
		case "reload":
			if !ctx.Player.IsAdmin {
				ctx.Core.Tell(ctx.Player, "command.denied", nil)
				return false
			}
			if err := ctx.Core.Formats.Reload(); err != nil {
				log.Printf("reload formats: %v", err)
				ctx.Core.Tell(ctx.Player, "format.reload_failed", nil)
				return false
			}
			if err := ctx.Core.Catalog.Reload(); err != nil {
				log.Printf("reload messages: %v", err)
				ctx.Core.Tell(ctx.Player, "format.reload_failed", nil)
				return false
			}
			ctx.Core.Tell(ctx.Player, "format.reloaded", nil)
		case "set":
			setFormat(ctx, strings.TrimSpace(rest))
		default:
			// Bare "/chatformat staff" still switches.
			setFormat(ctx, arg)
		}
		return false
	})
}

func listFormats(ctx *Context) {
	available := ctx.Core.Formats.Available(ctx.Player)
	ctx.Core.Tell(ctx.Player, "format.list", map[string]string{"formats": strings.Join(available, ", ")})
}

func setFormat(ctx *Context, name string) {
	if name == "" {
		ctx.Core.Tell(ctx.Player, "command.usage", map[string]string{"usage": ChatFormat.Usage})
		return
	}
	format, ok := ctx.Core.Formats.Lookup(name)
	if !ok {
		ctx.Core.Tell(ctx.Player, "format.unknown", map[string]string{"format": name})
		return
	}
	if format.AdminOnly && !ctx.Player.IsAdmin {
		ctx.Core.Tell(ctx.Player, "command.denied", nil)
		return
	}
	if err := ctx.Core.Prefs.SetFormat(ctx.Player.Name, format.Name); err != nil {
		log.Printf("persist format for %s: %v", ctx.Player.Name, err)
	}
	ctx.Core.Tell(ctx.Player, "format.set", map[string]string{"format": format.Name})
}
