package commands

import "EmberChat/internal/chat"

var Quit = Define(Definition{
	Name:        "quit",
	Aliases:     []string{"q"},
	Usage:       "/quit",
	Description: "disconnect",
}, func(ctx *Context) bool {
	ctx.Player.Output <- chat.Ansi("Goodbye.\r\n")
	return true
})
