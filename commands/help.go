package commands

import (
	"fmt"
	"strings"

	"EmberChat/internal/chat"
)

var Help = Define(Definition{
	Name:        "help",
	Aliases:     []string{"?"},
	Usage:       "/help",
	Description: "show this message",
}, func(ctx *Context) bool {
	var builder strings.Builder
	builder.WriteString(chat.StyleText("Commands:\r\n", chat.AnsiBold, chat.AnsiUnderline))
	for _, cmd := range All() {
		usage := cmd.Usage
		if strings.TrimSpace(usage) == "" {
			usage = "/" + cmd.Name
		}
		builder.WriteString(fmt.Sprintf("  %-22s - %s\r\n", usage, cmd.Description))
	}
	builder.WriteString("Anything without a leading / is said to everyone.")
	ctx.Player.Output <- chat.Ansi(builder.String())
	return false
})
