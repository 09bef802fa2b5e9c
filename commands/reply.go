package commands

var Reply = Define(Definition{
	Name:        "reply",
	Aliases:     []string{"r"},
	Usage:       "/reply <message>",
	Description: "continue your most recent private conversation",
}, func(ctx *Context) bool {
	if ctx.Arg == "" {
		ctx.Core.Tell(ctx.Player, "command.usage", map[string]string{"usage": ctx.Command.Usage})
		return false
	}
	target, ok := ctx.Core.Messages.ReplyTarget(ctx.Player)
	if !ok {
		ctx.Core.Tell(ctx.Player, "private.no_reply_target", nil)
		return false
	}
	ctx.Core.Messages.Send(ctx.Player, target, ctx.Arg)
	return false
})
