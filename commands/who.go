package commands

import "strconv"

var Who = Define(Definition{
	Name:        "who",
	Usage:       "/who",
	Description: "list connected players",
}, func(ctx *Context) bool {
	players := ctx.Core.Players()
	ctx.Core.Tell(ctx.Player, "who.header", map[string]string{"count": strconv.Itoa(len(players))})
	for _, player := range players {
		ctx.Core.Tell(ctx.Player, "who.entry", map[string]string{"player": player.Name})
	}
	return false
})
