// Example hook script. Drop .go files in this directory; each may declare
// OnChat, OnPrivateMessage, and OnMention, taking a map[string]any payload.
package script

import "strings"

func OnChat(payload map[string]any) {
	message, _ := payload["message"].(string)
	if strings.Contains(strings.ToLower(message), "spamword") {
		if cancel, ok := payload["cancel"].(func()); ok {
			cancel()
		}
	}
}
