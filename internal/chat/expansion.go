package chat

import "strconv"

// BuiltinExpansion exposes chat state as %emberchat_*% placeholder tokens so
// formats and hook scripts can reference it.
type BuiltinExpansion struct {
	prefs   *PrefStore
	formats *FormatRegistry
}

func NewBuiltinExpansion(prefs *PrefStore, formats *FormatRegistry) *BuiltinExpansion {
	return &BuiltinExpansion{prefs: prefs, formats: formats}
}

func (e *BuiltinExpansion) Identifier() string {
	return "emberchat"
}

func (e *BuiltinExpansion) Resolve(subject *Player, token string) (string, bool) {
	if subject == nil {
		return "", false
	}
	prefs := e.prefs.Get(subject.Name)
	switch token {
	case "name":
		return subject.Name, true
	case "format":
		format, err := e.formats.ForPlayer(subject, prefs)
		if err != nil {
			return "", true
		}
		return format.Name, true
	case "messages_enabled":
		return strconv.FormatBool(prefs.MessagesEnabled), true
	case "social_spy":
		return strconv.FormatBool(prefs.SocialSpy), true
	case "mentions_enabled":
		return strconv.FormatBool(prefs.MentionsEnabled), true
	case "last_messager":
		return prefs.LastMessager, true
	case "ignored_count":
		return strconv.Itoa(len(prefs.Ignored)), true
	}
	return "", false
}
