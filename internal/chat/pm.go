package chat

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// PrivateMessageEngine handles direct messages: preconditions, the three
// renders, reply bookkeeping, and social spy fan-out.
type PrivateMessageEngine struct {
	core *Core

	mu       sync.Mutex
	lastSent map[string]string
}

func NewPrivateMessageEngine(core *Core) *PrivateMessageEngine {
	return &PrivateMessageEngine{
		core:     core,
		lastSent: make(map[string]string),
	}
}

// render builds one view of the message. Unprefixed provider tokens resolve
// against the player the view belongs to, so the primary party runs first.
func (e *PrivateMessageEngine) render(path string, sender, recipient, primary *Player, message *Text) *Text {
	template := e.core.Catalog.Message(path)
	template = ApplyPlaceholders(template, map[string]string{
		"sender":    sender.Name,
		"recipient": recipient.Name,
		"message":   message.Markup(),
	})
	parties := []Party{{"sender", sender}, {"recipient", recipient}}
	if primary == recipient {
		parties[0], parties[1] = parties[1], parties[0]
	}
	template = e.core.Resolver.ExpandDirectional(template, parties...)
	return ParseMarkup(template, nil)
}

// Send delivers a private message and reports whether it went through. Every
// failed precondition tells the sender why with its own catalog message.
func (e *PrivateMessageEngine) Send(sender *Player, recipientName, raw string) bool {
	body := SanitizeMessage(raw)
	if body == "" {
		return false
	}
	recipient, online := e.core.FindPlayer(recipientName)
	if !online {
		e.core.Tell(sender, "private.not_found", map[string]string{"target": recipientName})
		return false
	}
	if recipient == sender {
		e.core.Tell(sender, "private.self", nil)
		return false
	}
	if !e.core.Prefs.Get(sender.Name).MessagesEnabled {
		e.core.Tell(sender, "private.sender_disabled", nil)
		return false
	}
	if !sender.IsAdmin {
		if !e.core.Prefs.Get(recipient.Name).MessagesEnabled {
			e.core.Tell(sender, "private.recipient_disabled", map[string]string{"recipient": recipient.Name})
			return false
		}
		if e.core.Prefs.IsIgnoring(recipient.Name, sender.Name) {
			e.core.Tell(sender, "private.ignored_by", map[string]string{"recipient": recipient.Name})
			return false
		}
	}
	if e.core.Prefs.IsIgnoring(sender.Name, recipient.Name) {
		e.core.Tell(sender, "private.ignoring", map[string]string{"recipient": recipient.Name})
		return false
	}

	var message *Text
	if sender.IsAdmin {
		message = ParseMarkup(body, nil)
	} else {
		message = NewText(body, Style{})
	}

	ev := e.core.Bus.EmitPrivateMessage(PrivateMessageEvent{
		Token:     uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Message:   message,
		Sound:     e.core.Config.MessageSound,
	})
	if ev.Cancelled {
		return false
	}
	message = ev.Message

	senderView := e.render("private.sender_format", sender, recipient, sender, message)
	recipientView := e.render("private.recipient_format", sender, recipient, recipient, message)
	spyView := e.render("private.spy_format", sender, recipient, sender, message)

	e.mu.Lock()
	e.lastSent[FoldName(sender.Name)] = recipient.Name
	e.mu.Unlock()
	if err := e.core.Prefs.SetLastMessager(recipient.Name, sender.Name); err != nil {
		log.Printf("persist last messager for %s: %v", recipient.Name, err)
	}

	spies := make([]*Player, 0)
	for _, viewer := range e.core.Players() {
		if viewer == sender || viewer == recipient {
			continue
		}
		if e.core.Prefs.Get(viewer.Name).SocialSpy {
			spies = append(spies, viewer)
		}
	}

	e.core.Loop.Submit(func() {
		e.core.Notifier.Send(sender, senderView)
		e.core.Notifier.Send(recipient, recipientView)
		if ev.Sound {
			e.core.Notifier.Bell(recipient)
		}
		for _, spy := range spies {
			e.core.Notifier.Send(spy, spyView)
		}
	})
	return true
}

// ReplyTarget resolves who /reply should message: the player who last
// messaged the sender, or with reply_to_last_sent enabled, the player the
// sender last messaged.
func (e *PrivateMessageEngine) ReplyTarget(sender *Player) (string, bool) {
	if e.core.Config.ReplyToLastSent {
		e.mu.Lock()
		target, ok := e.lastSent[FoldName(sender.Name)]
		e.mu.Unlock()
		return target, ok && target != ""
	}
	target := e.core.Prefs.Get(sender.Name).LastMessager
	return target, target != ""
}
