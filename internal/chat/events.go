package chat

import (
	"sync"

	"github.com/google/uuid"
)

// ChatEvent is raised once per public chat line, before fan-out. Handlers may
// cancel delivery or rewrite the message.
type ChatEvent struct {
	Token     uuid.UUID
	Sender    *Player
	Message   *Text
	Cancelled bool
}

// PrivateMessageEvent is raised after a private message passes its
// preconditions but before it is delivered. Sound starts from the configured
// default; a handler may clear it to deliver silently.
type PrivateMessageEvent struct {
	Token     uuid.UUID
	Sender    *Player
	Recipient *Player
	Message   *Text
	Sound     bool
	Cancelled bool
}

// MentionEvent is raised once per mentioned player in a chat line.
// Cancelling it suppresses the notification effects for that player only;
// the highlighted rendering of the line is unaffected.
type MentionEvent struct {
	Token     uuid.UUID
	Sender    *Player
	Target    *Player
	Cancelled bool
}

// Bus fans events out to registered handlers in registration order. Handler
// sets are append-only for the life of the process.
type Bus struct {
	mu       sync.RWMutex
	chat     []func(*ChatEvent)
	private  []func(*PrivateMessageEvent)
	mentions []func(*MentionEvent)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) OnChat(handler func(*ChatEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chat = append(b.chat, handler)
}

func (b *Bus) OnPrivateMessage(handler func(*PrivateMessageEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.private = append(b.private, handler)
}

func (b *Bus) OnMention(handler func(*MentionEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mentions = append(b.mentions, handler)
}

// EmitChat runs every chat handler over the event and returns the final
// state. Handlers run even after a cancellation so later ones can observe it.
func (b *Bus) EmitChat(ev ChatEvent) ChatEvent {
	b.mu.RLock()
	handlers := b.chat
	b.mu.RUnlock()
	for _, handler := range handlers {
		handler(&ev)
	}
	return ev
}

func (b *Bus) EmitPrivateMessage(ev PrivateMessageEvent) PrivateMessageEvent {
	b.mu.RLock()
	handlers := b.private
	b.mu.RUnlock()
	for _, handler := range handlers {
		handler(&ev)
	}
	return ev
}

func (b *Bus) EmitMention(ev MentionEvent) MentionEvent {
	b.mu.RLock()
	handlers := b.mentions
	b.mu.RUnlock()
	for _, handler := range handlers {
		handler(&ev)
	}
	return ev
}
