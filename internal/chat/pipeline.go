package chat

import (
	"log"

	"github.com/google/uuid"
)

// Pipeline runs a public chat line from raw input to per-viewer delivery.
// Everything up to the delivery job is computed on the calling goroutine;
// one batched task is then posted to the delivery loop.
type Pipeline struct {
	core *Core
}

func NewPipeline(core *Core) *Pipeline {
	return &Pipeline{core: core}
}

// expandFormat pre-resolves a format's templates against the sender: literal
// name tokens first, then provider tokens. The %message% slot stays open so
// each viewer receives their own variant.
func (p *Pipeline) expandFormat(format *Format, sender *Player) *Format {
	base := map[string]string{
		"player": sender.Name,
		"sender": sender.Name,
	}
	expand := func(section FormatSection) FormatSection {
		out := FormatSection{
			Value: p.core.Resolver.Expand(sender, ApplyPlaceholders(section.Value, base)),
		}
		for _, line := range section.Tooltip {
			out.Tooltip = append(out.Tooltip, p.core.Resolver.Expand(sender, ApplyPlaceholders(line, base)))
		}
		if section.Click != nil {
			out.Click = &ClickSpec{
				Kind:    section.Click.Kind,
				Command: p.core.Resolver.Expand(sender, ApplyPlaceholders(section.Click.Command, base)),
			}
		}
		return out
	}
	return &Format{
		Name:      format.Name,
		Priority:  format.Priority,
		AdminOnly: format.AdminOnly,
		Prefix:    expand(format.Prefix),
		Player:    expand(format.Player),
		Separator: expand(format.Separator),
		Message:   expand(format.Message),
	}
}

// ProcessChat handles one public chat line from sender. It returns
// ErrNoFormat when no format can be resolved; other outcomes, including
// cancellation by an event handler, report nil.
func (p *Pipeline) ProcessChat(sender *Player, raw string) error {
	body := SanitizeMessage(raw)
	if body == "" {
		return nil
	}
	format, err := p.core.Formats.ForPlayer(sender, p.core.Prefs.Get(sender.Name))
	if err != nil {
		p.core.Tell(sender, "chat.no_format", nil)
		return err
	}

	// Only admins may style their own message text.
	var message *Text
	if sender.IsAdmin {
		message = ParseMarkup(body, nil)
	} else {
		message = NewText(body, Style{})
	}

	if p.core.Config.Console.Enabled {
		log.Print(ApplyPlaceholders(p.core.Config.Console.Format, map[string]string{
			"sender":  sender.Name,
			"message": message.Plain(),
		}))
	}

	token := uuid.New()
	others := make([]*Player, 0)
	for _, viewer := range p.core.Players() {
		if viewer != sender {
			others = append(others, viewer)
		}
	}
	// Mentions run only when enabled globally and for the sender; a player
	// who turned mentions off neither receives nor triggers them.
	var mentioned []*Player
	if p.core.Config.Mention.Enabled && p.core.Prefs.Get(sender.Name).MentionsEnabled {
		mentioned = p.core.Mentions.Scan(token, message, sender, others, p.core.Prefs)
	}

	ev := p.core.Bus.EmitChat(ChatEvent{Token: token, Sender: sender, Message: message})
	if ev.Cancelled {
		p.core.Mentions.Clear(token)
		return nil
	}
	message = ev.Message

	// Mention effects are gated per target; the highlighted rendering is
	// not, so a cancelled mention still shows the target their own name.
	alerts := make([]*Player, 0, len(mentioned))
	for _, target := range mentioned {
		mev := p.core.Bus.EmitMention(MentionEvent{Token: token, Sender: sender, Target: target})
		if !mev.Cancelled {
			alerts = append(alerts, target)
		}
	}

	expanded := p.expandFormat(format, sender)
	type delivery struct {
		viewer *Player
		line   *Text
	}
	deliveries := make([]delivery, 0, len(others)+1)
	render := func(viewer *Player, variant *Text) {
		line := expanded.Line(map[string]string{
			"viewer":  viewer.Name,
			"message": variant.Markup(),
		})
		// Final pass: provider tokens are viewer-relative, so anything the
		// sender pass left unresolved gets one more chance against the
		// player actually receiving the line.
		final := ParseMarkup(p.core.Resolver.Expand(viewer, line.Markup()), nil)
		deliveries = append(deliveries, delivery{viewer: viewer, line: final})
	}
	render(sender, message)
	for _, viewer := range others {
		if p.core.Prefs.IsIgnoring(viewer.Name, sender.Name) {
			continue
		}
		variant := message
		if personal, ok := p.core.Mentions.Personalized(token, viewer.Name); ok {
			variant = personal
		}
		render(viewer, variant)
	}

	posted := p.core.Loop.Submit(func() {
		defer p.core.Mentions.Clear(token)
		for _, d := range deliveries {
			p.core.Notifier.Send(d.viewer, d.line)
		}
		for _, target := range alerts {
			p.core.Notifier.MentionAlert(target, sender)
		}
	})
	if !posted {
		p.core.Mentions.Clear(token)
	}
	return nil
}
