package chat

// Notifier delivers rendered chat to a player's session. Tests install a
// capturing implementation.
type Notifier interface {
	Send(viewer *Player, message *Text)
	MentionAlert(viewer, mentioner *Player)
	Bell(viewer *Player)
}

// SessionNotifier renders to ANSI and writes to the player's output channel.
type SessionNotifier struct {
	config   Config
	resolver *Resolver
}

func NewSessionNotifier(config Config, resolver *Resolver) *SessionNotifier {
	return &SessionNotifier{config: config, resolver: resolver}
}

func (n *SessionNotifier) Send(viewer *Player, message *Text) {
	n.write(viewer, Ansi(message.ANSI()))
}

// Bell rings the recipient's terminal bell, the session stand-in for a
// notification sound.
func (n *SessionNotifier) Bell(viewer *Player) {
	n.write(viewer, "\a")
}

// write drops output if the session's buffer is full or its channel closed
// mid-delivery; a slow or vanished client must not stall the loop.
func (n *SessionNotifier) write(viewer *Player, line string) {
	if viewer == nil || !viewer.Alive {
		return
	}
	defer func() { _ = recover() }()
	select {
	case viewer.Output <- line:
	default:
	}
}

// MentionAlert raises the configured mention effects, each behind its own
// toggle: the bell, the title banner, and the action bar line. The banner
// texts resolve provider tokens against the mentioner.
func (n *SessionNotifier) MentionAlert(viewer, mentioner *Player) {
	cfg := n.config.Mention
	render := func(template string) string {
		markup := ApplyPlaceholders(template, map[string]string{
			"mentioner": mentioner.Name,
			"mentioned": viewer.Name,
		})
		markup = n.resolver.ExpandDirectional(markup,
			Party{"mentioner", mentioner}, Party{"mentioned", viewer})
		return Ansi(ParseMarkup(markup, nil).ANSI())
	}
	if cfg.Sound {
		n.Bell(viewer)
	}
	if cfg.TitleEnabled && cfg.Title != "" {
		n.write(viewer, render(cfg.Title))
	}
	if cfg.BarEnabled && cfg.Bar != "" {
		n.write(viewer, render(cfg.Bar))
	}
}
