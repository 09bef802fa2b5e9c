package chat

import (
	"time"

	"golang.org/x/text/cases"
)

// Player represents a connected chatter.
type Player struct {
	Name     string
	Account  string
	Session  *TelnetSession
	Output   chan string
	Alive    bool
	IsAdmin  bool
	JoinedAt time.Time
	history  []time.Time
}

const (
	inputLimit  = 5
	inputWindow = time.Second
)

// allowInput applies the per-player flood window to a submitted line.
func (p *Player) allowInput(now time.Time) bool {
	cutoff := now.Add(-inputWindow)
	filtered := p.history[:0]
	for _, t := range p.history {
		if t.After(cutoff) {
			filtered = append(filtered, t)
		}
	}
	p.history = filtered
	if len(p.history) >= inputLimit {
		return false
	}
	p.history = append(p.history, now)
	return true
}

var nameFolder = cases.Fold()

// FoldName canonicalises a player name for case-insensitive lookups.
func FoldName(name string) string {
	return nameFolder.String(name)
}
