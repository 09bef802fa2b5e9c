package chat

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Expansion resolves tokens of the form %identifier_token% against a subject
// player. Returning false passes the token through untouched.
type Expansion interface {
	Identifier() string
	Resolve(subject *Player, token string) (string, bool)
}

var placeholderPattern = regexp.MustCompile(`%([A-Za-z0-9]+)_([A-Za-z0-9_.]+)%`)

// Resolver substitutes placeholder tokens in markup templates. Literal tokens
// come from a per-call map, provider tokens from registered expansions.
type Resolver struct {
	mu         sync.RWMutex
	expansions map[string]Expansion
}

func NewResolver() *Resolver {
	return &Resolver{expansions: make(map[string]Expansion)}
}

// Register makes an expansion available for token resolution.
func (r *Resolver) Register(e Expansion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident := strings.ToLower(e.Identifier())
	if _, exists := r.expansions[ident]; exists {
		return fmt.Errorf("expansion %q already registered", ident)
	}
	r.expansions[ident] = e
	return nil
}

// Expand resolves provider tokens against the subject player. Tokens whose
// identifier is unknown, or which the provider declines, pass through
// unchanged so a later pass can still resolve them.
func (r *Resolver) Expand(subject *Player, template string) string {
	if !strings.Contains(template, "%") {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		inner := match[1 : len(match)-1]
		idx := strings.IndexByte(inner, '_')
		ident := strings.ToLower(inner[:idx])
		r.mu.RLock()
		expansion, ok := r.expansions[ident]
		r.mu.RUnlock()
		if !ok {
			return match
		}
		if value, resolved := expansion.Resolve(subject, inner[idx+1:]); resolved {
			return value
		}
		return match
	})
}

// Party binds a directional token prefix, such as sender or recipient, to
// the player those tokens resolve against.
type Party struct {
	Prefix  string
	Subject *Player
}

// ExpandDirectional resolves a multi-party template. Each party's prefixed
// tokens are rewritten by stripping the prefix and running a normal expansion
// pass against that party. Parties run in order, and the first pass also
// resolves unprefixed tokens, so list the party the rendered view belongs to
// first.
func (r *Resolver) ExpandDirectional(template string, parties ...Party) string {
	for _, party := range parties {
		template = r.Expand(party.Subject, strings.ReplaceAll(template, "%"+party.Prefix+"_", "%"))
	}
	return template
}
