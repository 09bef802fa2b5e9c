package chat

import (
	"regexp"
	"sync"

	"github.com/google/uuid"
)

// MentionEngine detects player names inside chat messages and builds the
// per-viewer highlighted variants. The highlight is a markup template
// resolved with mentioner/mentioned context; the resulting component replaces
// the first occurrence of the name, bounded by a style reset on both sides so
// its styling never bleeds into the surrounding text. Variants are keyed by
// the chat line's correlation token and must be cleared once that line has
// fanned out.
type MentionEngine struct {
	mu           sync.Mutex
	template     string
	resolver     *Resolver
	patterns     map[string]*regexp.Regexp
	personalized map[uuid.UUID]map[string]*Text
}

func NewMentionEngine(template string, resolver *Resolver) *MentionEngine {
	return &MentionEngine{
		template:     template,
		resolver:     resolver,
		patterns:     make(map[string]*regexp.Regexp),
		personalized: make(map[uuid.UUID]map[string]*Text),
	}
}

func (m *MentionEngine) pattern(name string) *regexp.Regexp {
	folded := FoldName(name)
	if compiled, ok := m.patterns[folded]; ok {
		return compiled
	}
	compiled, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return nil
	}
	m.patterns[folded] = compiled
	return compiled
}

// highlight resolves the template for one mentioner/mentioned pair. The
// mentioned party runs first so unprefixed provider tokens bind to the player
// the variant is built for.
func (m *MentionEngine) highlight(mentioner, mentioned *Player) *Text {
	markup := ApplyPlaceholders(m.template, map[string]string{
		"mentioner": mentioner.Name,
		"mentioned": mentioned.Name,
	})
	if m.resolver != nil {
		markup = m.resolver.ExpandDirectional(markup,
			Party{"mentioned", mentioned}, Party{"mentioner", mentioner})
	}
	return ParseMarkup(markup, nil)
}

// Scan checks the message for each viewer's name and stores a highlighted
// variant under the token for every viewer mentioned. Viewers who disabled
// mentions are skipped. The mentioned players are returned so the caller can
// raise their notification effects.
func (m *MentionEngine) Scan(token uuid.UUID, message *Text, sender *Player, viewers []*Player, prefs *PrefStore) []*Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mentioned []*Player
	for _, viewer := range viewers {
		if !prefs.Get(viewer.Name).MentionsEnabled {
			continue
		}
		pattern := m.pattern(viewer.Name)
		if pattern == nil {
			continue
		}
		variant, ok := spliceFirst(message, pattern, m.highlight(sender, viewer))
		if !ok {
			continue
		}
		byViewer, exists := m.personalized[token]
		if !exists {
			byViewer = make(map[string]*Text)
			m.personalized[token] = byViewer
		}
		byViewer[FoldName(viewer.Name)] = variant
		mentioned = append(mentioned, viewer)
	}
	return mentioned
}

// Personalized returns the viewer's highlighted variant for the token.
func (m *MentionEngine) Personalized(token uuid.UUID, viewer string) (*Text, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	variant, ok := m.personalized[token][FoldName(viewer)]
	return variant, ok
}

// Clear drops every variant stored under the token. Fan-out must call this
// on every path, including cancellation, or variants accumulate.
func (m *MentionEngine) Clear(token uuid.UUID) {
	m.mu.Lock()
	delete(m.personalized, token)
	m.mu.Unlock()
}

// Pending reports how many chat lines still have stored variants.
func (m *MentionEngine) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.personalized)
}

// spliceFirst replaces the first whole-word occurrence of the pattern in the
// message with the highlight component. Text outside the match keeps its own
// style and metadata; the component carries only its own, so the splice acts
// as a reset boundary in both directions.
func spliceFirst(message *Text, pattern *regexp.Regexp, component *Text) (*Text, bool) {
	plain := message.Plain()
	loc := pattern.FindStringIndex(plain)
	if loc == nil {
		return nil, false
	}
	root := &Text{}
	offset := 0
	inserted := false
	for _, leaf := range mergeSpans(message.flatten(nil)) {
		end := offset + len(leaf.content)
		if end <= loc[0] || offset >= loc[1] {
			root.children = append(root.children, spanText(leaf, leaf.content))
			offset = end
			continue
		}
		from := max(loc[0]-offset, 0)
		to := min(loc[1]-offset, len(leaf.content))
		if from > 0 {
			root.children = append(root.children, spanText(leaf, leaf.content[:from]))
		}
		if !inserted {
			root.children = append(root.children, component.clone())
			inserted = true
		}
		if to < len(leaf.content) {
			root.children = append(root.children, spanText(leaf, leaf.content[to:]))
		}
		offset = end
	}
	return root, true
}

func spanText(leaf span, content string) *Text {
	out := &Text{content: content, style: leaf.style}
	if leaf.hover != nil {
		out.hover = leaf.hover
	}
	if leaf.click != nil {
		click := *leaf.click
		out.click = &click
	}
	return out
}
