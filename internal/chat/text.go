package chat

import (
	"strings"
)

// Style describes the visual attributes applied to a single span of text.
type Style struct {
	Color     string
	Bold      bool
	Italic    bool
	Underline bool
	Dim       bool
}

// IsZero reports whether the style carries no attributes.
func (s Style) IsZero() bool {
	return s == Style{}
}

// ClickAction describes an interaction attached to a span, such as suggesting
// a command when the span is activated.
type ClickAction struct {
	Kind    string
	Payload string
}

// Text is an immutable tree of styled spans. Each span carries content, an
// optional hover text shown on inspection, and an optional click action.
// Mutating operations return a new tree and leave the receiver untouched.
type Text struct {
	content  string
	style    Style
	hover    *Text
	click    *ClickAction
	children []*Text
}

// NewText builds a single styled span.
func NewText(content string, style Style) *Text {
	return &Text{content: content, style: style}
}

// EmptyText returns a span with no content, style, or metadata.
func EmptyText() *Text {
	return &Text{}
}

// Content returns the span's own content, excluding children.
func (t *Text) Content() string {
	if t == nil {
		return ""
	}
	return t.content
}

// SpanStyle returns the span's style.
func (t *Text) SpanStyle() Style {
	if t == nil {
		return Style{}
	}
	return t.style
}

// Hover returns the hover text attached to this span, if any.
func (t *Text) Hover() (*Text, bool) {
	if t == nil || t.hover == nil {
		return nil, false
	}
	return t.hover, true
}

// Click returns the click action attached to this span, if any.
func (t *Text) Click() (ClickAction, bool) {
	if t == nil || t.click == nil {
		return ClickAction{}, false
	}
	return *t.click, true
}

func (t *Text) clone() *Text {
	if t == nil {
		return &Text{}
	}
	out := &Text{content: t.content, style: t.style}
	if t.hover != nil {
		out.hover = t.hover.clone()
	}
	if t.click != nil {
		click := *t.click
		out.click = &click
	}
	if len(t.children) > 0 {
		out.children = make([]*Text, len(t.children))
		for i, child := range t.children {
			out.children[i] = child.clone()
		}
	}
	return out
}

// Append concatenates other onto the receiver, returning a new tree. Each
// child keeps its own style, hover, and click metadata; concatenation never
// merges spans.
func (t *Text) Append(other *Text) *Text {
	out := t.clone()
	if other != nil {
		out.children = append(out.children, other.clone())
	}
	return out
}

// WithHover attaches hover text to the span, replacing any prior hover.
func (t *Text) WithHover(hover *Text) *Text {
	out := t.clone()
	if hover == nil {
		out.hover = nil
	} else {
		out.hover = hover.clone()
	}
	return out
}

// WithClick attaches a click action to the span, replacing any prior action.
func (t *Text) WithClick(click ClickAction) *Text {
	out := t.clone()
	out.click = &click
	return out
}

// Plain flattens the tree to its unstyled textual content.
func (t *Text) Plain() string {
	if t == nil {
		return ""
	}
	var builder strings.Builder
	t.plainInto(&builder)
	return builder.String()
}

func (t *Text) plainInto(builder *strings.Builder) {
	builder.WriteString(t.content)
	for _, child := range t.children {
		child.plainInto(builder)
	}
}

// span is one flattened leaf used for serialization and comparison.
type span struct {
	content string
	style   Style
	hover   *Text
	click   *ClickAction
}

func (t *Text) flatten(out []span) []span {
	if t == nil {
		return out
	}
	if t.content != "" {
		out = append(out, span{content: t.content, style: t.style, hover: t.hover, click: t.click})
	} else if t.hover != nil || t.click != nil {
		// Metadata on a contentless node applies to its children.
		for _, child := range t.children {
			for _, leaf := range child.flatten(nil) {
				if leaf.hover == nil {
					leaf.hover = t.hover
				}
				if leaf.click == nil {
					leaf.click = t.click
				}
				out = append(out, leaf)
			}
		}
		return out
	}
	for _, child := range t.children {
		out = child.flatten(out)
	}
	return out
}

func mergeSpans(spans []span) []span {
	merged := make([]span, 0, len(spans))
	for _, leaf := range spans {
		if leaf.content == "" {
			continue
		}
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.style == leaf.style && sameHover(last.hover, leaf.hover) && sameClick(last.click, leaf.click) {
				last.content += leaf.content
				continue
			}
		}
		merged = append(merged, leaf)
	}
	return merged
}

func sameHover(a, b *Text) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return a.Equal(b)
	}
}

func sameClick(a, b *ClickAction) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}

// Equal reports whether two trees render identical content: the same text
// split across the same style, hover, and click boundaries. Span grouping
// that does not affect presentation is ignored.
func (t *Text) Equal(other *Text) bool {
	left := mergeSpans(t.flatten(nil))
	right := mergeSpans(other.flatten(nil))
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i].content != right[i].content || left[i].style != right[i].style {
			return false
		}
		if !sameHover(left[i].hover, right[i].hover) || !sameClick(left[i].click, right[i].click) {
			return false
		}
	}
	return true
}

var markupColors = map[string]bool{
	"black":   true,
	"red":     true,
	"green":   true,
	"yellow":  true,
	"gold":    true,
	"blue":    true,
	"magenta": true,
	"cyan":    true,
	"white":   true,
	"gray":    true,
}

// ApplyPlaceholders substitutes %name% tokens from the supplied map. Tokens
// without an entry are left untouched.
func ApplyPlaceholders(template string, placeholders map[string]string) string {
	for name, value := range placeholders {
		template = strings.ReplaceAll(template, "%"+name+"%", value)
	}
	return template
}

// ParseMarkup deserializes a token-tagged markup string into a text tree,
// substituting the supplied named placeholders inline first. Unknown tags are
// kept as literal text rather than rejected.
func ParseMarkup(markup string, placeholders map[string]string) *Text {
	markup = ApplyPlaceholders(markup, placeholders)
	parser := &markupParser{input: markup}
	return parser.parse()
}

type markupParser struct {
	input string
	pos   int

	style Style
	hover *Text
	click *ClickAction

	root    *Text
	current strings.Builder
}

func (p *markupParser) parse() *Text {
	p.root = &Text{}
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		switch ch {
		case '\\':
			if p.pos+1 < len(p.input) {
				p.current.WriteByte(p.input[p.pos+1])
				p.pos += 2
				continue
			}
			p.current.WriteByte(ch)
			p.pos++
		case '<':
			if tag, next, ok := p.readTag(); ok {
				p.flush()
				p.applyTag(tag)
				p.pos = next
				continue
			}
			p.current.WriteByte(ch)
			p.pos++
		default:
			p.current.WriteByte(ch)
			p.pos++
		}
	}
	p.flush()
	return p.root
}

func (p *markupParser) flush() {
	if p.current.Len() == 0 {
		return
	}
	leaf := &Text{content: p.current.String(), style: p.style}
	if p.hover != nil {
		leaf.hover = p.hover
	}
	if p.click != nil {
		click := *p.click
		leaf.click = &click
	}
	p.root.children = append(p.root.children, leaf)
	p.current.Reset()
}

// readTag scans a <...> tag starting at p.pos. It returns the tag body and
// the position just past the closing '>'. Quoted sections may contain any
// byte, with backslash escapes.
func (p *markupParser) readTag() (string, int, bool) {
	i := p.pos + 1
	var body strings.Builder
	inQuote := false
	for i < len(p.input) {
		ch := p.input[i]
		if inQuote {
			if ch == '\\' && i+1 < len(p.input) {
				body.WriteByte(ch)
				body.WriteByte(p.input[i+1])
				i += 2
				continue
			}
			if ch == '\'' {
				inQuote = false
			}
			body.WriteByte(ch)
			i++
			continue
		}
		switch ch {
		case '\'':
			inQuote = true
			body.WriteByte(ch)
			i++
		case '>':
			return body.String(), i + 1, true
		case '<':
			return "", 0, false
		default:
			body.WriteByte(ch)
			i++
		}
	}
	return "", 0, false
}

func (p *markupParser) applyTag(tag string) {
	switch {
	case tag == "reset":
		p.style = Style{}
		p.hover = nil
		p.click = nil
	case tag == "bold":
		p.style.Bold = true
	case tag == "italic":
		p.style.Italic = true
	case tag == "underline":
		p.style.Underline = true
	case tag == "dim":
		p.style.Dim = true
	case tag == "/bold":
		p.style.Bold = false
	case tag == "/italic":
		p.style.Italic = false
	case tag == "/underline":
		p.style.Underline = false
	case tag == "/dim":
		p.style.Dim = false
	case tag == "/hover":
		p.hover = nil
	case tag == "/click":
		p.click = nil
	case markupColors[tag]:
		p.style.Color = tag
	case strings.HasPrefix(tag, "/") && markupColors[tag[1:]]:
		p.style.Color = ""
	case strings.HasPrefix(tag, "hover:"):
		if value, ok := unquoteTagValue(tag[len("hover:"):]); ok {
			p.hover = ParseMarkup(value, nil)
		}
	case strings.HasPrefix(tag, "click:"):
		rest := tag[len("click:"):]
		space := strings.IndexByte(rest, ' ')
		if space <= 0 {
			p.literalTag(tag)
			return
		}
		kind := rest[:space]
		if value, ok := unquoteTagValue(rest[space+1:]); ok {
			p.click = &ClickAction{Kind: kind, Payload: value}
		} else {
			p.literalTag(tag)
		}
	default:
		p.literalTag(tag)
	}
}

// literalTag keeps an unrecognised tag in the output verbatim.
func (p *markupParser) literalTag(tag string) {
	p.current.WriteByte('<')
	p.current.WriteString(tag)
	p.current.WriteByte('>')
}

func unquoteTagValue(value string) (string, bool) {
	if len(value) < 2 || value[0] != '\'' || value[len(value)-1] != '\'' {
		return "", false
	}
	inner := value[1 : len(value)-1]
	var out strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			out.WriteByte(inner[i+1])
			i++
			continue
		}
		out.WriteByte(inner[i])
	}
	return out.String(), true
}

func quoteTagValue(value string) string {
	var out strings.Builder
	out.WriteByte('\'')
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\\', '\'':
			out.WriteByte('\\')
		}
		out.WriteByte(value[i])
	}
	out.WriteByte('\'')
	return out.String()
}

func escapeContent(content string) string {
	content = strings.ReplaceAll(content, `\`, `\\`)
	return strings.ReplaceAll(content, "<", `\<`)
}

// Markup serializes the tree back to its markup form. The output reparses to
// a tree equal to the original, which lets callers substitute an
// already-built text into a template token and parse the result again.
func (t *Text) Markup() string {
	spans := mergeSpans(t.flatten(nil))
	var out strings.Builder
	current := Style{}
	var hover *Text
	var click *ClickAction
	for _, leaf := range spans {
		if !sameHover(hover, leaf.hover) || !sameClick(click, leaf.click) {
			if hover != nil {
				out.WriteString("</hover>")
			}
			if click != nil {
				out.WriteString("</click>")
			}
			hover = leaf.hover
			click = leaf.click
			if hover != nil {
				out.WriteString("<hover:" + quoteTagValue(hover.Markup()) + ">")
			}
			if click != nil {
				out.WriteString("<click:" + click.Kind + " " + quoteTagValue(click.Payload) + ">")
			}
		}
		if leaf.style != current {
			if !current.IsZero() {
				// A reset would also drop hover/click context, so unwind
				// attributes individually when metadata is active.
				if hover == nil && click == nil {
					out.WriteString("<reset>")
					current = Style{}
				} else {
					current = closeStyle(&out, current)
				}
			}
			writeStyleTags(&out, leaf.style)
			current = leaf.style
		}
		out.WriteString(escapeContent(leaf.content))
	}
	if hover != nil {
		out.WriteString("</hover>")
	}
	if click != nil {
		out.WriteString("</click>")
	}
	return out.String()
}

func writeStyleTags(out *strings.Builder, style Style) {
	if style.Color != "" {
		out.WriteString("<" + style.Color + ">")
	}
	if style.Bold {
		out.WriteString("<bold>")
	}
	if style.Italic {
		out.WriteString("<italic>")
	}
	if style.Underline {
		out.WriteString("<underline>")
	}
	if style.Dim {
		out.WriteString("<dim>")
	}
}

func closeStyle(out *strings.Builder, style Style) Style {
	if style.Color != "" {
		out.WriteString("</" + style.Color + ">")
	}
	if style.Bold {
		out.WriteString("</bold>")
	}
	if style.Italic {
		out.WriteString("</italic>")
	}
	if style.Underline {
		out.WriteString("</underline>")
	}
	if style.Dim {
		out.WriteString("</dim>")
	}
	return Style{}
}
