package chat

import "strings"

const (
	AnsiReset     = "\x1b[0m"
	AnsiBold      = "\x1b[1m"
	AnsiDim       = "\x1b[2m"
	AnsiItalic    = "\x1b[3m"
	AnsiUnderline = "\x1b[4m"
	AnsiCyan      = "\x1b[36m"
	AnsiYellow    = "\x1b[33m"
	AnsiGreen     = "\x1b[32m"
	AnsiMagenta   = "\x1b[35m"
)

var ansiColors = map[string]string{
	"black":   "\x1b[30m",
	"red":     "\x1b[31m",
	"green":   AnsiGreen,
	"yellow":  AnsiYellow,
	"gold":    "\x1b[33;1m",
	"blue":    "\x1b[34m",
	"magenta": AnsiMagenta,
	"cyan":    AnsiCyan,
	"white":   "\x1b[37m",
	"gray":    "\x1b[90m",
}

// StyleText wraps a string with the provided ANSI attributes.
func StyleText(text string, attrs ...string) string {
	if len(attrs) == 0 {
		return text
	}
	return strings.Join(attrs, "") + text + AnsiReset
}

// HighlightName formats player names consistently.
func HighlightName(name string) string {
	return StyleText(name, AnsiBold, AnsiCyan)
}

// Trim normalises a telnet input line.
func Trim(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))
}

// Ansi ensures output strings end with a reset sequence.
func Ansi(c string) string {
	if strings.Contains(c, "\x1b[") && !strings.HasSuffix(c, AnsiReset) {
		return c + AnsiReset
	}
	return c
}

// ANSI renders the text tree for a terminal. Hover and click metadata have
// no terminal representation and are dropped.
func (t *Text) ANSI() string {
	spans := mergeSpans(t.flatten(nil))
	var out strings.Builder
	for _, leaf := range spans {
		codes := styleCodes(leaf.style)
		if codes == "" {
			out.WriteString(leaf.content)
			continue
		}
		out.WriteString(codes)
		out.WriteString(leaf.content)
		out.WriteString(AnsiReset)
	}
	return out.String()
}

func styleCodes(style Style) string {
	var out strings.Builder
	if code, ok := ansiColors[style.Color]; ok {
		out.WriteString(code)
	}
	if style.Bold {
		out.WriteString(AnsiBold)
	}
	if style.Italic {
		out.WriteString(AnsiItalic)
	}
	if style.Underline {
		out.WriteString(AnsiUnderline)
	}
	if style.Dim {
		out.WriteString(AnsiDim)
	}
	return out.String()
}
