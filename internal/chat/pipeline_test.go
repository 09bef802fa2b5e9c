package chat

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChatFansOutToEveryone(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	newTestPlayer(t, core, "Cara", false)

	if err := core.Pipeline.ProcessChat(bob, "hello everyone"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()

	for _, name := range []string{"Bob", "Cara"} {
		lines := recorder.linesFor(name)
		if len(lines) != 1 || lines[0] != "Bob: hello everyone" {
			t.Fatalf("%s lines = %v", name, lines)
		}
	}
}

func TestChatPersonalizesMentionsPerViewer(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	newTestPlayer(t, core, "Ann", false)
	newTestPlayer(t, core, "Cara", false)

	if err := core.Pipeline.ProcessChat(bob, "ping Ann about the release"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()

	annLines := recorder.linesFor("Ann")
	if len(annLines) != 1 || !strings.Contains(annLines[0], "<yellow><bold>@Ann") {
		t.Fatalf("Ann lines = %v", annLines)
	}
	caraLines := recorder.linesFor("Cara")
	if len(caraLines) != 1 || strings.Contains(caraLines[0], "<yellow>") {
		t.Fatalf("highlight leaked to Cara: %v", caraLines)
	}
	if alerts := recorder.alertsFor("Ann"); len(alerts) != 1 || alerts[0] != "Bob" {
		t.Fatalf("Ann alerts = %v", alerts)
	}
	if alerts := recorder.alertsFor("Cara"); len(alerts) != 0 {
		t.Fatalf("Cara alerts = %v", alerts)
	}
	if core.Mentions.Pending() != 0 {
		t.Fatalf("personalized variants leaked: %d", core.Mentions.Pending())
	}
}

func TestChatSkipsViewersIgnoringSender(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	newTestPlayer(t, core, "Cara", false)
	if _, err := core.Prefs.ToggleIgnore("Cara", "Bob"); err != nil {
		t.Fatalf("toggle ignore: %v", err)
	}

	if err := core.Pipeline.ProcessChat(bob, "anyone here?"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()

	if lines := recorder.linesFor("Cara"); len(lines) != 0 {
		t.Fatalf("ignoring viewer still received chat: %v", lines)
	}
	if lines := recorder.linesFor("Bob"); len(lines) != 1 {
		t.Fatalf("sender lines = %v", lines)
	}
}

func TestCancelledChatDeliversNothingAndCleansUp(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	newTestPlayer(t, core, "Ann", false)
	core.Bus.OnChat(func(ev *ChatEvent) {
		if strings.Contains(ev.Message.Plain(), "secret") {
			ev.Cancelled = true
		}
	})

	if err := core.Pipeline.ProcessChat(bob, "the secret Ann plan"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()

	if lines := recorder.linesFor("Ann"); len(lines) != 0 {
		t.Fatalf("cancelled chat was delivered: %v", lines)
	}
	if core.Mentions.Pending() != 0 {
		t.Fatalf("cancellation leaked variants: %d", core.Mentions.Pending())
	}
}

func TestCancelledMentionSuppressesAlertNotHighlight(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	newTestPlayer(t, core, "Ann", false)
	core.Bus.OnMention(func(ev *MentionEvent) {
		ev.Cancelled = true
	})

	if err := core.Pipeline.ProcessChat(bob, "hi Ann"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()

	if alerts := recorder.alertsFor("Ann"); len(alerts) != 0 {
		t.Fatalf("cancelled mention still alerted: %v", alerts)
	}
	annLines := recorder.linesFor("Ann")
	if len(annLines) != 1 || !strings.Contains(annLines[0], "<yellow><bold>@Ann") {
		t.Fatalf("highlight suppressed by mention cancellation: %v", annLines)
	}
}

func TestMentionsCanBeDisabledGlobally(t *testing.T) {
	core, recorder := newTestCore(t)
	core.Config.Mention.Enabled = false
	bob := newTestPlayer(t, core, "Bob", false)
	newTestPlayer(t, core, "Ann", false)

	if err := core.Pipeline.ProcessChat(bob, "hi Ann"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()

	annLines := recorder.linesFor("Ann")
	if len(annLines) != 1 || annLines[0] != "Bob: hi Ann" {
		t.Fatalf("Ann lines = %v", annLines)
	}
	if alerts := recorder.alertsFor("Ann"); len(alerts) != 0 {
		t.Fatalf("disabled engine still alerted: %v", alerts)
	}
}

func TestSenderWithMentionsDisabledTriggersNone(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	newTestPlayer(t, core, "Ann", false)
	if err := core.Prefs.SetMentionsEnabled("Bob", false); err != nil {
		t.Fatalf("disable sender mentions: %v", err)
	}

	if err := core.Pipeline.ProcessChat(bob, "hi Ann"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()

	annLines := recorder.linesFor("Ann")
	if len(annLines) != 1 || annLines[0] != "Bob: hi Ann" {
		t.Fatalf("Ann lines = %v", annLines)
	}
	if alerts := recorder.alertsFor("Ann"); len(alerts) != 0 {
		t.Fatalf("gated sender still alerted: %v", alerts)
	}
}

func TestChatEventHandlerCanRewriteMessage(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	core.Bus.OnChat(func(ev *ChatEvent) {
		ev.Message = NewText("[redacted]", Style{})
	})

	if err := core.Pipeline.ProcessChat(bob, "something rude"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()

	lines := recorder.linesFor("Bob")
	if len(lines) != 1 || lines[0] != "Bob: [redacted]" {
		t.Fatalf("rewrite not applied: %v", lines)
	}
}

func TestChatWithoutFormatsHalts(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	if err := os.Remove(filepath.Join(core.Config.FormatsDir, "default.yml")); err != nil {
		t.Fatalf("remove format: %v", err)
	}
	if err := core.Formats.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	err := core.Pipeline.ProcessChat(bob, "hello?")
	if !errors.Is(err, ErrNoFormat) {
		t.Fatalf("expected ErrNoFormat, got %v", err)
	}
	lines := recorder.linesFor("Bob")
	if len(lines) != 1 || lines[0] != "no format available" {
		t.Fatalf("sender notice = %v", lines)
	}
}

type rankExpansion struct{}

func (rankExpansion) Identifier() string { return "ctx" }

func (rankExpansion) Resolve(subject *Player, token string) (string, bool) {
	if token == "rank" && subject != nil && subject.Name == "Cara" {
		return "champion", true
	}
	return "", false
}

func TestFinalRenderResolvesViewerScopedPlaceholders(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	newTestPlayer(t, core, "Cara", false)
	if err := core.Resolver.Register(rankExpansion{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	format := "priority: 1\nprefix:\n  value: \"[%ctx_rank%] \"\nname:\n  value: \"%player%\"\nseparator:\n  value: \": \"\nmessage:\n  value: \"%message%\"\n"
	if err := os.WriteFile(filepath.Join(core.Config.FormatsDir, "default.yml"), []byte(format), 0o644); err != nil {
		t.Fatalf("write format: %v", err)
	}
	if err := core.Formats.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if err := core.Pipeline.ProcessChat(bob, "hello"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()

	// The provider declines the token for Bob, so he keeps the literal; the
	// final render resolves it against each receiving viewer.
	if lines := recorder.linesFor("Cara"); len(lines) != 1 || lines[0] != "[champion] Bob: hello" {
		t.Fatalf("Cara lines = %v", lines)
	}
	if lines := recorder.linesFor("Bob"); len(lines) != 1 || lines[0] != "[%ctx_rank%] Bob: hello" {
		t.Fatalf("Bob lines = %v", lines)
	}
}

func TestConsoleMirrorUsesConfiguredFormat(t *testing.T) {
	core, recorder := newTestCore(t)
	core.Config.Console.Format = "chat> %sender%: %message%"
	bob := newTestPlayer(t, core, "Bob", false)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	if err := core.Pipeline.ProcessChat(bob, "hello there"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()
	if !strings.Contains(buf.String(), "chat> Bob: hello there") {
		t.Fatalf("console mirror = %q", buf.String())
	}
	if lines := recorder.linesFor("Bob"); len(lines) != 1 {
		t.Fatalf("delivery affected by mirror: %v", lines)
	}

	buf.Reset()
	core.Config.Console.Enabled = false
	if err := core.Pipeline.ProcessChat(bob, "quiet line"); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()
	if strings.Contains(buf.String(), "quiet line") {
		t.Fatalf("disabled mirror still printed: %q", buf.String())
	}
}

func TestBlankInputIsDropped(t *testing.T) {
	core, recorder := newTestCore(t)
	bob := newTestPlayer(t, core, "Bob", false)
	if err := core.Pipeline.ProcessChat(bob, "   \t "); err != nil {
		t.Fatalf("process chat: %v", err)
	}
	core.Loop.Flush()
	if lines := recorder.linesFor("Bob"); len(lines) != 0 {
		t.Fatalf("blank input produced output: %v", lines)
	}
}
