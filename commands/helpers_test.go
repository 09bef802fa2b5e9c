package commands

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"EmberChat/internal/chat"
)

type capturingNotifier struct {
	mu    sync.Mutex
	lines map[string][]string
}

func newCapturingNotifier() *capturingNotifier {
	return &capturingNotifier{lines: make(map[string][]string)}
}

func (c *capturingNotifier) Send(viewer *chat.Player, message *chat.Text) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[viewer.Name] = append(c.lines[viewer.Name], message.Plain())
}

func (c *capturingNotifier) MentionAlert(viewer, mentioner *chat.Player) {}

func (c *capturingNotifier) Bell(viewer *chat.Player) {}

func (c *capturingNotifier) last(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := c.lines[name]
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

const testFormats = `priority: 1
message:
  value: "%message%"
`

const testStaffFormat = `priority: 10
admin_only: true
message:
  value: "%message%"
`

const testMessages = `command:
  unknown: "unknown command"
  usage: "usage: %usage%"
  denied: "not allowed"
chat:
  no_format: "no format available"
private:
  sender_format: "to %recipient%: %message%"
  recipient_format: "from %sender%: %message%"
  spy_format: "spy: %message%"
  not_found: "%target% is not online"
  no_reply_target: "nobody to reply to"
messages:
  enabled: "messages on"
  disabled: "messages off"
spy:
  enabled: "spy on"
  disabled: "spy off"
mentions:
  enabled: "mentions on"
  disabled: "mentions off"
ignore:
  added: "ignoring %target%"
  removed: "unignored %target%"
  self: "cannot ignore yourself"
format:
  current: "format is %format%"
  list: "formats: %formats%"
  set: "format set to %format%"
  cleared: "format cleared"
  unknown: "no format %format%"
  reloaded: "formats reloaded"
  reload_failed: "reload failed"
who:
  header: "%count% online"
  entry: "- %player%"
`

func newTestCore(t *testing.T) (*chat.Core, *capturingNotifier) {
	t.Helper()
	dir := t.TempDir()
	formats := filepath.Join(dir, "formats")
	if err := os.MkdirAll(formats, 0o755); err != nil {
		t.Fatalf("create formats dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(formats, "default.yml"), []byte(testFormats), 0o644); err != nil {
		t.Fatalf("write format: %v", err)
	}
	if err := os.WriteFile(filepath.Join(formats, "staff.yml"), []byte(testStaffFormat), 0o644); err != nil {
		t.Fatalf("write staff format: %v", err)
	}
	messages := filepath.Join(dir, "messages.yml")
	if err := os.WriteFile(messages, []byte(testMessages), 0o644); err != nil {
		t.Fatalf("write messages: %v", err)
	}
	cfg := chat.DefaultConfig()
	cfg.DataDir = dir
	cfg.FormatsDir = formats
	cfg.MessagesFile = messages
	cfg.ScriptsDir = filepath.Join(dir, "scripts")

	core, err := chat.NewCore(cfg)
	if err != nil {
		t.Fatalf("new core: %v", err)
	}
	recorder := newCapturingNotifier()
	core.Notifier = recorder
	go core.Loop.Run()
	t.Cleanup(core.Close)
	return core, recorder
}

func newTestPlayer(t *testing.T, core *chat.Core, name string, admin bool) *chat.Player {
	t.Helper()
	player := &chat.Player{
		Name:     name,
		Account:  name,
		Output:   make(chan string, 64),
		Alive:    true,
		IsAdmin:  admin,
		JoinedAt: time.Now().UTC(),
	}
	if err := core.AddPlayer(player); err != nil {
		t.Fatalf("add player %s: %v", name, err)
	}
	t.Cleanup(func() { core.RemovePlayer(player) })
	return player
}
