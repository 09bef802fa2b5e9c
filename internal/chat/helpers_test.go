package chat

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// recordingNotifier captures delivered markup per player instead of writing
// to a session.
type recordingNotifier struct {
	mu     sync.Mutex
	lines  map[string][]string
	alerts map[string][]string
	bells  map[string]int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		lines:  make(map[string][]string),
		alerts: make(map[string][]string),
		bells:  make(map[string]int),
	}
}

func (r *recordingNotifier) Send(viewer *Player, message *Text) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[viewer.Name] = append(r.lines[viewer.Name], message.Markup())
}

func (r *recordingNotifier) MentionAlert(viewer, mentioner *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[viewer.Name] = append(r.alerts[viewer.Name], mentioner.Name)
}

func (r *recordingNotifier) Bell(viewer *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bells[viewer.Name]++
}

func (r *recordingNotifier) linesFor(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines[name]...)
}

func (r *recordingNotifier) alertsFor(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts[name]...)
}

func (r *recordingNotifier) bellsFor(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bells[name]
}

const testFormat = `priority: 1
name:
  value: "%player%"
separator:
  value: ": "
message:
  value: "%message%"
`

const testMessages = `chat:
  no_format: "no format available"
private:
  sender_format: "to %recipient%: %message%"
  recipient_format: "from %sender%: %message%"
  spy_format: "spy %sender% -> %recipient%: %message%"
  not_found: "%target% is not online"
  self: "you cannot message yourself"
  sender_disabled: "your messages are off"
  recipient_disabled: "%recipient% has messages off"
  ignored_by: "%recipient% is ignoring you"
  ignoring: "you are ignoring %recipient%"
  no_reply_target: "nobody to reply to"
`

func writeTestData(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	formats := filepath.Join(dir, "formats")
	if err := os.MkdirAll(formats, 0o755); err != nil {
		t.Fatalf("create formats dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(formats, "default.yml"), []byte(testFormat), 0o644); err != nil {
		t.Fatalf("write format: %v", err)
	}
	messages := filepath.Join(dir, "messages.yml")
	if err := os.WriteFile(messages, []byte(testMessages), 0o644); err != nil {
		t.Fatalf("write messages: %v", err)
	}
	cfg := DefaultConfig()
	cfg.DataDir = dir
	cfg.FormatsDir = formats
	cfg.MessagesFile = messages
	cfg.ScriptsDir = filepath.Join(dir, "scripts")
	return cfg
}

func newTestCore(t *testing.T) (*Core, *recordingNotifier) {
	t.Helper()
	core, err := NewCore(writeTestData(t))
	if err != nil {
		t.Fatalf("new core: %v", err)
	}
	recorder := newRecordingNotifier()
	core.Notifier = recorder
	go core.Loop.Run()
	t.Cleanup(core.Close)
	return core, recorder
}

func newTestPlayer(t *testing.T, core *Core, name string, admin bool) *Player {
	t.Helper()
	player := &Player{
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
