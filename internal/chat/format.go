package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNoFormat is returned when no chat format is available at all, which
// halts public chat rather than guessing at a layout.
var ErrNoFormat = errors.New("no chat format available")

// ClickSpec mirrors the click_event block in a format file.
type ClickSpec struct {
	Kind    string `yaml:"type"`
	Command string `yaml:"command"`
}

// FormatSection is one of the four pieces of a chat line. The value is a
// markup template; tooltip lines and the click command expand the same
// placeholders the value does.
type FormatSection struct {
	Value   string     `yaml:"value"`
	Tooltip []string   `yaml:"tooltip"`
	Click   *ClickSpec `yaml:"click_event"`
}

func (s FormatSection) render(placeholders map[string]string) *Text {
	body := ParseMarkup(s.Value, placeholders)
	if len(s.Tooltip) == 0 && s.Click == nil {
		return body
	}
	wrapper := EmptyText()
	if len(s.Tooltip) > 0 {
		tooltip := ParseMarkup(strings.Join(s.Tooltip, "\n"), placeholders)
		wrapper = wrapper.WithHover(tooltip)
	}
	if s.Click != nil {
		wrapper = wrapper.WithClick(ClickAction{
			Kind:    s.Click.Kind,
			Payload: ApplyPlaceholders(s.Click.Command, placeholders),
		})
	}
	return wrapper.Append(body)
}

// Format is a complete chat layout. Formats are loaded from YAML files and
// addressed by file name.
type Format struct {
	Name      string        `yaml:"-"`
	Priority  int           `yaml:"priority"`
	AdminOnly bool          `yaml:"admin_only"`
	Prefix    FormatSection `yaml:"prefix"`
	Player    FormatSection `yaml:"name"`
	Separator FormatSection `yaml:"separator"`
	Message   FormatSection `yaml:"message"`
}

// Line renders the four sections in order into a single text tree.
func (f *Format) Line(placeholders map[string]string) *Text {
	out := EmptyText()
	for _, section := range []FormatSection{f.Prefix, f.Player, f.Separator, f.Message} {
		if section.Value == "" {
			continue
		}
		out = out.Append(section.render(placeholders))
	}
	return out
}

// FormatRegistry loads chat formats from a directory of YAML files and keeps
// them behind an atomically swapped map so reloads never expose a partial
// set.
type FormatRegistry struct {
	mu      sync.RWMutex
	path    string
	formats map[string]*Format
}

func NewFormatRegistry(path string) (*FormatRegistry, error) {
	registry := &FormatRegistry{path: path, formats: make(map[string]*Format)}
	if err := registry.Reload(); err != nil {
		return nil, err
	}
	return registry, nil
}

// Reload re-reads every format file. Any unreadable file fails the whole
// reload and the previous set stays live.
func (r *FormatRegistry) Reload() error {
	entries, err := os.ReadDir(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.mu.Lock()
			r.formats = make(map[string]*Format)
			r.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read formats directory: %w", err)
	}
	formats := make(map[string]*Format)
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.path, name))
		if err != nil {
			return fmt.Errorf("read format file %s: %w", name, err)
		}
		format := &Format{Name: strings.TrimSuffix(name, ext)}
		if err := yaml.Unmarshal(data, format); err != nil {
			return fmt.Errorf("decode format file %s: %w", name, err)
		}
		if format.Message.Value == "" {
			format.Message.Value = "%message%"
		}
		formats[format.Name] = format
	}
	r.mu.Lock()
	r.formats = formats
	r.mu.Unlock()
	return nil
}

// Lookup returns the named format.
func (r *FormatRegistry) Lookup(name string) (*Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	format, ok := r.formats[name]
	return format, ok
}

// Default returns the format with the lowest priority, breaking ties by
// name, so adding a higher numbered format never steals the default slot.
func (r *FormatRegistry) Default() (*Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var chosen *Format
	for _, format := range r.formats {
		if chosen == nil || format.Priority < chosen.Priority ||
			(format.Priority == chosen.Priority && format.Name < chosen.Name) {
			chosen = format
		}
	}
	return chosen, chosen != nil
}

// ForPlayer resolves the format a player's chat uses: their bound format if
// it still exists and they may use it, otherwise the default.
func (r *FormatRegistry) ForPlayer(player *Player, prefs Preferences) (*Format, error) {
	if prefs.Format != "" {
		if format, ok := r.Lookup(prefs.Format); ok {
			if !format.AdminOnly || player.IsAdmin {
				return format, nil
			}
		}
	}
	if format, ok := r.Default(); ok {
		return format, nil
	}
	return nil, ErrNoFormat
}

// Available lists the format names the player may select, sorted.
func (r *FormatRegistry) Available(player *Player) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.formats))
	for name, format := range r.formats {
		if format.AdminOnly && !player.IsAdmin {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
