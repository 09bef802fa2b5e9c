package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Preferences captures the persistent chat settings for one player.
type Preferences struct {
	Format          string
	MessagesEnabled bool
	SocialSpy       bool
	MentionsEnabled bool
	LastMessager    string
	Ignored         map[string]bool
}

func defaultPreferences() Preferences {
	return Preferences{
		MessagesEnabled: true,
		MentionsEnabled: true,
		Ignored:         make(map[string]bool),
	}
}

type prefRecord struct {
	Format          string   `json:"format,omitempty"`
	MessagesEnabled *bool    `json:"messages_enabled,omitempty"`
	SocialSpy       *bool    `json:"social_spy,omitempty"`
	MentionsEnabled *bool    `json:"mentions_enabled,omitempty"`
	LastMessager    string   `json:"last_messager,omitempty"`
	Ignored         []string `json:"ignored,omitempty"`
}

// PrefStore keeps per-player preferences in one JSON file per player,
// cached in memory. Writes go through a temp file and rename; a failed write
// leaves the in-memory state current and the previous file intact.
type PrefStore struct {
	mu    sync.RWMutex
	path  string
	cache map[string]Preferences
}

func NewPrefStore(path string) *PrefStore {
	return &PrefStore{
		path:  path,
		cache: make(map[string]Preferences),
	}
}

func (s *PrefStore) filePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.path, hex.EncodeToString(sum[:])+".json")
}

func (s *PrefStore) loadLocked(key string) Preferences {
	if prefs, ok := s.cache[key]; ok {
		return prefs
	}
	prefs := defaultPreferences()
	if data, err := os.ReadFile(s.filePath(key)); err == nil {
		var record prefRecord
		if json.Unmarshal(data, &record) == nil {
			prefs.Format = record.Format
			prefs.LastMessager = record.LastMessager
			if record.MessagesEnabled != nil {
				prefs.MessagesEnabled = *record.MessagesEnabled
			}
			if record.SocialSpy != nil {
				prefs.SocialSpy = *record.SocialSpy
			}
			if record.MentionsEnabled != nil {
				prefs.MentionsEnabled = *record.MentionsEnabled
			}
			for _, entry := range record.Ignored {
				prefs.Ignored[FoldName(entry)] = true
			}
		}
	}
	s.cache[key] = prefs
	return prefs
}

func (s *PrefStore) saveLocked(key string, prefs Preferences) error {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.path, "prefs-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp preferences file: %w", err)
	}
	record := prefRecord{
		Format:          prefs.Format,
		MessagesEnabled: &prefs.MessagesEnabled,
		SocialSpy:       &prefs.SocialSpy,
		MentionsEnabled: &prefs.MentionsEnabled,
		LastMessager:    prefs.LastMessager,
	}
	for name := range prefs.Ignored {
		record.Ignored = append(record.Ignored, name)
	}
	sort.Strings(record.Ignored)
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write preferences file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp preferences file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.filePath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace preferences file: %w", err)
	}
	return nil
}

// Get returns a copy of the player's preferences, loading from disk on first
// access and falling back to defaults for unknown players.
func (s *PrefStore) Get(name string) Preferences {
	key := FoldName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs := s.loadLocked(key)
	ignored := make(map[string]bool, len(prefs.Ignored))
	for folded := range prefs.Ignored {
		ignored[folded] = true
	}
	prefs.Ignored = ignored
	return prefs
}

func (s *PrefStore) update(name string, mutate func(*Preferences)) error {
	key := FoldName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs := s.loadLocked(key)
	mutate(&prefs)
	s.cache[key] = prefs
	return s.saveLocked(key, prefs)
}

func (s *PrefStore) SetFormat(name, format string) error {
	return s.update(name, func(p *Preferences) { p.Format = format })
}

func (s *PrefStore) SetMessagesEnabled(name string, enabled bool) error {
	return s.update(name, func(p *Preferences) { p.MessagesEnabled = enabled })
}

func (s *PrefStore) SetSocialSpy(name string, enabled bool) error {
	return s.update(name, func(p *Preferences) { p.SocialSpy = enabled })
}

func (s *PrefStore) SetMentionsEnabled(name string, enabled bool) error {
	return s.update(name, func(p *Preferences) { p.MentionsEnabled = enabled })
}

func (s *PrefStore) SetLastMessager(name, sender string) error {
	return s.update(name, func(p *Preferences) { p.LastMessager = sender })
}

// ToggleIgnore flips whether name ignores target and reports the new state.
func (s *PrefStore) ToggleIgnore(name, target string) (bool, error) {
	folded := FoldName(target)
	var ignored bool
	err := s.update(name, func(p *Preferences) {
		if p.Ignored[folded] {
			delete(p.Ignored, folded)
		} else {
			p.Ignored[folded] = true
		}
		ignored = p.Ignored[folded]
	})
	return ignored, err
}

// IsIgnoring reports whether name has target on their ignore list.
func (s *PrefStore) IsIgnoring(name, target string) bool {
	key := FoldName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(key).Ignored[FoldName(target)]
}
