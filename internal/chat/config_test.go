package chat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "chat.yml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != ":4000" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if !cfg.Mention.Enabled || !cfg.Mention.Sound || !cfg.Console.Enabled || !cfg.MessageSound {
		t.Fatalf("effect defaults = %+v", cfg)
	}
	if !strings.Contains(cfg.Mention.Highlight, "%mentioned%") {
		t.Fatalf("highlight default = %q", cfg.Mention.Highlight)
	}
}

func TestLoadConfigReadsFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yml")
	body := "addr: \":5000\"\nreply_to_last_sent: true\nmention:\n  highlight: \"<cyan>@%mentioned%\"\n  sound: false\nconsole:\n  format: \"chat %sender%> %message%\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("EMBERCHAT_ADDR", ":6000")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != ":6000" {
		t.Fatalf("env override lost: %q", cfg.Addr)
	}
	if !cfg.ReplyToLastSent || cfg.Mention.Highlight != "<cyan>@%mentioned%" || cfg.Mention.Sound {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Console.Format != "chat %sender%> %message%" {
		t.Fatalf("console format lost: %+v", cfg.Console)
	}
	// Keys the file omits keep their defaults.
	if !cfg.Mention.TitleEnabled || cfg.Mention.Title == "" {
		t.Fatalf("omitted mention keys lost: %+v", cfg.Mention)
	}
}

func TestLoadConfigRejectsEmptyHighlightTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yml")
	if err := os.WriteFile(path, []byte("mention:\n  highlight: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected highlight template error")
	}
}
