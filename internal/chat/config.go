package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// MentionConfig controls mention detection and the per-effect notifications.
// Highlight is a markup template resolved with mentioner/mentioned context;
// it replaces the matched name in the mentioned player's copy of the line.
type MentionConfig struct {
	Enabled      bool   `yaml:"enabled" env:"EMBERCHAT_MENTIONS_ENABLED"`
	Highlight    string `yaml:"highlight" env:"EMBERCHAT_MENTION_HIGHLIGHT"`
	Sound        bool   `yaml:"sound"`
	Title        string `yaml:"title"`
	TitleEnabled bool   `yaml:"title_enabled"`
	Bar          string `yaml:"bar"`
	BarEnabled   bool   `yaml:"bar_enabled"`
}

// ConsoleConfig controls the console mirror of public chat.
type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
}

// Config carries the server settings read from chat.yml. Environment
// variables override file values.
type Config struct {
	Addr            string        `yaml:"addr" env:"EMBERCHAT_ADDR"`
	DataDir         string        `yaml:"data_dir" env:"EMBERCHAT_DATA_DIR"`
	FormatsDir      string        `yaml:"formats_dir" env:"EMBERCHAT_FORMATS_DIR"`
	MessagesFile    string        `yaml:"messages_file" env:"EMBERCHAT_MESSAGES_FILE"`
	ScriptsDir      string        `yaml:"scripts_dir" env:"EMBERCHAT_SCRIPTS_DIR"`
	ReplyToLastSent bool          `yaml:"reply_to_last_sent" env:"EMBERCHAT_REPLY_TO_LAST_SENT"`
	MessageSound    bool          `yaml:"message_sound"`
	Mention         MentionConfig `yaml:"mention"`
	Console         ConsoleConfig `yaml:"console"`
}

// DefaultConfig returns the settings used when chat.yml is absent.
func DefaultConfig() Config {
	return Config{
		Addr:         ":4000",
		DataDir:      "data",
		FormatsDir:   filepath.Join("data", "formats"),
		MessagesFile: filepath.Join("data", "messages.yml"),
		ScriptsDir:   filepath.Join("data", "scripts"),
		MessageSound: true,
		Mention: MentionConfig{
			Enabled:      true,
			Highlight:    "<yellow><bold>@%mentioned%",
			Sound:        true,
			Title:        "<yellow>%mentioner% mentioned you",
			TitleEnabled: true,
			Bar:          "<gray>You were mentioned by <yellow>%mentioner%",
			BarEnabled:   true,
		},
		Console: ConsoleConfig{
			Enabled: true,
			Format:  "%sender%: %message%",
		},
	}
}

// LoadConfig reads chat.yml from path and applies environment overrides. A
// missing file is not an error; defaults are used.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("apply environment overrides: %w", err)
	}
	if cfg.Mention.Enabled && cfg.Mention.Highlight == "" {
		return Config{}, fmt.Errorf("mention highlight template is empty")
	}
	return cfg, nil
}
