package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/tutor"
)

// FileConfig represents the TOML configuration file. Unset keys are nil.
type FileConfig struct {
	Service ServiceConfig `toml:"service"`
	Session SessionConfig `toml:"session"`
	Log     LogConfig     `toml:"log"`
	Journal JournalConfig `toml:"journal"`
}

// ServiceConfig maps tutoring service settings.
type ServiceConfig struct {
	APIURL         *string `toml:"api-url"`
	Timeout        *string `toml:"timeout"`
	ReportProgress *bool   `toml:"report-progress"`
}

// SessionConfig maps the startup selection.
type SessionConfig struct {
	Language      *string `toml:"language"`
	Level         *string `toml:"level"`
	Feedback      *bool   `toml:"feedback"`
	ContextWindow *int    `toml:"context-window"`
}

type LogConfig struct {
	File  *string `toml:"file"`
	Debug *bool   `toml:"debug"`
}

type JournalConfig struct {
	Enabled *bool   `toml:"enabled"`
	DB      *string `toml:"db"`
}

// LoadFile reads a TOML config from the given path. Missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var fc FileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return fc, nil
}

// Template returns a commented config file listing every key with its default.
func Template() string {
	sc := session.DefaultConfig()
	return fmt.Sprintf(`# lingo configuration
# Uncomment a value to enable it. Environment variables (LINGO_*) and
# command-line flags override config values.

[service]
# api-url = %q      # Tutoring service root
# timeout = "0s"                          # Per-request timeout, 0s waits indefinitely
# report-progress = false                 # Post graded turns to /record-progress

[session]
# language = %q                      # %s
# level = %q                           # %s
# feedback = %t                           # Ask the tutor to grade answers
# context-window = %d                      # Recent messages sent as context, 0 disables

[log]
# file = ""                               # Log file, empty disables logging
# debug = false                           # Human-readable debug logs

[journal]
# enabled = false                         # Record every request in SQLite
# db = ""                                 # Journal path, defaults to the XDG data dir
`,
		tutor.DefaultBaseURL,
		sc.Language, joinLanguages(),
		sc.Level, joinLevels(),
		sc.FeedbackEnabled,
		session.DefaultContextWindow,
	)
}

func joinLanguages() string {
	s := ""
	for i, l := range session.Languages() {
		if i > 0 {
			s += ", "
		}
		s += string(l)
	}
	return s
}

func joinLevels() string {
	s := ""
	for i, l := range session.Levels() {
		if i > 0 {
			s += ", "
		}
		s += string(l)
	}
	return s
}
