package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingo/internal/session"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, session.Spanish, cfg.Language)
	assert.Equal(t, session.Novice, cfg.Level)
	assert.True(t, cfg.Feedback)
	assert.Equal(t, 6, cfg.ContextWindow)
	assert.Zero(t, cfg.RequestTimeout)
	assert.False(t, cfg.ReportProgress)
	assert.False(t, cfg.Journal)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile_Missing(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, fc)

	_, err = LoadFile("")
	assert.Error(t, err)
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := writeConfig(t, "[session]\nlanguge = \"urdu\"\n")
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "languge")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("LINGO_LANGUAGE", "")
	path := writeConfig(t, `
[service]
api-url = "https://tutor.example.com"
timeout = "45s"
report-progress = true

[session]
language = "French"
level = "advanced"
feedback = false
context-window = 0

[log]
file = "/tmp/lingo.log"
debug = true

[journal]
enabled = true
db = "/tmp/journal.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		APIURL:         "https://tutor.example.com",
		Language:       session.French,
		Level:          session.Advanced,
		Feedback:       false,
		ContextWindow:  0,
		ReportProgress: true,
		RequestTimeout: 45 * time.Second,
		LogFile:        "/tmp/lingo.log",
		Debug:          true,
		Journal:        true,
		JournalDB:      "/tmp/journal.db",
	}, cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[session]\nlanguage = \"german\"\nlevel = \"beginner\"\n")
	t.Setenv("LINGO_LANGUAGE", "finnish")
	t.Setenv("LINGO_API_URL", "http://10.0.0.5:9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, session.Finnish, cfg.Language)
	assert.Equal(t, session.Beginner, cfg.Level)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.APIURL)
}

func TestLoad_BadFileValue(t *testing.T) {
	tests := map[string]string{
		"language": "[session]\nlanguage = \"klingon\"\n",
		"level":    "[session]\nlevel = \"guru\"\n",
		"timeout":  "[service]\ntimeout = \"soon\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"LINGO_LEVEL":           "Intermediate",
		"LINGO_FEEDBACK":        "false",
		"LINGO_CONTEXT_WINDOW":  "10",
		"LINGO_REPORT_PROGRESS": "1",
		"LINGO_TIMEOUT":         "2m",
		"LINGO_DEBUG":           "true",
		"LINGO_JOURNAL":         "true",
		"LINGO_JOURNAL_DB":      "/var/lib/lingo.db",
		"LINGO_LOG_FILE":        "",
	}))
	require.NoError(t, err)

	assert.Equal(t, session.Intermediate, cfg.Level)
	assert.False(t, cfg.Feedback)
	assert.Equal(t, 10, cfg.ContextWindow)
	assert.True(t, cfg.ReportProgress)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.Journal)
	assert.Equal(t, "/var/lib/lingo.db", cfg.JournalDB)
	assert.Empty(t, cfg.LogFile, "empty variables are ignored")
}

func TestApplyEnv_CollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"LINGO_LANGUAGE":       "klingon",
		"LINGO_CONTEXT_WINDOW": "many",
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrUnknownLanguage)
	assert.Contains(t, err.Error(), "LINGO_CONTEXT_WINDOW")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.APIURL = "localhost:8000" }},
		{"ftp url", func(c *Config) { c.APIURL = "ftp://tutor" }},
		{"language", func(c *Config) { c.Language = "latin" }},
		{"level", func(c *Config) { c.Level = "" }},
		{"context window", func(c *Config) { c.ContextWindow = -1 }},
		{"timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language = session.Urdu
	cfg.Feedback = false

	sc := cfg.Session()
	assert.Equal(t, session.Config{
		Language:        session.Urdu,
		Level:           session.Novice,
		Mode:            session.ModeConversation,
		FeedbackEnabled: false,
	}, sc)
}

func TestJournalPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JournalDB = "/tmp/j.db"
	p, err := cfg.JournalPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/j.db", p)

	data := t.TempDir()
	t.Setenv("LINGO_JOURNAL_DB", "")
	t.Setenv("XDG_DATA_HOME", data)
	cfg.JournalDB = ""
	p, err = cfg.JournalPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "lingo", "journal.db"), p)
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	assert.Equal(t, filepath.Join("/cfg", "lingo", "config.toml"), DefaultConfigPath())
}

func TestTemplate_DecodesWhenUncommented(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(Template(), "\n") {
		lines = append(lines, strings.TrimPrefix(line, "# "))
	}
	body := strings.Join(lines, "\n")

	// The header comment lines become invalid TOML once uncommented; drop them.
	body = body[strings.Index(body, "[service]"):]

	var fc FileConfig
	_, err := toml.Decode(body, &fc)
	require.NoError(t, err)

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyFile(fc))
	assert.Equal(t, DefaultConfig(), cfg)
}
