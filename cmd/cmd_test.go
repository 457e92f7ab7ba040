package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingo/internal/config"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/store"
)

// clearEnv blanks the LINGO_* variables so the host environment does not
// leak into tests. Empty values are ignored by the config loader.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"LINGO_API_URL", "LINGO_LANGUAGE", "LINGO_LEVEL", "LINGO_FEEDBACK",
		"LINGO_CONTEXT_WINDOW", "LINGO_REPORT_PROGRESS", "LINGO_TIMEOUT",
		"LINGO_LOG_FILE", "LINGO_DEBUG", "LINGO_JOURNAL", "LINGO_JOURNAL_DB",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

// loadWithArgs runs loadConfig on a fresh command parsed from args.
func loadWithArgs(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var (
		cfg     config.Config
		loadErr error
	)
	c := &cobra.Command{
		Use: "lingo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loadErr = loadConfig(cmd)
			return nil
		},
	}
	addConfigFlags(c)
	c.SetArgs(args)
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	require.NoError(t, c.Execute())
	return cfg, loadErr
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWithArgs(t)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoadConfig_FlagsOverrideFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[service]
api-url = "http://file:9000"

[session]
language = "german"
level = "beginner"
`)
	t.Setenv("LINGO_LEVEL", "intermediate")

	cfg, err := loadWithArgs(t, "--config", path, "--language", "Icelandic", "--journal", "--journal-db", "/tmp/j.db")
	require.NoError(t, err)

	assert.Equal(t, "http://file:9000", cfg.APIURL, "file value kept when no flag")
	assert.Equal(t, session.Icelandic, cfg.Language, "flag beats file")
	assert.Equal(t, session.Intermediate, cfg.Level, "env beats file")
	assert.True(t, cfg.Journal)
	assert.Equal(t, "/tmp/j.db", cfg.JournalDB)
}

func TestLoadConfig_UnchangedFlagsDoNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("LINGO_DEBUG", "true")

	cfg, err := loadWithArgs(t, "--level", "advanced")
	require.NoError(t, err)
	assert.True(t, cfg.Debug, "--debug default must not reset the env value")
	assert.Equal(t, session.Advanced, cfg.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad language", []string{"--language", "klingon"}, "--language"},
		{"bad level", []string{"--level", "expert"}, "--level"},
		{"bad url", []string{"--api-url", "localhost"}, "invalid config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := loadWithArgs(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOpenJournal_CreatesDatabase(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Journal = true
	cfg.JournalDB = filepath.Join(t.TempDir(), "nested", "journal.db")

	s, err := openJournal(cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ExchangeRepo().AppendExchange(context.Background(), store.ExchangeEventData{
		SessionID: "s1",
		Endpoint:  "/chat",
		Success:   true,
	}))
	_, err = os.Stat(cfg.JournalDB)
	assert.NoError(t, err)
}

func TestSummarizeExchanges(t *testing.T) {
	events := []store.ExchangeEvent{
		{ExchangeEventData: store.ExchangeEventData{Endpoint: "/vocab-exercise", LatencyMs: 40, Success: true}},
		{ExchangeEventData: store.ExchangeEventData{Endpoint: "/chat", LatencyMs: 100, Success: true}},
		{ExchangeEventData: store.ExchangeEventData{Endpoint: "/chat", LatencyMs: 300, Success: false}},
	}

	got := summarizeExchanges(events)
	want := []endpointStats{
		{Endpoint: "/chat", Calls: 2, Failed: 1, TotalLatencyMs: 400, MaxLatencyMs: 300},
		{Endpoint: "/vocab-exercise", Calls: 1, TotalLatencyMs: 40, MaxLatencyMs: 40},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, int64(200), got[0].avgLatency())
	assert.Equal(t, int64(0), endpointStats{}.avgLatency())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
}

func TestLanguagesCommand(t *testing.T) {
	var out bytes.Buffer
	languagesCmd.SetOut(&out)
	defer languagesCmd.SetOut(nil)

	languagesCmd.Run(languagesCmd, nil)

	got := out.String()
	for _, l := range session.Languages() {
		assert.Contains(t, got, string(l))
	}
	assert.True(t, strings.HasPrefix(got, "Languages:\n"))
	assert.Contains(t, got, "Levels:\n")
}

func TestLoadConfig_Timeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("LINGO_TIMEOUT", "5s")

	cfg, err := loadWithArgs(t)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)

	cfg, err = loadWithArgs(t, "--timeout", "250ms")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout)

	_, err = loadWithArgs(t, "--timeout", "-1s")
	assert.ErrorContains(t, err, "timeout must be >= 0")
}

func TestResolveVersion(t *testing.T) {
	installed := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Path: "github.com/abhisek/lingo", Version: "v0.3.1"}}, true
	}
	missing := func() (*debug.BuildInfo, bool) { return nil, false }

	assert.Equal(t, "v1.0.0", resolveVersion("v1.0.0", installed))
	assert.Equal(t, "v0.3.1", resolveVersion("(devel)", installed))
	assert.Equal(t, "(devel)", resolveVersion("(devel)", missing))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	assert.True(t, strings.HasPrefix(out.String(), "lingo "))
	assert.Contains(t, out.String(), "(go")
}
