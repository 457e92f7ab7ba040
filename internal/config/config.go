package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/store"
	"github.com/abhisek/lingo/internal/tutor"
)

// Config holds the application settings after defaults, the config file
// and the environment have been merged. Command-line flags are applied on
// top by the cmd package.
type Config struct {
	// APIURL is the tutoring service root.
	APIURL string

	// Startup selection for a new session.
	Language session.Language
	Level    session.Level
	Feedback bool

	// ContextWindow is how many recent texts accompany each message. 0 disables.
	ContextWindow int

	// ReportProgress posts graded turns to /record-progress.
	ReportProgress bool

	// RequestTimeout bounds each request. 0 means no timeout.
	RequestTimeout time.Duration

	// LogFile receives structured logs. Empty disables logging.
	LogFile string
	Debug   bool

	// Journal enables the SQLite request journal at JournalDB.
	Journal   bool
	JournalDB string
}

// DefaultConfig returns a Config with defaults.
func DefaultConfig() Config {
	sc := session.DefaultConfig()
	return Config{
		APIURL:        tutor.DefaultBaseURL,
		Language:      sc.Language,
		Level:         sc.Level,
		Feedback:      sc.FeedbackEnabled,
		ContextWindow: session.DefaultContextWindow,
	}
}

// Load builds a Config from defaults, the TOML file at path and LINGO_*
// environment variables, in increasing precedence. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	fc, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyFile(fc); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyFile overlays the values set in fc.
func (c *Config) ApplyFile(fc FileConfig) error {
	setString(&c.APIURL, fc.Service.APIURL)
	setBool(&c.ReportProgress, fc.Service.ReportProgress)
	if fc.Service.Timeout != nil {
		d, err := time.ParseDuration(*fc.Service.Timeout)
		if err != nil {
			return fmt.Errorf("service.timeout: %w", err)
		}
		c.RequestTimeout = d
	}

	if fc.Session.Language != nil {
		l, err := session.ParseLanguage(*fc.Session.Language)
		if err != nil {
			return fmt.Errorf("session.language: %w", err)
		}
		c.Language = l
	}
	if fc.Session.Level != nil {
		l, err := session.ParseLevel(*fc.Session.Level)
		if err != nil {
			return fmt.Errorf("session.level: %w", err)
		}
		c.Level = l
	}
	setBool(&c.Feedback, fc.Session.Feedback)
	setInt(&c.ContextWindow, fc.Session.ContextWindow)

	setString(&c.LogFile, fc.Log.File)
	setBool(&c.Debug, fc.Log.Debug)

	setBool(&c.Journal, fc.Journal.Enabled)
	setString(&c.JournalDB, fc.Journal.DB)
	return nil
}

// ApplyEnv overlays LINGO_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	env := func(name string, apply func(string) error) {
		v, ok := lookup(name)
		if !ok || v == "" {
			return
		}
		if err := apply(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	env("LINGO_API_URL", func(v string) error { c.APIURL = v; return nil })
	env("LINGO_LANGUAGE", func(v string) (err error) { c.Language, err = session.ParseLanguage(v); return })
	env("LINGO_LEVEL", func(v string) (err error) { c.Level, err = session.ParseLevel(v); return })
	env("LINGO_FEEDBACK", func(v string) (err error) { c.Feedback, err = strconv.ParseBool(v); return })
	env("LINGO_CONTEXT_WINDOW", func(v string) (err error) { c.ContextWindow, err = strconv.Atoi(v); return })
	env("LINGO_REPORT_PROGRESS", func(v string) (err error) { c.ReportProgress, err = strconv.ParseBool(v); return })
	env("LINGO_TIMEOUT", func(v string) (err error) { c.RequestTimeout, err = time.ParseDuration(v); return })
	env("LINGO_LOG_FILE", func(v string) error { c.LogFile = v; return nil })
	env("LINGO_DEBUG", func(v string) (err error) { c.Debug, err = strconv.ParseBool(v); return })
	env("LINGO_JOURNAL", func(v string) (err error) { c.Journal, err = strconv.ParseBool(v); return })
	env("LINGO_JOURNAL_DB", func(v string) error { c.JournalDB = v; return nil })

	return errors.Join(errs...)
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api url must be an absolute http(s) URL, got %q", c.APIURL)
	}
	if !c.Language.Valid() {
		return fmt.Errorf("%w: %q", session.ErrUnknownLanguage, c.Language)
	}
	if !c.Level.Valid() {
		return fmt.Errorf("%w: %q", session.ErrUnknownLevel, c.Level)
	}
	if c.ContextWindow < 0 {
		return fmt.Errorf("context window must be >= 0, got %d", c.ContextWindow)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.RequestTimeout)
	}
	return nil
}

// Session returns the initial session selection.
func (c Config) Session() session.Config {
	return session.Config{
		Language:        c.Language,
		Level:           c.Level,
		Mode:            session.ModeConversation,
		FeedbackEnabled: c.Feedback,
	}
}

// JournalPath returns JournalDB, or the default journal location when unset.
func (c Config) JournalPath() (string, error) {
	if c.JournalDB != "" {
		return c.JournalDB, nil
	}
	return store.DefaultDBPath()
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setBool(target, value *bool) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}
