package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/lingo/internal/config"
	"github.com/abhisek/lingo/internal/logger"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/store"
	"github.com/abhisek/lingo/internal/tutor"
)

// openSession loads the configuration and builds a session controller
// backed by the HTTP gateway. The returned cleanup closes the journal and
// flushes the logger.
func openSession(cmd *cobra.Command) (*session.Controller, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(logger.Options{File: cfg.LogFile, Debug: cfg.Debug})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	cleanup := func() { logger.Sync(log) }

	httpGateway, err := tutor.NewHTTPGateway(tutor.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create gateway: %w", err)
	}

	sessionID := uuid.NewString()
	var gateway tutor.Gateway = tutor.WithLogging(httpGateway, log)

	if cfg.Journal {
		st, err := openJournal(cfg)
		if err != nil {
			// The journal is diagnostics only; the session works without it.
			fmt.Fprintln(os.Stderr, "Journal unavailable:", err)
			log.Warn("journal unavailable", zap.Error(err))
		} else {
			gateway = tutor.WithJournal(gateway, st.ExchangeRepo(), sessionID, log)
			syncLog := cleanup
			cleanup = func() {
				st.Close()
				syncLog()
			}
		}
	}

	ctrl, err := session.NewController(gateway, session.Options{
		Config:         cfg.Session(),
		ContextWindow:  cfg.ContextWindow,
		ReportProgress: cfg.ReportProgress,
		SessionID:      sessionID,
		Logger:         log,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	log.Info("session opened",
		zap.String("session_id", sessionID),
		zap.String("api_url", cfg.APIURL),
		zap.String("language", string(cfg.Language)),
		zap.String("level", string(cfg.Level)),
		zap.Bool("journal", cfg.Journal),
	)
	return ctrl, cleanup, nil
}

func openJournal(cfg config.Config) (*store.Store, error) {
	path, err := cfg.JournalPath()
	if err != nil {
		return nil, fmt.Errorf("resolve journal path: %w", err)
	}
	if err := store.EnsureDir(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}
