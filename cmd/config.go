package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath(cmd))
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file with every default",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path := configPath(cmd)

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config already exists: %s (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat config: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		journal := "off"
		if cfg.Journal {
			p, err := cfg.JournalPath()
			if err != nil {
				return err
			}
			journal = p
		}
		timeout := "none"
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout.String()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file:     %s\n", configPath(cmd))
		fmt.Fprintf(out, "API URL:         %s\n", cfg.APIURL)
		fmt.Fprintf(out, "Timeout:         %s\n", timeout)
		fmt.Fprintf(out, "Language:        %s\n", cfg.Language.Title())
		fmt.Fprintf(out, "Level:           %s\n", cfg.Level.Title())
		fmt.Fprintf(out, "Feedback:        %v\n", cfg.Feedback)
		fmt.Fprintf(out, "Context window:  %d\n", cfg.ContextWindow)
		fmt.Fprintf(out, "Report progress: %v\n", cfg.ReportProgress)
		fmt.Fprintf(out, "Log file:        %s\n", orNone(cfg.LogFile))
		fmt.Fprintf(out, "Journal:         %s\n", journal)
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
