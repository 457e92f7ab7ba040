package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/config"
	"github.com/abhisek/lingo/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "lingo",
	Short: "Terminal language tutor",
	Long: "Lingo — practice a foreign language in the terminal, in free conversation\n" +
		"with a tutor or through short vocabulary exercises.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addConfigFlags(rootCmd)

	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// addConfigFlags registers the flags that override configuration values.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/lingo/config.toml)")
	f.String("api-url", "", "Tutoring service URL (overrides LINGO_API_URL)")
	f.StringP("language", "l", "", "Language to practice")
	f.String("level", "", "Proficiency level (novice, beginner, intermediate, advanced)")
	f.Duration("timeout", 0, "Per-request timeout, 0 waits for the service indefinitely")
	f.String("log-file", "", "Write structured logs to this file")
	f.Bool("debug", false, "Log at debug level")
	f.Bool("journal", false, "Record tutor exchanges in the SQLite journal")
	f.String("journal-db", "", "Path to the journal database (overrides LINGO_JOURNAL_DB)")
}

// loadConfig merges defaults, the config file, LINGO_* variables and the
// flags set on the command line, in increasing precedence.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configPath returns the --config flag, or the default XDG location.
func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	applyStringFlag(cmd, "api-url", &cfg.APIURL)
	applyStringFlag(cmd, "log-file", &cfg.LogFile)
	applyStringFlag(cmd, "journal-db", &cfg.JournalDB)
	applyBoolFlag(cmd, "debug", &cfg.Debug)
	applyBoolFlag(cmd, "journal", &cfg.Journal)
	if flags.Changed("timeout") {
		cfg.RequestTimeout, _ = flags.GetDuration("timeout")
	}

	if flags.Changed("language") {
		v, _ := flags.GetString("language")
		l, err := session.ParseLanguage(v)
		if err != nil {
			return fmt.Errorf("--language: %w", err)
		}
		cfg.Language = l
	}
	if flags.Changed("level") {
		v, _ := flags.GetString("level")
		l, err := session.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("--level: %w", err)
		}
		cfg.Level = l
	}
	return nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target, _ = cmd.Flags().GetString(name)
}

func applyBoolFlag(cmd *cobra.Command, name string, target *bool) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target, _ = cmd.Flags().GetBool(name)
}
