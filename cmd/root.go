package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/catalog"
	"github.com/abhisek/mathdrill/internal/config"
	"github.com/abhisek/mathdrill/internal/logging"
	"github.com/abhisek/mathdrill/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "mathdrill",
	Short:        "Terminal math drills",
	Long:         "mathdrill: pick a lesson, answer its questions, see your score.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides MATHDRILL_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHDRILL_DB env var)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config, then MATHDRILL_CONFIG,
// then the default location.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file or MATHDRILL_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := cfg.Store.DBPath; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore loads the config and opens the history database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// newCatalog builds the lesson store from the config, filling default
// file locations.
func newCatalog(cfg config.Config, log logrus.FieldLogger) (*catalog.Store, error) {
	cc := catalog.Config{
		CacheFile:  cfg.Lessons.CacheFile,
		CustomFile: cfg.Lessons.CustomFile,
		RemoteURL:  cfg.Lessons.RemoteURL,
		Timeout:    cfg.FetchTimeout(),
	}
	if cc.CacheFile == "" {
		p, err := catalog.DefaultCachePath()
		if err != nil {
			return nil, fmt.Errorf("resolve lesson cache: %w", err)
		}
		cc.CacheFile = p
	}
	if cc.CustomFile == "" {
		p, err := catalog.DefaultCustomPath()
		if err != nil {
			return nil, fmt.Errorf("resolve custom lessons: %w", err)
		}
		cc.CustomFile = p
	}
	return catalog.New(cc, catalog.WithLogger(log)), nil
}

// cliLogger sets up file logging, falling back to a discarding logger with
// a note on stderr when the log file cannot be opened.
func cliLogger(cmd *cobra.Command, cfg config.Config) (logrus.FieldLogger, func() error) {
	log, closeLog, err := logging.Setup(cfg.Log)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Logging unavailable:", err)
		return logging.Discard(), func() error { return nil }
	}
	return log, closeLog
}
