package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/rulemine/internal/config"
)

var (
	dbPath  string
	cfgFile string

	// settings is resolved once per invocation by initConfig.
	settings *config.Settings

	// RootCmd is the root command for rulemine
	RootCmd = &cobra.Command{
		Use:   "rulemine",
		Short: "Frequent itemset and association rule mining",
		Long: `rulemine finds items that frequently appear together in a transaction log
and derives association rules from them with the Apriori algorithm.

Each line of the input file is one transaction: items separated by
whitespace. Itemsets seen in at least --min-support transactions are
frequent; every frequent pair and triple yields rules such as

  {bread} -> {butter} - frequency: 42, confidence = 0.84

ranked by confidence. Runs are stored so they can be browsed later.

Examples:
  # Mine a log and write the report
  rulemine mine browsing.txt rules.txt

  # Lower the support threshold and go one level deeper
  rulemine mine browsing.txt rules.txt --min-support 50 --max-level 4

  # List stored runs
  rulemine runs

  # What goes with bread?
  rulemine explain bread

  # Re-mine whenever the log changes
  rulemine watch browsing.txt rules.txt`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("rulemine: frequent itemset and association rule mining")
			fmt.Println()
			fmt.Println("Run 'rulemine mine <input> <report>' to mine a transaction log.")
			fmt.Println("Run 'rulemine --help' for the full reference.")
			return nil
		},
	}
)

// flagKeys maps flags to the configuration keys they override.
var flagKeys = map[string]string{
	"log-level":   "logging.level",
	"log-format":  "logging.format",
	"min-support": "mining.min_support",
	"max-level":   "mining.max_level",
	"workers":     "mining.workers",
}

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.rulemine/rulemine.db)")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/rulemine/config.yaml)")
	RootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which commands observe for
// cancellation.
func ExecuteContext(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

// initConfig resolves settings from defaults, the config file, RULEMINE_*
// environment variables and the flags of cmd, then sets up logging.
func initConfig(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	config.SetDefaults(v)

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}

	s, err := config.Load(v)
	if err != nil {
		return err
	}
	settings = s

	return setupLogging(s.Logging)
}

// currentSettings returns the settings of this invocation, falling back to
// defaults when initConfig has not run.
func currentSettings() (*config.Settings, error) {
	if settings != nil {
		return settings, nil
	}
	v := viper.New()
	config.SetDefaults(v)
	s, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	settings = s
	return s, nil
}

func setupLogging(l config.LoggingSettings) error {
	level, err := l.SlogLevel()
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch l.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// getDBPath returns the database path: the --db flag, then database.path
// from the configuration, then ~/.rulemine/rulemine.db.
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	if settings != nil && settings.Database.Path != "" {
		return settings.Database.Path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	path := config.DefaultDBPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create rulemine directory: %w", err)
	}

	return path, nil
}
