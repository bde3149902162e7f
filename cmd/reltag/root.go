package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/reltag/internal/cli"
	"github.com/pthm/reltag/internal/logging"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string
	logger     = slog.New(slog.DiscardHandler)

	// Persistent flags
	cfgFile      string
	verbose      int
	quiet        bool
	dbFlag       string
	snapshotFlag string
	schemasFlag  []string
)

var rootCmd = &cobra.Command{
	Use:   "reltag",
	Short: "Forward relations from PostgreSQL smart tags",
	Long: `reltag - forward relations from PostgreSQL smart tags

reltag reads @references and @foreignKey tags from table and column comments
and turns each into a single-row relation field on the GraphQL type of the
tagged table, resolved with one correlated sub-select.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}
		if len(schemasFlag) > 0 {
			cfg.Schemas = schemasFlag
		}

		logger = logging.New(logging.EffectiveLevel(cfg.Log.Level, verbose, quiet), os.Stderr)
		logger.Debug("configuration loaded", "path", configPath, "schemas", cfg.Schemas)
		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupCatalog = "catalog"
	groupUtility = "utility"
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: auto-discover reltag.yaml)")
	pf.CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	pf.StringVar(&dbFlag, "db", "", "database URL (overrides database.* settings)")
	pf.StringVar(&snapshotFlag, "snapshot", "", "read the catalog from a snapshot file instead of the database")
	pf.StringSliceVar(&schemasFlag, "schemas", nil, "namespaces to introspect (overrides the schemas setting)")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupCatalog, Title: "Catalog:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	relationsCmd.GroupID = groupCatalog
	doctorCmd.GroupID = groupCatalog
	snapshotCmd.GroupID = groupCatalog
	queryCmd.GroupID = groupCatalog
	rootCmd.AddCommand(relationsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(queryCmd)

	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if code := cli.Report(os.Stderr, rootCmd.Execute()); code != cli.ExitSuccess {
		os.Exit(code)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveBool returns true if any of the provided values is true.
func resolveBool(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}
