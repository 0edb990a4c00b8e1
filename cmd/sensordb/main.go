package main

import (
	"fmt"
	"os"

	"github.com/maloquacious/semver"
	"github.com/maloquacious/sensordb/internal/config"
	"github.com/maloquacious/sensordb/internal/logger"
	"github.com/maloquacious/sensordb/internal/store"
	"github.com/maloquacious/sensordb/internal/store/sqlite"
	"github.com/spf13/cobra"
)

var (
	version   = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
	buildDate = ""
)

// options holds the resolved settings for one invocation.
type options struct {
	envFile  string
	dbPath   string
	logLevel string
	nameOnly bool

	cfg config.Config
	log *logger.StdLogger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "sensordb",
		Short:         "Sensor readings datastore tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(cmd); err != nil {
				logger.New(cmd.ErrOrStderr(), logger.LevelError).Error("config: %v", err)
				return err
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file with SENSORDB_* settings")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to the SQLite database file (default $SENSORDB_PATH or ./"+store.DefaultDBFile+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL or info)")

	// db command group
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	dbCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the database file and the readings table if absent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBCreate(cmd, opts)
		},
	}
	dbCreateCmd.Flags().BoolVar(&opts.nameOnly, "name-only", false, "accept any existing readings table without checking its columns")

	dbVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the readings table matches the expected schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBVerify(cmd, opts)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if buildDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (built %s)\n", version.String(), buildDate)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}

	dbCmd.AddCommand(dbCreateCmd, dbVerifyCmd)
	rootCmd.AddCommand(dbCmd, versionCmd)

	return rootCmd
}

// resolve loads the env file and environment, then applies explicit flags.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("db") {
		cfg.DBPath = o.dbPath
	}
	if cmd.Flags().Changed("log-level") {
		lvl, err := logger.ParseLevel(o.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = lvl
	}
	if o.nameOnly {
		cfg.Policy = store.PolicyNameOnly
	}

	o.cfg = cfg
	o.log = logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	return nil
}

func runDBCreate(cmd *cobra.Command, opts *options) error {
	err := sqlite.EnsureSchema(cmd.Context(), opts.cfg.DBPath,
		sqlite.WithPolicy(opts.cfg.Policy),
		sqlite.WithLogger(opts.log),
	)
	if err != nil {
		opts.log.Error("db create: %v", err)
		return err
	}
	opts.log.Info("db create: %s table ready in %s", store.ReadingsTable, opts.cfg.DBPath)
	return nil
}

func runDBVerify(cmd *cobra.Command, opts *options) error {
	state, err := sqlite.Verify(cmd.Context(), opts.cfg.DBPath, sqlite.WithLogger(opts.log))
	if err != nil {
		opts.log.Error("db verify: %v", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", opts.cfg.DBPath, state)
	if state != store.StateReady {
		return fmt.Errorf("datastore %s is %s", opts.cfg.DBPath, state)
	}
	return nil
}
