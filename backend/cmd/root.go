package cmd

import (
	"log/slog"

	"lms/backend/config"
	"lms/backend/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "lms",
	Short: "Adaptive assessment and progression backend",
	Long:  "Placement tests, module tests and course progress for the learning platform.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to a SQLite database file (overrides DB_DRIVER and SQLITE_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
}

// setup loads configuration, builds the logger and opens the migrated
// database. The --db flag switches to SQLite at the given path.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBDriver = "sqlite"
		cfg.SQLitePath = p
	}

	logger := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat, Level: cfg.LogLevel})

	db, err := utils.InitDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}
