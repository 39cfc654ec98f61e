package command

// root.go defines the quantumflux root command and the helpers its
// subcommands share for loading configuration and opening the database.

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"quantumflux/database"
	"quantumflux/internal/config"
	"quantumflux/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "quantumflux",
	Short: "quantumflux - discussion forum backend",
	Long: `quantumflux serves the forum REST API: accounts, topics with
categories and tags, threaded comments with reactions, and user profiles.

Configuration is read from the environment and an optional .env file.
Use "quantumflux [command] --help" to see the flags of each command.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, promoteCmd)
}

// bootstrap loads and validates configuration, builds the logger and connects to PostgreSQL.
func bootstrap(ctx context.Context) (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	log := logger.New(cfg)
	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}
