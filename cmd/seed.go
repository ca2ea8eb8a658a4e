package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hattrick/sportsbook/internal/seed"
	"github.com/hattrick/sportsbook/internal/storage"
	"github.com/hattrick/sportsbook/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo data set",
	Long: `Creates the database schema when missing and loads the demo data set:
the progressive tax schedule, demo user accounts and a betting offer with
priced outcomes laid out around the current time.

Run it once against an empty database.`,
	RunE: runSeed,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(&storage.Config{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("create postgres store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	if err = store.Migrate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = seed.New(store, logger).Run(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}

	return nil
}
