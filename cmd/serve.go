package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hattrick/sportsbook/internal/app"
	"github.com/hattrick/sportsbook/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sportsbook service",
	Long: `Starts the sportsbook HTTP service, which will:
1. Connect to PostgreSQL and create the schema when missing
2. Serve the betting offer and accept bet placements
3. Apply deposits and withdrawals on user accounts
4. Expose Prometheus metrics and health probes

Use --skip-migrate when the schema is managed externally.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("skip-migrate", false, "Do not create the database schema on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
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

	skipMigrate, _ := cmd.Flags().GetBool("skip-migrate")

	application, err := app.New(cfg, logger, &app.Options{
		SkipMigrate: skipMigrate,
	})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
