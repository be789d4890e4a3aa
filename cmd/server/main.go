package main

import (
	"fmt"
	"os"

	"github.com/Tarun62689/gdrive-backend/internal/config"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagConfig string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gdrive-server",
	Short: "Drive backend: folders, files, sharing and signed downloads",
	Long: `gdrive-server serves the drive HTTP API.

  gdrive-server                  Start the API server (same as "serve")
  gdrive-server migrate          Apply database migrations and exit
  gdrive-server --config x.toml  Layer a TOML file under the environment`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment may already be set.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.Configure(cfg.Log.Level, cfg.Log.Development)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a TOML config file (default: $CONFIG_FILE)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
