package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stackedwins/app"
	"stackedwins/config"
	"stackedwins/logger"
)

var rootCmd = &cobra.Command{
	Use:           "stackedwins",
	Short:         "Stacked Wins coaching backend",
	Long:          "stackedwins serves the Stacked Wins API and runs its maintenance tasks.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the command line; serve is the default.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the application graph.
func bootstrap() (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, recomputeCmd, exportCmd)
}
