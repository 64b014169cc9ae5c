package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pwa-weather/internal/app"
	"pwa-weather/internal/config"
	"pwa-weather/internal/logging"
)

const appName = "pwa-weather"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	envFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:          appName,
		Short:        "Weather forecast cards for a list of cities",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		c.serveCmd(),
		c.migrateCmd(),
		c.citiesCmd(),
		c.classifyCmd(),
		c.forecastCmd(),
	)
	return rootCmd
}

// setup loads the dotenv file and the configuration and installs the logger.
// Variables already set in the environment win over the file.
func (c *cli) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", c.envFile, err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	c.cfg = cfg

	slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg, version, appName))
	return nil
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("starting",
				"app", appName,
				"version", version,
				"env", c.cfg.AppEnv,
				"log_level", c.cfg.LogLevel.String(),
			)

			err := app.Run(cmd.Context(), c.cfg)
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("run failed", "err", err)
				return err
			}

			slog.Info("shutting down")
			return nil
		},
	}
}
