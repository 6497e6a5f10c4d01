package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bissquit/hotel-booking/internal/app"
	"github.com/bissquit/hotel-booking/internal/config"
	"github.com/bissquit/hotel-booking/internal/pkg/postgres"
	"github.com/bissquit/hotel-booking/internal/version"
	"github.com/bissquit/hotel-booking/migrations"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), configPath)
		},
	}

	root := &cobra.Command{
		Use:           "hotel-booking",
		Short:         "Hotel room booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serveCmd.RunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv(config.EnvPrefix+"CONFIG"), "path to a YAML config file")

	root.AddCommand(
		serveCmd,
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				if cfg.Storage.Driver != config.DriverPostgres {
					return fmt.Errorf("migrate requires the %q storage driver, got %q", config.DriverPostgres, cfg.Storage.Driver)
				}
				app.NewLogger(cfg.Log).Info("applying migrations")
				return postgres.Migrate(cfg.Database.URL, migrations.FS)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the server version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Printf("hotel-booking %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildDate)
			},
		},
	)

	return root
}

func runServer(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(runErr, application.Shutdown(shutdownCtx))
}
