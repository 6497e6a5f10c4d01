// Package cli implements hotelctl, the command-line client of the hotel
// booking API. The client keeps its session in a key-value store so that a
// login survives between invocations.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bissquit/hotel-booking/internal/client"
	"github.com/bissquit/hotel-booking/internal/pkg/kvstore"
	kvredis "github.com/bissquit/hotel-booking/internal/pkg/kvstore/redis"
	"github.com/bissquit/hotel-booking/internal/session"
	"github.com/bissquit/hotel-booking/internal/version"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is returned by commands that need an authenticated session.
var ErrNotLoggedIn = errors.New("not logged in: run `hotelctl login` first")

type options struct {
	server       string
	timeout      time.Duration
	sessionFile  string
	sessionRedis string
}

// runtime is built once per invocation before any subcommand runs.
type runtime struct {
	out     io.Writer
	session *session.Store
	api     *client.Client
	closers []func() error
}

// requireSession returns a client authenticated with the session token.
func (rt *runtime) requireSession() (*client.Client, error) {
	current := rt.session.Current()
	if !current.IsAuthenticated() {
		return nil, ErrNotLoggedIn
	}
	return rt.api.WithToken(current.Token), nil
}

func (rt *runtime) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(rt.out, format, args...)
}

// NewRootCommand creates the hotelctl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}
	rt := &runtime{out: out}

	root := &cobra.Command{
		Use:           "hotelctl",
		Short:         "Browse rooms and manage hotel bookings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd.Context(), opts)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return rt.close()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.server, "server", envOr("HOTELCTL_SERVER", "http://localhost:8080"), "API base URL")
	flags.DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "per-request timeout")
	flags.StringVar(&opts.sessionFile, "session-file", defaultSessionFile(), "file holding the login session")
	flags.StringVar(&opts.sessionRedis, "session-redis", os.Getenv("HOTELCTL_SESSION_REDIS"), "redis URL holding the login session; overrides --session-file")

	root.AddCommand(
		newRegisterCommand(rt),
		newLoginCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newRoomsCommand(rt),
		newBookCommand(rt),
		newBookingsCommand(rt),
		newVersionCommand(rt),
	)

	return root
}

func (rt *runtime) init(ctx context.Context, opts *options) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	storage, err := rt.openSessionStorage(ctx, opts)
	if err != nil {
		return err
	}

	rt.session = session.New(ctx, storage, logger)
	rt.api = client.New(opts.server, opts.timeout)
	return nil
}

func (rt *runtime) openSessionStorage(ctx context.Context, opts *options) (kvstore.Store, error) {
	if opts.sessionRedis == "" {
		return kvstore.NewFile(opts.sessionFile), nil
	}

	store, err := kvredis.Connect(ctx, opts.sessionRedis, "hotelctl")
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}
	rt.closers = append(rt.closers, store.Close)
	return store, nil
}

func (rt *runtime) close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func newVersionCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			rt.printf("hotelctl %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildDate)
			return nil
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".hotelctl-session.json"
	}
	return filepath.Join(dir, "hotelctl", "session.json")
}
