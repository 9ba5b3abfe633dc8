package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/networkteam/crmsuite/internal/fakeconsole"
)

type serveOptions struct {
	addr     string
	username string
	password string
	noSeed   bool
	verbose  bool
	logSkip  []string
}

func main() {
	// Credentials default to the suite's .env so page objects can be pointed
	// at the stand-in without further setup.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "fakeconsole",
		Short: "Serve the stand-in CRM admin console",
		Long: `Serves an in-memory stand-in for the CRM admin console with the same
element ids, frames and dialogs as the real one. Point URL at it to develop
page objects without a remote account.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", "127.0.0.1:8095", "listen address")
	flags.StringVar(&opts.username, "username", os.Getenv("EMAIL"), "accepted user name, empty accepts any")
	flags.StringVar(&opts.password, "password", os.Getenv("PASSWORD"), "accepted password")
	flags.BoolVar(&opts.noSeed, "no-seed", false, "start without the seeded test contacts")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every served request")
	flags.StringSliceVar(&opts.logSkip, "log-skip", []string{fakeconsole.AnalyticsCommandPath}, "path prefixes left out of the request log")

	return cmd
}

func serve(ctx context.Context, opts serveOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	console := fakeconsole.New(fakeconsole.Options{
		Username: opts.username,
		Password: opts.password,
		SkipSeed:            opts.noSeed,
		RequestLogSkipPaths: opts.logSkip,
		Logger:              logger,
	})

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           console,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving console", slog.String("url", fmt.Sprintf("http://%s/", opts.addr)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving console: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down", slog.Int("loggedRequests", len(console.RequestLog().Requests())))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
