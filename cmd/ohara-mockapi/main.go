// Command ohara-mockapi serves the touchpoint REST API from a local SQLite file,
// for offline use of the ohara CLI/TUI and for end-to-end tests.
//
// Usage:
//
//	ohara-mockapi --addr :8080 --db ./ohara.sqlite
//
// The API is mounted under /api, so point the client at http://localhost:8080/api.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ohara-cli/internal/apitest"
	"ohara-cli/internal/config"
	"ohara-cli/internal/logging"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		dbPath     string
		noSeed     bool
		debug      bool
	)

	cmd := &cobra.Command{
		Use:          "ohara-mockapi",
		Short:        "Serve the touchpoint API from a local SQLite file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.MockAPI.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.MockAPI.DBPath = dbPath
			}
			log := logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, debug)

			ctx := cmd.Context()
			st, err := apitest.OpenStore(ctx, cfg.MockAPI.DBPath, !noSeed)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := &http.Server{
				Addr:              cfg.MockAPI.Addr,
				Handler:           apitest.NewServer(st, log),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			log.Info().Str("addr", cfg.MockAPI.Addr).Str("db", cfg.MockAPI.DBPath).Msg("mock API listening")

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", os.Getenv("OHARA_CONFIG"), "Config file (default ~/.ohara/config.yaml)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (overrides mockapi.addr)")
	cmd.Flags().StringVar(&dbPath, "db", "ohara.sqlite", "SQLite database path (overrides mockapi.db_path)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "Do not seed the default categories and tags into an empty database")
	cmd.Flags().BoolVar(&debug, "debug", false, "Debug logging")
	return cmd
}
