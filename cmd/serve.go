// =============================================================================
// Payroll Bank Splitter - Serve Command
// =============================================================================
//
// This file implements the 'serve' command, which exposes one processing
// session over HTTP.
//
// COMMAND USAGE:
//   payroll-splitter serve [--addr :8080]
//
// The session lives in memory for the lifetime of the process. Stopping the
// server discards every artifact.
//
// =============================================================================

package cmd

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/metrics"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/pipeline"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/server"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/store"
)

// serveAddr overrides the configured listen address.
var serveAddr string

// shutdownTimeout bounds the graceful shutdown.
const shutdownTimeout = 10 * time.Second

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for step-by-step sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = appConfig.Server.Addr
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		p := pipeline.New(appConfig, store.New(), pipeline.WithMetrics(metrics.New(reg)))
		srv := server.New(appConfig, p, reg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(addr)
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}
