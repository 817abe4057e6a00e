package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/engineering87/TemporalCollections-sub001/pkg/config"
	"github.com/engineering87/TemporalCollections-sub001/pkg/observability"
)

// shutdownGrace bounds how long an exiting server drains in-flight requests.
const shutdownGrace = 5 * time.Second

// ServeCommand holds flag state for the serve command.
type ServeCommand struct {
	configPath string
	host       string
	port       int
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	sc := &ServeCommand{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the metrics and health endpoint server",
		Long:  "Serve a Prometheus scrape endpoint on /metrics and a liveness probe on /healthz until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.configPath, "config", "", "Config file path (default: ./config.yaml)")
	cmd.Flags().StringVar(&sc.host, "host", "", "Listen host (empty = config value)")
	cmd.Flags().IntVar(&sc.port, "port", 0, "Listen port (0 = config value)")

	return cmd
}

func (sc *ServeCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(sc.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host = sc.host
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = sc.port
	}

	providers, err := observability.Init(telemetryConfig(cfg, observability.ModeServe))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		_ = providers.Shutdown(shutdownCtx)
	}()

	metricsHandler, promProvider, err := observability.PrometheusHandler()
	if err != nil {
		return fmt.Errorf("init prometheus endpoint: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		_ = promProvider.Shutdown(shutdownCtx)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))

	server := &http.Server{
		Addr:         addr,
		Handler:      newServeHandler(providers.Tracer, metricsHandler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		providers.Logger.InfoContext(ctx, "metrics server listening", "addr", addr)

		listenErr := server.ListenAndServe()
		if listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			serveErr <- listenErr
		}

		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case listenErr := <-serveErr:
		if listenErr != nil {
			return fmt.Errorf("metrics server: %w", listenErr)
		}

		return nil
	}

	providers.Logger.Info("shutting down metrics server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("shutdown metrics server: %w", shutdownErr)
	}

	return nil
}

// newServeHandler routes the scrape and liveness endpoints behind the tracing
// middleware.
func newServeHandler(tracer trace.Tracer, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return observability.HTTPMiddleware(tracer, mux)
}
