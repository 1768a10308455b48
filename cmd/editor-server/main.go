package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalsfoundry/antenna-workbench/internal/httpapi"
	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/internal/observability"
)

func main() {
	cfg := httpapi.FromEnv()
	addr := flag.String("addr", cfg.Addr, "TCP address the editor API listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics, empty disables")
	solverURL := flag.String("solver-url", cfg.SolverURL, "Base URL of the numeric engine, empty disables solving")
	flag.Parse()
	cfg.Addr = *addr
	cfg.SolverURL = *solverURL

	log := logging.NewFromEnv()
	ctx := context.Background()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Error(ctx, "failed to listen", logging.String("addr", cfg.Addr), logging.Err(err))
		os.Exit(1)
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(stopCtx, cfg, *metricsAddr, log, ln); err != nil {
		log.Error(ctx, "editor API exited", logging.Err(err))
		os.Exit(1)
	}
}

// run serves the API until ctx is canceled. The listener comes from the
// caller so tests can bind an ephemeral port.
func run(ctx context.Context, cfg httpapi.Config, metricsAddr string, log logging.Logger, ln net.Listener) error {
	collector, err := observability.NewEditorCollector(nil)
	if err != nil {
		return fmt.Errorf("init metrics collector: %w", err)
	}
	jobsCollector, err := observability.NewSolverJobsCollector(nil)
	if err != nil {
		return fmt.Errorf("init solver job metrics: %w", err)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	metricsSrv := serveMetrics(metricsAddr, collector, log)

	srv := httpapi.NewServer(cfg, log,
		httpapi.WithCollector(collector),
		httpapi.WithJobsCollector(jobsCollector),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	log.Info(ctx, "editor API serving",
		logging.String("addr", ln.Addr().String()),
		logging.Bool("solver_configured", cfg.SolverURL != ""))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down editor API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if err := <-errCh; err != nil {
		return err
	}
	return shutdownErr
}

func serveMetrics(addr string, collector *observability.EditorCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
