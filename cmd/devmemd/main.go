package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"devmem/internal/config"
	"devmem/internal/devrt"
	"devmem/internal/httpapi"
	"devmem/internal/logging"
	"devmem/internal/manager"
)

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devmemd:", err)
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, log, nil); err != nil {
		log.Error().Err(err).Msg("devmemd exited")
		stop()
		os.Exit(1)
	}
}

// run serves the HTTP API until ctx is canceled. If ready is non-nil it
// receives the bound address once the listener is up.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger, ready chan<- string) error {
	raw, err := devrt.Open(cfg.Runtime, devrt.HostConfig{
		BudgetMB: cfg.BudgetMB,
		MarginMB: cfg.MarginMB,
		Device:   cfg.Device,
	})
	if err != nil {
		return fmt.Errorf("open runtime %q: %w", cfg.Runtime, err)
	}
	events := eventLogger{log: log.With().Str("component", "manager").Logger()}
	rt := devrt.Instrument(raw, devrt.WithLogger(log))
	defer func() {
		if err := devrt.Close(rt); err != nil {
			log.Warn().Err(err).Msg("release runtime")
		}
	}()

	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Runtime:       rt,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       cfg.MaxWait(),
		MaxElems:      cfg.MaxElems,
		Publisher:     events,
	})
	if err := mgr.Preflight(ctx); err != nil {
		// Keep serving /status and /healthz so the failure is visible; /readyz stays 503.
		log.Error().Err(err).Msg("device preflight failed")
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetRequestLogLevel(cfg.RequestLogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetProbeTimeout(cfg.ProbeTimeout())
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := listen(cfg.Addr)
	if err != nil {
		return err
	}
	info := rt.Info()
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("runtime", info.Name).
		Str("device", info.Device).
		Int("budget_mb", cfg.BudgetMB).
		Int("margin_mb", cfg.MarginMB).
		Msg("devmemd listening")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info().Msg("shutting down")
	cancelBase()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := mgr.Close(); err != nil {
		log.Warn().Err(err).Msg("drain probes")
	}
	return nil
}

// eventLogger publishes manager events to the daemon log.
type eventLogger struct{ log zerolog.Logger }

func (e eventLogger) Publish(ev manager.Event) {
	l := e.log.Debug()
	if ev.Name == "probe_failed" || ev.Name == "preflight_failed" || ev.Name == "drain_timeout" {
		l = e.log.Warn()
	}
	if ev.ProbeID != "" {
		l = l.Str("probe_id", ev.ProbeID)
	}
	l.Fields(ev.Fields).Msg(ev.Name)
}
