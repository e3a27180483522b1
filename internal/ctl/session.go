package ctl

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"devmem/internal/config"
	"devmem/internal/devrt"
	"devmem/internal/manager"
)

// openRuntime is swapped by tests.
var openRuntime = devrt.Open

// session is an opened runtime plus a preflighted manager.
type session struct {
	rt  devrt.Runtime
	mgr *manager.Manager
}

func openSession(ctx context.Context, cfg config.Config, log zerolog.Logger) (*session, error) {
	raw, err := openRuntime(cfg.Runtime, devrt.HostConfig{
		BudgetMB: cfg.BudgetMB,
		MarginMB: cfg.MarginMB,
		Device:   cfg.Device,
	})
	if err != nil {
		return nil, fmt.Errorf("open runtime %q: %w", cfg.Runtime, err)
	}
	rt := devrt.Instrument(raw, devrt.WithLogger(log))
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Runtime:  rt,
		MaxElems: cfg.MaxElems,
	})
	if err := mgr.Preflight(ctx); err != nil {
		_ = devrt.Close(rt)
		return nil, fmt.Errorf("preflight: %w", err)
	}
	log.Debug().Str("runtime", rt.Info().Name).Msg("device ready")
	return &session{rt: rt, mgr: mgr}, nil
}

func (s *session) Close() error {
	_ = s.mgr.Close()
	return devrt.Close(s.rt)
}
