package manager

import (
	"context"
	"testing"
	"time"

	"devmem/internal/devrt"
)

// newHost returns a host runtime closed at test end.
func newHost(t *testing.T, cfg devrt.HostConfig) *devrt.HostRuntime {
	t.Helper()
	rt := devrt.NewHostRuntime(cfg)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

// newReadyManager builds a manager over a fresh host runtime and runs
// Preflight so it accepts probes.
func newReadyManager(t *testing.T, cfg ManagerConfig) *Manager {
	t.Helper()
	if cfg.Runtime == nil {
		cfg.Runtime = newHost(t, devrt.HostConfig{})
	}
	m := NewWithConfig(cfg)
	if err := m.Preflight(testCtx(t)); err != nil {
		t.Fatalf("Preflight: %v", err)
	}
	return m
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
