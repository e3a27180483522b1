package manager

import (
	"testing"

	"devmem/internal/devrt"
	"devmem/pkg/types"
)

func TestEventPublisher_PreflightAndProbe_EmitsEvents(t *testing.T) {
	pub := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{Runtime: newHost(t, devrt.HostConfig{}), Publisher: pub})
	if err := m.Preflight(testCtx(t)); err != nil {
		t.Fatalf("Preflight: %v", err)
	}
	if _, err := m.Probe(testCtx(t), types.ProbeRequest{Kind: types.ProbeRoundTrip, Elems: 8}); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	want := []string{"preflight_ok", "probe_start", "probe_done", "drain_start", "drain_done"}
	got := pub.Names()
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events %v, want %v", got, want)
		}
	}
	evts := pub.Events()
	if evts[1].ProbeID == "" || evts[1].ProbeID != evts[2].ProbeID {
		t.Fatalf("probe events should share an id: %+v", evts)
	}
}

func TestEventPublisher_FailuresAndRejections(t *testing.T) {
	pub := NewMemoryPublisher()
	m := newReadyManager(t, ManagerConfig{Runtime: newHost(t, devrt.HostConfig{BudgetMB: 1})})
	m.SetEventPublisher(pub)
	_, _ = m.Probe(testCtx(t), types.ProbeRequest{Kind: types.ProbeRoundTrip, Elems: 1 << 20})
	_ = m.Close()
	_, _ = m.Probe(testCtx(t), types.ProbeRequest{Kind: types.ProbeRoundTrip, Elems: 1})

	seen := map[string]bool{}
	for _, n := range pub.Names() {
		seen[n] = true
	}
	for _, n := range []string{"probe_failed", "probe_rejected"} {
		if !seen[n] {
			t.Fatalf("expected event %q, got %v", n, pub.Names())
		}
	}
}

func TestSetEventPublisher_NilRestoresNoop(t *testing.T) {
	m := newReadyManager(t, ManagerConfig{})
	m.SetEventPublisher(nil)
	if _, err := m.Probe(testCtx(t), types.ProbeRequest{Kind: types.ProbeRoundTrip, Elems: 1}); err != nil {
		t.Fatalf("Probe: %v", err)
	}
}
