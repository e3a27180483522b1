package devrt

import (
	"errors"
	"testing"
)

func TestOpenHostByDefault(t *testing.T) {
	for _, name := range []string{"", "host", " HOST "} {
		rt, err := Open(name, HostConfig{BudgetMB: 8})
		if err != nil {
			t.Fatalf("Open(%q): %v", name, err)
		}
		if rt.Info().Name != NameHost {
			t.Fatalf("Open(%q) returned %q runtime", name, rt.Info().Name)
		}
		if rt.Info().TotalBytes != 8*mb {
			t.Fatalf("budget not applied: %+v", rt.Info())
		}
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open("opencl", HostConfig{}); !errors.Is(err, ErrUnknownRuntime) {
		t.Fatalf("expected ErrUnknownRuntime, got %v", err)
	}
}

func TestOpenCUDAWithoutDevice(t *testing.T) {
	rt, err := Open(NameCUDA, HostConfig{})
	if err != nil {
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}
		return
	}
	if rt.Info().Name != NameCUDA {
		t.Fatalf("unexpected runtime %q", rt.Info().Name)
	}
}

func TestStatsOfLooksThroughInstrumented(t *testing.T) {
	host := NewHostRuntime(HostConfig{})
	p, _ := host.Malloc(10)
	defer host.Free(p)
	s, ok := StatsOf(Instrument(host))
	if !ok || s.Allocations != 1 {
		t.Fatalf("StatsOf: ok=%v stats=%+v", ok, s)
	}
	if _, ok := StatsOf(&CUDARuntime{}); ok {
		t.Fatalf("CUDA runtime keeps no stats")
	}
}

func TestCloseLooksThroughInstrumented(t *testing.T) {
	host := NewHostRuntime(HostConfig{})
	if _, st := host.Malloc(64); !st.OK() {
		t.Fatalf("malloc: %v", st)
	}
	if err := Close(Instrument(host)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s := host.Stats(); s.LiveBuffers != 0 {
		t.Fatalf("expected buffers released by Close, got %d", s.LiveBuffers)
	}
	if err := Close(&CUDARuntime{}); err != nil {
		t.Fatalf("Close without resources: %v", err)
	}
}
