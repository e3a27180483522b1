package manager

import (
	"errors"
	"strings"
	"testing"

	"devmem/internal/devmem"
	"devmem/internal/devrt"
	"devmem/pkg/types"
)

func TestProbe_RoundTripAllDTypes(t *testing.T) {
	m := newReadyManager(t, ManagerConfig{})
	for _, dt := range types.DTypes {
		t.Run(dt, func(t *testing.T) {
			const n = 1000
			resp, err := m.Probe(testCtx(t), types.ProbeRequest{Kind: "roundtrip", DType: dt, Elems: n})
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if !resp.Verified || resp.Mismatches != 0 {
				t.Fatalf("roundtrip not verified: %+v", resp)
			}
			if resp.Allocations != 1 || resp.Frees != 1 || resp.Capacity != n {
				t.Fatalf("unexpected accounting: %+v", resp)
			}
			if want := uint64(2 * n * types.DTypeSize(dt)); resp.BytesCopied != want {
				t.Fatalf("bytes copied %d want %d", resp.BytesCopied, want)
			}
			if resp.Runtime != "host" || resp.DType != dt || !strings.HasPrefix(resp.ID, "probe-") {
				t.Fatalf("unexpected response metadata: %+v", resp)
			}
		})
	}
}

func TestProbe_DefaultsAndNormalization(t *testing.T) {
	m := newReadyManager(t, ManagerConfig{})
	resp, err := m.Probe(testCtx(t), types.ProbeRequest{Kind: " RoundTrip ", Elems: 3})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if resp.Kind != types.ProbeRoundTrip || resp.DType != types.DTypeFloat32 {
		t.Fatalf("expected normalized kind and default dtype, got %+v", resp)
	}
}

func TestProbe_RoundTripZeroElems(t *testing.T) {
	m := newReadyManager(t, ManagerConfig{})
	resp, err := m.Probe(testCtx(t), types.ProbeRequest{Kind: types.ProbeRoundTrip, Elems: 0})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if resp.Allocations != 0 || resp.Frees != 0 || resp.BytesCopied != 0 || !resp.Verified {
		t.Fatalf("zero-size roundtrip should do no device work: %+v", resp)
	}
}

func TestProbe_GrowReusesBuffer(t *testing.T) {
	m := newReadyManager(t, ManagerConfig{})
	sizes := []int{4, 2, 8, 8, 3}
	resp, err := m.Probe(testCtx(t), types.ProbeRequest{Kind: types.ProbeGrow, DType: types.DTypeFloat32, Sizes: sizes})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	// 4 allocates, 8 reallocates, everything else reuses; Close frees the last.
	if resp.Allocations != 2 || resp.Frees != 2 {
		t.Fatalf("allocations=%d frees=%d", resp.Allocations, resp.Frees)
	}
	if resp.Capacity != 8 || resp.Elems != 3 || !resp.Verified {
		t.Fatalf("unexpected grow result: %+v", resp)
	}
	if want := uint64((4+2+8+8+3+3)*4); resp.BytesCopied != want {
		t.Fatalf("bytes copied %d want %d", resp.BytesCopied, want)
	}
}

func TestProbe_InvalidRequests(t *testing.T) {
	m := newReadyManager(t, ManagerConfig{MaxElems: 100})
	cases := []types.ProbeRequest{
		{},
		{Kind: "spin"},
		{Kind: types.ProbeRoundTrip, DType: "bfloat16"},
		{Kind: types.ProbeRoundTrip, Elems: -1},
		{Kind: types.ProbeRoundTrip, Elems: 101},
		{Kind: types.ProbeGrow},
		{Kind: types.ProbeGrow, Sizes: []int{1, -2}},
		{Kind: types.ProbeGrow, Sizes: make([]int, maxGrowSteps+1)},
	}
	for _, req := range cases {
		if _, err := m.Probe(testCtx(t), req); !IsInvalidProbe(err) {
			t.Fatalf("%+v: expected invalid probe error, got %v", req, err)
		}
	}
	if got := m.Status().ProbesTotal + m.Status().ProbeFailures; got != 0 {
		t.Fatalf("rejected requests must not count as probes, got %d", got)
	}
}

func TestProbe_BudgetExceeded(t *testing.T) {
	rt := newHost(t, devrt.HostConfig{BudgetMB: 1})
	m := newReadyManager(t, ManagerConfig{Runtime: rt})
	_, err := m.Probe(testCtx(t), types.ProbeRequest{Kind: types.ProbeRoundTrip, Elems: 1 << 20})
	if err == nil {
		t.Fatalf("expected allocation failure")
	}
	if st, ok := devmem.StatusOf(err); !ok || st != devrt.StatusMemoryAllocation {
		t.Fatalf("expected MemoryAllocation runtime error, got %v", err)
	}
	if !errors.Is(err, devrt.StatusMemoryAllocation) {
		t.Fatalf("errors.Is should see the runtime status through the wrap")
	}
	s := m.Status()
	if s.ProbeFailures != 1 || s.LastError == "" {
		t.Fatalf("failure not recorded in status: %+v", s)
	}
	if s.State != string(StateReady) {
		t.Fatalf("a failed probe must not change manager state, got %s", s.State)
	}
	if s.Memory.LiveBuffers != 0 {
		t.Fatalf("failed probe leaked %d buffers", s.Memory.LiveBuffers)
	}
}
