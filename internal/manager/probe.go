package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devmem/internal/devrt"
	"devmem/pkg/types"
)

const maxGrowSteps = 1024

// Probe validates req, waits for admission and runs the workload on the
// device. Validation failures satisfy IsInvalidProbe, admission failures
// IsTooBusy; device failures wrap a *devmem.RuntimeError.
func (m *Manager) Probe(ctx context.Context, req types.ProbeRequest) (types.ProbeResponse, error) {
	req, err := m.normalize(req)
	if err != nil {
		return types.ProbeResponse{}, err
	}
	id := m.nextOpID()

	release, err := m.beginProbe(ctx, false)
	if err != nil {
		if IsTooBusy(err) {
			m.publish(Event{Name: "probe_rejected", ProbeID: id, Fields: map[string]any{"reason": err.Error()}})
		}
		return types.ProbeResponse{}, err
	}
	defer release()

	m.publish(Event{Name: "probe_start", ProbeID: id, Fields: map[string]any{"kind": req.Kind, "dtype": req.DType}})
	start := time.Now()
	res, err := runProbe(m.rt, req)
	dur := time.Since(start)

	resp := types.ProbeResponse{
		ID:          id,
		Kind:        req.Kind,
		DType:       req.DType,
		Runtime:     m.info.Name,
		Elems:       res.Elems,
		BytesCopied: res.BytesCopied,
		Allocations: res.Allocations,
		Frees:       res.Frees,
		Capacity:    res.Capacity,
		Verified:    res.Verified,
		Mismatches:  res.Mismatches,
		DurationMS:  dur.Milliseconds(),
	}
	if err != nil {
		m.probeFailures.Add(1)
		m.recordError(err)
		m.publish(Event{Name: "probe_failed", ProbeID: id, Fields: map[string]any{"error": err.Error()}})
		return resp, fmt.Errorf("%s %s: %w", req.Kind, id, err)
	}
	m.probesTotal.Add(1)
	m.publish(Event{Name: "probe_done", ProbeID: id, Fields: map[string]any{
		"allocations": res.Allocations,
		"verified":    res.Verified,
		"dur_ms":      dur.Milliseconds(),
	}})
	return resp, nil
}

// normalize fills defaults and rejects requests the manager will not run.
func (m *Manager) normalize(req types.ProbeRequest) (types.ProbeRequest, error) {
	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))
	req.DType = strings.ToLower(strings.TrimSpace(req.DType))
	if req.DType == "" {
		req.DType = types.DTypeFloat32
	}
	if types.DTypeSize(req.DType) == 0 {
		return req, ErrInvalidProbe(fmt.Sprintf("unsupported dtype %q (want one of %s)", req.DType, strings.Join(types.DTypes, ", ")))
	}
	switch req.Kind {
	case types.ProbeRoundTrip:
		if err := m.checkElems("elems", req.Elems); err != nil {
			return req, err
		}
	case types.ProbeGrow:
		if len(req.Sizes) == 0 {
			return req, ErrInvalidProbe("grow needs at least one size")
		}
		if len(req.Sizes) > maxGrowSteps {
			return req, ErrInvalidProbe(fmt.Sprintf("grow accepts at most %d sizes", maxGrowSteps))
		}
		for _, n := range req.Sizes {
			if err := m.checkElems("size", n); err != nil {
				return req, err
			}
		}
	case "":
		return req, ErrInvalidProbe("kind is required")
	default:
		return req, ErrInvalidProbe(fmt.Sprintf("unknown kind %q", req.Kind))
	}
	return req, nil
}

func (m *Manager) checkElems(field string, n int) error {
	if n < 0 {
		return ErrInvalidProbe(fmt.Sprintf("%s must not be negative", field))
	}
	if n > m.maxElems {
		return ErrInvalidProbe(fmt.Sprintf("%s %d exceeds limit %d", field, n, m.maxElems))
	}
	return nil
}

func (m *Manager) recordError(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
}

func runProbe(rt devrt.Runtime, req types.ProbeRequest) (workloadResult, error) {
	switch req.DType {
	case types.DTypeFloat64:
		return runKind[float64](rt, req)
	case types.DTypeInt32:
		return runKind[int32](rt, req)
	case types.DTypeUint8:
		return runKind[uint8](rt, req)
	default:
		return runKind[float32](rt, req)
	}
}

func runKind[T number](rt devrt.Runtime, req types.ProbeRequest) (workloadResult, error) {
	if req.Kind == types.ProbeGrow {
		return runGrow[T](rt, req.Sizes)
	}
	return runRoundTrip[T](rt, req.Elems)
}
