package manager

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"devmem/internal/devrt"
)

// Manager serializes device probes over a single Runtime.
type Manager struct {
	mu        sync.RWMutex
	state     State
	lastErr   string
	closed    bool
	rt        devrt.Runtime
	info      devrt.Info
	publisher EventPublisher
	startTime time.Time

	// Admission
	genCh         chan struct{} // size 1: single in-flight probe
	queueCh       chan struct{} // buffered: queue slots
	maxQueueDepth int
	maxWait       time.Duration

	// Request limits
	maxElems       int
	preflightElems int

	opSeq         atomic.Uint64
	probesTotal   atomic.Uint64
	probeFailures atomic.Uint64
}

// New builds a Manager over rt with package defaults.
func New(rt devrt.Runtime) *Manager {
	return NewWithConfig(ManagerConfig{Runtime: rt})
}

// SetEventPublisher installs p; nil restores the no-op publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		m.publisher = noopPublisher{}
		return
	}
	m.publisher = p
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	p.Publish(e)
}

// Runtime returns the runtime probes execute on.
func (m *Manager) Runtime() devrt.Runtime { return m.rt }

// Ready reports whether the manager accepts probes. It turns true once
// Preflight has succeeded.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Preflight runs a small roundtrip probe and moves the manager to ready, or
// to error when the device does not answer correctly.
func (m *Manager) Preflight(ctx context.Context) error {
	if m.rt == nil {
		err := fmt.Errorf("manager: no device runtime configured")
		m.setState(StateError, err.Error())
		return err
	}
	m.mu.RLock()
	closing := m.state == StateDraining
	m.mu.RUnlock()
	if closing {
		return tooBusyError{reason: "draining"}
	}

	release, err := m.beginProbe(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	res, err := runRoundTrip[float32](m.rt, m.preflightElems)
	if err == nil && !res.Verified {
		err = fmt.Errorf("manager: preflight roundtrip found %d mismatched elements", res.Mismatches)
	}
	if err != nil {
		m.setState(StateError, err.Error())
		m.publish(Event{Name: "preflight_failed", Fields: map[string]any{"error": err.Error()}})
		return err
	}
	m.setState(StateReady, "")
	m.publish(Event{Name: "preflight_ok", Fields: map[string]any{"elems": m.preflightElems, "runtime": m.info.Name}})
	return nil
}

func (m *Manager) setState(s State, lastErr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateDraining {
		return
	}
	m.state = s
	if lastErr != "" {
		m.lastErr = lastErr
	}
}

// Close stops admitting probes and waits for the running one to finish, up to
// the configured max wait. It does not close the runtime.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.state = StateDraining
	m.mu.Unlock()
	m.publish(Event{Name: "drain_start"})

	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case m.genCh <- struct{}{}:
		// No probe holds the device any more; keep the slot so nothing else can.
	case <-timer.C:
		m.publish(Event{Name: "drain_timeout"})
		return tooBusyError{reason: "probe still running after drain timeout"}
	}
	m.publish(Event{Name: "drain_done"})
	return nil
}

func (m *Manager) nextOpID() string {
	return fmt.Sprintf("probe-%d", m.opSeq.Add(1))
}
