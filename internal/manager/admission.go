package manager

import (
	"context"
	"time"
)

// beginProbe reserves a queue slot and then the single in-flight slot.
// Returns a release func to be deferred. Preflight passes allowLoading so it
// can run before the manager is ready.
func (m *Manager) beginProbe(ctx context.Context, allowLoading bool) (func(), error) {
	m.mu.RLock()
	state := m.state
	m.mu.RUnlock()
	if state == StateDraining {
		return func() {}, tooBusyError{reason: "draining"}
	}
	if state != StateReady && !allowLoading {
		return func() {}, tooBusyError{reason: "device not ready (" + string(state) + ")"}
	}

	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case m.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{reason: "queue full"}
	}

	// Wait to acquire the single in-flight slot
	acquired := false
	defer func() {
		if !acquired {
			<-m.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(m.maxWait)
	defer timer2.Stop()
	select {
	case m.genCh <- struct{}{}:
		acquired = true
		return func() { <-m.genCh; <-m.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, tooBusyError{reason: "device busy"}
	}
}
