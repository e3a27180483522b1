package manager

// State represents the lifecycle state of the manager.
type State string

const (
	// StateLoading is the state before Preflight has run.
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
	// StateDraining rejects new probes while Close waits for the running one.
	StateDraining State = "draining"
)
