package devrt

import "sync"

// Event describes one runtime call.
// Minimal and stable: operation name, pointer, byte count and outcome.
type Event struct {
	Name   string
	Ptr    DevPtr
	Bytes  uint64
	Status Status
}

// EventPublisher receives runtime events. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher stores events in-memory for tests and diagnostics.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Count returns how many events named name were published with a
// successful status.
func (p *MemoryPublisher) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Name == name && e.Status.OK() {
			n++
		}
	}
	return n
}

// Reset drops all recorded events.
func (p *MemoryPublisher) Reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

// Event names published by runtimes in this package.
const (
	EventMalloc = "malloc"
	EventFree   = "free"
	EventHtoD   = "memcpy_htod"
	EventDtoH   = "memcpy_dtoh"
)
