package devrt

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Instrumented decorates a Runtime with structured logging, Prometheus
// metrics and event publishing. StatsOf sees through it to the wrapped
// runtime's accounting.
type Instrumented struct {
	rt        Runtime
	log       zerolog.Logger
	publisher EventPublisher

	mu    sync.Mutex
	sizes map[DevPtr]uint64
}

// InstrumentOption configures an Instrumented runtime.
type InstrumentOption func(*Instrumented)

// WithLogger sets the logger used for per-call records.
func WithLogger(l zerolog.Logger) InstrumentOption {
	return func(i *Instrumented) { i.log = l }
}

// WithPublisher sets the event publisher.
func WithPublisher(p EventPublisher) InstrumentOption {
	return func(i *Instrumented) {
		if p != nil {
			i.publisher = p
		}
	}
}

// Instrument wraps rt.
func Instrument(rt Runtime, opts ...InstrumentOption) *Instrumented {
	i := &Instrumented{
		rt:        rt,
		log:       zerolog.Nop(),
		publisher: noopPublisher{},
		sizes:     make(map[DevPtr]uint64),
	}
	for _, o := range opts {
		o(i)
	}
	i.log = i.log.With().Str("component", "devrt").Str("runtime", rt.Info().Name).Logger()
	return i
}

// Unwrap returns the decorated runtime.
func (i *Instrumented) Unwrap() Runtime { return i.rt }

func (i *Instrumented) Info() Info { return i.rt.Info() }

func (i *Instrumented) Malloc(size uint64) (DevPtr, Status) {
	start := time.Now()
	p, st := i.rt.Malloc(size)
	if st.OK() && !p.IsNil() {
		i.mu.Lock()
		i.sizes[p] = size
		i.mu.Unlock()
		runtimeBytesInUse.Add(float64(size))
	}
	i.observe(EventMalloc, p, size, st, start)
	return p, st
}

func (i *Instrumented) Free(p DevPtr) Status {
	start := time.Now()
	st := i.rt.Free(p)
	var size uint64
	if st.OK() && !p.IsNil() {
		i.mu.Lock()
		size = i.sizes[p]
		delete(i.sizes, p)
		i.mu.Unlock()
		runtimeBytesInUse.Sub(float64(size))
	}
	i.observe(EventFree, p, size, st, start)
	return st
}

func (i *Instrumented) MemcpyHtoD(dst DevPtr, src []byte) Status {
	start := time.Now()
	st := i.rt.MemcpyHtoD(dst, src)
	i.observe(EventHtoD, dst, uint64(len(src)), st, start)
	return st
}

func (i *Instrumented) MemcpyDtoH(dst []byte, src DevPtr) Status {
	start := time.Now()
	st := i.rt.MemcpyDtoH(dst, src)
	i.observe(EventDtoH, src, uint64(len(dst)), st, start)
	return st
}

func (i *Instrumented) observe(op string, p DevPtr, n uint64, st Status, start time.Time) {
	dur := time.Since(start)
	runtimeOpsTotal.WithLabelValues(op, st.Label()).Inc()
	runtimeOpDuration.WithLabelValues(op).Observe(dur.Seconds())
	if st.OK() {
		runtimeBytesTotal.WithLabelValues(op).Add(float64(n))
		i.log.Debug().Str("op", op).Uint64("ptr", uint64(p)).Uint64("bytes", n).Dur("dur", dur).Msg("runtime call")
	} else {
		i.log.Error().Str("op", op).Uint64("ptr", uint64(p)).Uint64("bytes", n).Int("status", int(st)).Str("reason", st.String()).Msg("runtime call failed")
	}
	i.publisher.Publish(Event{Name: op, Ptr: p, Bytes: n, Status: st})
}
