package manager

import (
	"time"

	"devmem/internal/devrt"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultMaxElems      = 64 << 20
	defaultPreflightSize = 1024
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Runtime executes device calls. Required.
	Runtime devrt.Runtime
	// MaxQueueDepth bounds probes waiting for, or holding, the device.
	MaxQueueDepth int
	// MaxWait bounds how long a probe waits at each admission stage.
	MaxWait time.Duration
	// MaxElems caps the element count of any single probe request.
	MaxElems int
	// PreflightElems is the roundtrip size used by Preflight.
	PreflightElems int
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:     StateLoading,
		rt:        cfg.Runtime,
		publisher: noopPublisher{},
	}
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.MaxElems <= 0 {
		m.maxElems = defaultMaxElems
	} else {
		m.maxElems = cfg.MaxElems
	}
	if cfg.PreflightElems <= 0 {
		m.preflightElems = defaultPreflightSize
	} else {
		m.preflightElems = cfg.PreflightElems
	}
	if cfg.Publisher != nil {
		m.publisher = cfg.Publisher
	}
	m.genCh = make(chan struct{}, 1)
	m.queueCh = make(chan struct{}, m.maxQueueDepth)
	if m.rt != nil {
		m.info = m.rt.Info()
	}
	m.startTime = time.Now()
	return m
}
