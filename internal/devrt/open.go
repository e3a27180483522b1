package devrt

import (
	"fmt"
	"strings"
)

// Runtime names accepted by Open.
const (
	NameHost = "host"
	NameCUDA = "cuda"
)

// Open constructs the runtime registered under name. An empty name selects
// the host runtime. cfg only applies to the host runtime.
func Open(name string, cfg HostConfig) (Runtime, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameHost:
		return NewHostRuntime(cfg), nil
	case NameCUDA:
		rt, err := NewCUDARuntime()
		if err != nil {
			return nil, err
		}
		return rt, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRuntime, name)
	}
}
