//go:build !unix

package devrt

import (
	"fmt"
	"math"
)

func allocBacking(size uint64) ([]byte, error) {
	if size > math.MaxInt {
		return nil, fmt.Errorf("devrt: %d bytes exceeds the host address space", size)
	}
	return make([]byte, size), nil
}

var freeBacking = func([]byte) error { return nil }
