//go:build unix

package devrt

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// allocBacking maps anonymous memory so simulated device buffers stay out of
// the Go heap, like real device allocations.
func allocBacking(size uint64) ([]byte, error) {
	if size > math.MaxInt {
		return nil, fmt.Errorf("devrt: %d bytes exceeds the host address space", size)
	}
	return unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

// freeBacking is a variable so tests can simulate unmap failures.
var freeBacking = func(b []byte) error {
	return unix.Munmap(b)
}
