package types

// Probe kinds accepted by POST /probe.
const (
	// ProbeRoundTrip uploads a patterned host buffer, downloads it again and
	// compares both copies.
	ProbeRoundTrip = "roundtrip"
	// ProbeGrow drives a reusable device handle through a sequence of sizes and
	// reports how often it had to reallocate.
	ProbeGrow = "grow"
)

// Element types a probe can operate on.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeUint8   = "uint8"
)

// DTypes lists the supported element types in display order.
var DTypes = []string{DTypeFloat32, DTypeFloat64, DTypeInt32, DTypeUint8}

// DTypeSize returns the element size in bytes, or 0 for an unknown dtype.
func DTypeSize(dtype string) int {
	switch dtype {
	case DTypeFloat32, DTypeInt32:
		return 4
	case DTypeFloat64:
		return 8
	case DTypeUint8:
		return 1
	}
	return 0
}
