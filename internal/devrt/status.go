package devrt

import "strconv"

// Status is the result code of a single runtime call. Values follow the CUDA
// runtime's cudaError_t numbering so a real binding can pass codes through.
type Status int

const (
	StatusSuccess              Status = 0
	StatusInvalidValue         Status = 1
	StatusMemoryAllocation     Status = 2
	StatusInitializationError  Status = 3
	StatusInvalidDevicePointer Status = 17
	StatusNoDevice             Status = 100
	StatusLaunchFailure        Status = 719
	StatusUnknown              Status = 999
)

var statusNames = map[Status]string{
	StatusSuccess:              "success",
	StatusInvalidValue:         "invalid value",
	StatusMemoryAllocation:     "out of memory",
	StatusInitializationError:  "initialization error",
	StatusInvalidDevicePointer: "invalid device pointer",
	StatusNoDevice:             "no device",
	StatusLaunchFailure:        "launch failure",
	StatusUnknown:              "unknown error",
}

// OK reports whether s is StatusSuccess.
func (s Status) OK() bool { return s == StatusSuccess }

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "status " + strconv.Itoa(int(s))
}

// Error lets a Status be returned where an error is expected.
func (s Status) Error() string {
	return "devrt: " + s.String() + " (" + strconv.Itoa(int(s)) + ")"
}

// Label is a low-cardinality metric label for s.
func (s Status) Label() string {
	if _, ok := statusNames[s]; ok {
		return strconv.Itoa(int(s))
	}
	return "other"
}
