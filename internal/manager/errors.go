package manager

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ reason string }

func (e tooBusyError) Error() string { return "too busy: " + e.reason }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// invalidProbeError rejects a malformed probe request before admission.
type invalidProbeError struct{ msg string }

func (e invalidProbeError) Error() string { return "invalid probe: " + e.msg }

// ErrInvalidProbe constructs an invalidProbeError.
func ErrInvalidProbe(msg string) error { return invalidProbeError{msg: msg} }

// IsInvalidProbe reports whether err indicates a bad request (return 400).
func IsInvalidProbe(err error) bool {
	_, ok := err.(invalidProbeError)
	return ok
}
