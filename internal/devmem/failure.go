package devmem

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// FailureHandler receives every error that reaches a fail-fast call site
// (the Must* primitives and DevicePtr.Allocate). The default handler logs
// the failure and terminates the process. If a handler returns, the failed
// operation is abandoned and the caller continues.
type FailureHandler func(err error)

var (
	failureMu      sync.RWMutex
	failureHandler FailureHandler = exitOnFailure
)

// SetFailureHandler installs h and returns the previous handler. Passing nil
// restores the default log-and-exit handler.
//
// This should be called during startup, or by tests that need to observe
// failures without exiting:
//
//	prev := devmem.SetFailureHandler(func(err error) { failures = append(failures, err) })
//	defer devmem.SetFailureHandler(prev)
func SetFailureHandler(h FailureHandler) FailureHandler {
	failureMu.Lock()
	defer failureMu.Unlock()
	prev := failureHandler
	if h == nil {
		h = exitOnFailure
	}
	failureHandler = h
	return prev
}

func check(err error) {
	if err == nil {
		return
	}
	failureMu.RLock()
	h := failureHandler
	failureMu.RUnlock()
	h(err)
}

// exitOnFailure logs which call failed and with what status, then exits.
func exitOnFailure(err error) {
	ev := log.Fatal().Err(err)
	var re *RuntimeError
	if errors.As(err, &re) {
		ev = ev.Str("op", re.Op).Int("status", int(re.Status)).Str("reason", re.Status.String())
		if re.Bytes > 0 {
			ev = ev.Uint64("bytes", re.Bytes)
		}
	}
	ev.Msg("device runtime failure")
}
