package devrt

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func TestInstrumented_ForwardsAndPublishes(t *testing.T) {
	host := NewHostRuntime(HostConfig{BudgetMB: 1})
	pub := NewMemoryPublisher()
	var logBuf bytes.Buffer
	rt := Instrument(host, WithPublisher(pub), WithLogger(zerolog.New(&logBuf).Level(zerolog.DebugLevel)))

	p, st := rt.Malloc(256)
	if !st.OK() {
		t.Fatalf("malloc: %v", st)
	}
	if st := rt.MemcpyHtoD(p, make([]byte, 256)); !st.OK() {
		t.Fatalf("htod: %v", st)
	}
	if st := rt.Free(p); !st.OK() {
		t.Fatalf("free: %v", st)
	}
	if _, st := rt.Malloc(2 * mb); st != StatusMemoryAllocation {
		t.Fatalf("expected out of memory through decorator, got %v", st)
	}

	if got := pub.Count(EventMalloc); got != 1 {
		t.Fatalf("expected 1 successful malloc event, got %d", got)
	}
	if len(pub.Events()) != 4 {
		t.Fatalf("expected 4 events, got %+v", pub.Events())
	}
	out := logBuf.String()
	if !strings.Contains(out, `"component":"devrt"`) || !strings.Contains(out, "runtime call failed") {
		t.Fatalf("missing structured log lines: %s", out)
	}
	if rt.Unwrap() != Runtime(host) {
		t.Fatalf("Unwrap returned a different runtime")
	}
}

func TestInstrumented_EmitsMetrics(t *testing.T) {
	rt := Instrument(NewHostRuntime(HostConfig{}))
	p, _ := rt.Malloc(64)
	_ = rt.Free(p)

	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"devmem_runtime_ops_total", "devmem_runtime_bytes_total", "devmem_runtime_bytes_in_use"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}
