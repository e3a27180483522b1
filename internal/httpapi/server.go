package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devmem/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Ready() bool
	Probe(ctx context.Context, req types.ProbeRequest) (types.ProbeResponse, error)
}

// NewMux builds the daemon's router.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/status", statusHandler(svc))
	r.Post("/probe", probeHandler(svc))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", readyHandler(svc))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

// statusHandler godoc
//
// @Summary     Device and probe status
// @Tags        status
// @Produce     json
// @Success     200 {object} types.StatusResponse
// @Router      /status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}

// readyHandler godoc
//
// @Summary     Readiness probe
// @Tags        status
// @Produce     plain
// @Success     200 {string} string "ready"
// @Failure     503 {string} string "loading"
// @Router      /readyz [get]
func readyHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	}
}

// probeHandler godoc
//
// @Summary     Run a device probe
// @Description Runs a roundtrip or grow workload on the device. Probes are
// @Description serialized; a saturated queue answers 429.
// @Tags        probe
// @Accept      json
// @Produce     json
// @Param       request body     types.ProbeRequest true "Probe request"
// @Success     200     {object} types.ProbeResponse
// @Failure     400     {object} types.ErrorResponse
// @Failure     415     {object} types.ErrorResponse
// @Failure     429     {object} types.ErrorResponse
// @Failure     500     {object} types.ErrorResponse
// @Failure     507     {object} types.ErrorResponse
// @Router      /probe [post]
func probeHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ProbeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		logProbeStart(r, lvl, req.Kind)

		// Join server base context with request context so shutdown cancels waiting probes too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if probeTimeout > 0 {
			var cancelTimeout context.CancelFunc
			ctx, cancelTimeout = context.WithTimeout(ctx, probeTimeout)
			defer cancelTimeout()
		}

		resp, err := svc.Probe(ctx, req)
		if err != nil {
			// Client went away; nobody is listening.
			if r.Context().Err() != nil {
				return
			}
			status := statusForError(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure("probe_queue")
			}
			writeJSONError(w, status, err.Error())
			logProbeEnd(r, lvl, status, start, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		logProbeEnd(r, lvl, http.StatusOK, start, nil)
		logProbeDebug(r, lvl, resp)
	}
}
