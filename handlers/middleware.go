package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"registration-system/monitoring"
)

// timeoutWriter serializes access to the response writer between the
// request's main path and a handler that outlives its budget. Once the
// budget expires every late handler write is discarded, so the 408 sent
// on the main path is the only thing that reaches the connection.
type timeoutWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	wrote   bool
	expired bool

	// discard absorbs header mutations from a late handler.
	discard http.Header
}

func (tw *timeoutWriter) Header() http.Header {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.expired {
		if tw.discard == nil {
			tw.discard = make(http.Header)
		}
		return tw.discard
	}
	return tw.w.Header()
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.expired || tw.wrote {
		return
	}
	tw.wrote = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.expired {
		return len(b), nil
	}
	tw.wrote = true
	return tw.w.Write(b)
}

func (tw *timeoutWriter) Flush() {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.expired {
		return
	}
	if f, ok := tw.w.(http.Flusher); ok {
		f.Flush()
	}
}

// timeout cuts the handler off: if nothing went out yet fn writes the
// timeout response, otherwise the committed response stands. Either way
// all subsequent handler writes are dropped.
func (tw *timeoutWriter) timeout(fn func(http.ResponseWriter)) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.expired = true
	if tw.wrote {
		return
	}
	tw.wrote = true
	fn(tw.w)
}

// RequestTimeout answers 408 when a handler exceeds the budget and no
// response went out yet. The handler itself keeps running against a
// writer that now discards its output: an external side effect already
// in flight (a queued message, a stored file) may still land after the
// timeout response, so delivery is at-least-once.
func RequestTimeout(budget time.Duration) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tw := &timeoutWriter{w: e.Response}
		e.Response = tw

		done := make(chan error, 1)
		go func() {
			done <- e.Next()
		}()

		timer := time.NewTimer(budget)
		defer timer.Stop()

		select {
		case err := <-done:
			return err
		case <-timer.C:
			tw.timeout(func(w http.ResponseWriter) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestTimeout)
				json.NewEncoder(w).Encode(apis.NewApiError(http.StatusRequestTimeout,
					"Request timeout, please try again later", nil))
			})
			return nil
		}
	}
}

// statusRecorder remembers the first status code written so request
// metrics can carry the real outcome.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// ObserveRequests feeds the request-duration histogram, labeled with the
// status that actually went out.
func ObserveRequests() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: e.Response}
		e.Response = rec

		err := e.Next()

		status := rec.status
		if err != nil {
			status = apis.ToApiError(err).Status
		}
		if status == 0 {
			status = http.StatusOK
		}
		monitoring.ObserveRequest(e.Request.Method, strconv.Itoa(status), time.Since(start))

		return err
	}
}
