// Package health implements Kubernetes-style liveness and readiness
// endpoints. Registered checks run periodically in the background; a check
// must fail several consecutive times before its probe goes unhealthy, so
// a single slow tick does not flap the service out of rotation.
package health

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// failureThreshold is the number of consecutive failures before a check is
// marked unhealthy. A single success restores it.
const failureThreshold = 3

// CheckFunc probes one component and returns nil when it is healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name string
	fn   CheckFunc

	healthy atomic.Bool

	// fails is only touched by the single run loop goroutine.
	fails int
}

func (c *check) run(ctx context.Context) {
	if err := c.fn(ctx); err != nil {
		c.fails++
		if c.fails >= failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	c.healthy.Store(true)
}

// Health manages liveness and readiness checks for the service.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New creates a Health service. It starts not ready; call SetReady(true)
// once initialization is done.
func New() *Health {
	return &Health{}
}

// AddLiveness registers a liveness check (is the process functioning).
func (h *Health) AddLiveness(name string, fn CheckFunc) {
	h.add(&h.liveness, name, fn)
}

// AddReadiness registers a readiness check (can the service take traffic).
func (h *Health) AddReadiness(name string, fn CheckFunc) {
	h.add(&h.readiness, name, fn)
}

func (h *Health) add(dst *[]*check, name string, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &check{name: name, fn: fn}
	c.healthy.Store(true)
	*dst = append(*dst, c)
}

// SetReady flips the overall readiness gate. Used on startup and to drain
// before shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Start launches the background loop running every registered check at the
// given interval. Register all checks before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := make([]*check, 0, len(h.liveness)+len(h.readiness))
	checks = append(checks, h.liveness...)
	checks = append(checks, h.readiness...)
	h.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, c := range checks {
					c.run(ctx)
				}
			}
		}
	}()
}

// Stop terminates the background loop.
func (h *Health) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	h.cancel = nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// LiveEndpoint serves the liveness probe.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	checks := append([]*check(nil), h.liveness...)
	h.mu.RUnlock()

	writeProbe(w, failedNames(checks))
}

// ReadyEndpoint serves the readiness probe. It fails while the readiness
// gate is down regardless of individual checks.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Load() {
		writeProbe(w, []string{"ready-gate"})
		return
	}

	h.mu.RLock()
	checks := append([]*check(nil), h.readiness...)
	h.mu.RUnlock()

	writeProbe(w, failedNames(checks))
}

func failedNames(checks []*check) []string {
	var failed []string
	for _, c := range checks {
		if !c.healthy.Load() {
			failed = append(failed, c.name)
		}
	}
	return failed
}

func writeProbe(w http.ResponseWriter, failed []string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		if len(failed) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		e.Field("status", func(e *jx.Encoder) { e.Str("unavailable") })
		e.Field("failed", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, name := range failed {
					e.Str(name)
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	if len(failed) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_, _ = w.Write(e.Bytes())
}

// GoroutineCountCheck fails when the process exceeds max goroutines, a
// cheap proxy for leaks and runaway load.
func GoroutineCountCheck(max int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > max {
			return errors.Errorf("too many goroutines: %d > %d", n, max)
		}
		return nil
	}
}
