package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func probe(t *testing.T, endpoint http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	endpoint(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestReadyEndpoint_GateBlocksUntilReady(t *testing.T) {
	h := New()

	rec := probe(t, h.ReadyEndpoint)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","failed":["ready-gate"]}`, rec.Body.String())

	h.SetReady(true)

	rec = probe(t, h.ReadyEndpoint)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	// Draining flips it back.
	h.SetReady(false)
	rec = probe(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheck_FailsAfterThreshold(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadiness("db", func(context.Context) error {
		return errors.New("connection refused")
	})

	ctx := context.Background()
	c := h.readiness[0]

	// Checks start healthy and tolerate a couple of bad ticks.
	for i := 0; i < failureThreshold-1; i++ {
		c.run(ctx)
		rec := probe(t, h.ReadyEndpoint)
		require.Equal(t, http.StatusOK, rec.Code, "after %d failures", i+1)
	}

	c.run(ctx)
	rec := probe(t, h.ReadyEndpoint)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","failed":["db"]}`, rec.Body.String())
}

func TestCheck_SingleSuccessRestores(t *testing.T) {
	h := New()
	h.SetReady(true)

	broken := true
	h.AddReadiness("db", func(context.Context) error {
		if broken {
			return errors.New("connection refused")
		}
		return nil
	})

	ctx := context.Background()
	c := h.readiness[0]
	for i := 0; i < failureThreshold; i++ {
		c.run(ctx)
	}
	require.Equal(t, http.StatusServiceUnavailable, probe(t, h.ReadyEndpoint).Code)

	broken = false
	c.run(ctx)
	assert.Equal(t, http.StatusOK, probe(t, h.ReadyEndpoint).Code)
}

func TestLiveEndpoint_IndependentOfReadyGate(t *testing.T) {
	h := New()
	h.AddLiveness("goroutines", GoroutineCountCheck(100000))

	rec := probe(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	ran := make(chan struct{}, 1)
	h := New()
	h.AddLiveness("tick", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), time.Millisecond)
	defer h.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("background loop never ran the check")
	}
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1000000)(context.Background()))
	require.Error(t, GoroutineCountCheck(1)(context.Background()))
}
