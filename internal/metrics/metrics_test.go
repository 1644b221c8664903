package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logx "leadr/pkg/logx"
)

func TestCountersAndGauges(t *testing.T) {
	t.Parallel()

	m := New()
	m.Polls.WithLabelValues("ok").Inc()
	m.Polls.WithLabelValues("ok").Inc()
	m.Polls.WithLabelValues("error").Inc()
	m.StatusChanges.WithLabelValues("active").Inc()
	m.ObserveQueue(5, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Polls.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Polls.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues("active")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.QueueLength))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueuedEvents))
}

func TestObserveQueueNil(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveQueue(1, 1) })
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.EventsDispatched.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ven_events_dispatched_total 3")
}

func TestServer(t *testing.T) {
	t.Parallel()

	m := New()
	srv, err := Listen("127.0.0.1:0", "/metrics", m, logx.Nop(), true)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "ven_queue_length"))

	for _, p := range []string{"/healthz", "/debug/pprof/"} {
		resp, err := http.Get("http://" + srv.Addr() + p)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}
