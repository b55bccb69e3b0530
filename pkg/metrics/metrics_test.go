package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTool(t *testing.T) {
	m := New("test")

	m.ObserveTool("book_appointment", "ok", 10*time.Millisecond)
	m.ObserveTool("book_appointment", "ok", 10*time.Millisecond)
	m.ObserveTool("book_appointment", "slot_conflict", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("book_appointment", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("book_appointment", "slot_conflict")))
}

func TestSessionGauge(t *testing.T) {
	m := New("test")

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTool("identify_user", "ok", time.Millisecond)
		m.ObserveSummary("shutdown", "ok", time.Millisecond)
		m.ObserveKafka("agent_signals", "ok", time.Millisecond)
		m.SessionOpened()
		m.SessionClosed()
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("test")
	m.ObserveSummary("end_sentinel", "ok", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "voicebooking_summaries_total"))
}
