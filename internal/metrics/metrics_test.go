package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/simulator"
)

// scrape returns the text exposition of m.
func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Estimate("annual", 20*time.Millisecond)
	m.Estimate("annual", 10*time.Millisecond)
	m.Diagnosis(model.GapLarge)
	m.HistoryWrite(nil)
	m.HistoryWrite(errors.New("disk full"))
	m.WSDropped("hour:update")
	m.WSDropped("hour:update")

	out := scrape(t, m)
	assert.Contains(t, out, `joule_estimates_total{kind="annual"} 2`)
	assert.Contains(t, out, `joule_estimate_duration_seconds_count{kind="annual"} 2`)
	assert.Contains(t, out, `joule_diagnoses_total{class="large"} 1`)
	assert.Contains(t, out, `joule_history_writes_total{result="ok"} 1`)
	assert.Contains(t, out, `joule_history_writes_total{result="error"} 1`)
	assert.Contains(t, out, `joule_ws_dropped_messages_total{type="hour:update"} 2`)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Estimate("weekly", time.Second)
		m.Diagnosis(model.GapMinor)
		m.HistoryWrite(nil)
		m.WSDropped("sim:state")
	})
}

func TestMetrics_WrapHandlerAndExpose(t *testing.T) {
	m := New()
	h := m.WrapHandler("/api/heatloss", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/heatloss", nil))
	assert.Contains(t, scrape(t, m), `joule_http_requests_total{route="/api/heatloss",status="418"} 1`)
}

type nopCallback struct{ hours int }

func (n *nopCallback) OnState(simulator.State)     {}
func (n *nopCallback) OnHour(simulator.HourUpdate) { n.hours++ }
func (n *nopCallback) OnSummary(simulator.Summary) {}

func TestRecorder_CountsHoursAndForwards(t *testing.T) {
	m := New()
	next := &nopCallback{}
	r := m.WrapCallback(next)

	r.OnHour(simulator.HourUpdate{Result: model.HourlyPerformanceResult{Mode: model.ModeHeat}})
	r.OnHour(simulator.HourUpdate{Result: model.HourlyPerformanceResult{Mode: model.ModeHeat}})
	r.OnHour(simulator.HourUpdate{Result: model.HourlyPerformanceResult{Mode: model.ModeIdle}})

	assert.Equal(t, 3, next.hours)
	assert.Contains(t, scrape(t, m), `joule_simulated_hours_total{mode="heat"} 2`)
}
