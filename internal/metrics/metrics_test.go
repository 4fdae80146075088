package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RecordAnomalies(t *testing.T) {
	r := NewRegistry()

	r.RecordAnomalies(true, false, true)
	r.RecordAnomalies(true, true, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Anomalies.WithLabelValues("price")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Anomalies.WithLabelValues("size")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Anomalies.WithLabelValues("volatility")))
}

func TestRegistry_HandlerServesMetrics(t *testing.T) {
	r := NewRegistry()
	r.TradesIngested.Inc()
	r.WindowSize.Set(42)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "tapewatch_trades_ingested_total 1"))
	assert.True(t, strings.Contains(body, "tapewatch_window_size 42"))
}

func TestRegistry_IsolatedRegistries(t *testing.T) {
	// Two registries must not collide (no global default registration).
	a := NewRegistry()
	b := NewRegistry()
	a.TradesIngested.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.TradesIngested))
}
