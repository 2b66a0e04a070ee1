package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"calculator-api/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusHandlerServesRegistry(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_widgets", Help: "widgets"})
	gauge.Set(3)

	reg, err := NewRegistry(gauge)
	require.NoError(t, err)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), PrometheusHandler(reg))

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "test_widgets 3")
	assert.Contains(t, body, "go_goroutines")
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	opts := prometheus.GaugeOpts{Name: "dup_gauge", Help: "dup"}

	_, err := NewRegistry(prometheus.NewGauge(opts), prometheus.NewGauge(opts))

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "duplicate"), err.Error())
}
