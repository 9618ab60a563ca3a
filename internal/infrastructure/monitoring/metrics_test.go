package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordInteropCall(t *testing.T) {
	m := NewMetrics()

	NewTimer(m, "Geolocation", "getLocation").Stop(StatusOK)
	NewTimer(m, "Geolocation", "getLocation").Stop(StatusTimeout)
	NewTimer(nil, "Observer", "addResizers").Stop(StatusOK)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InteropCalls.WithLabelValues("Geolocation", "getLocation", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InteropCalls.WithLabelValues("Geolocation", "getLocation", StatusTimeout)))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalCalls)
	assert.Equal(t, int64(1), snap.FailedCalls)
}

func TestSessionGauge(t *testing.T) {
	m := NewMetrics()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsTotal))
	assert.Equal(t, int64(1), m.Snapshot().ActiveSessions)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	m.RecordCallback("NotifyObserveResized", StatusOK)
	m.RecordFrame("in", "callback")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, `webinterop_http_requests_total{method="GET",path="/health",status="200"} 1`), body)
	assert.Contains(t, body, "webinterop_callbacks_total")
	assert.Contains(t, body, "webinterop_frames_total")
}
