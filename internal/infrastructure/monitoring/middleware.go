package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Call statuses used as metric labels.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusTimeout = "timeout"
	StatusRemote  = "remote_error"
)

// Middleware creates a Gin middleware for metrics collection.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures one interop call.
type Timer struct {
	start     time.Time
	metrics   *Metrics
	namespace string
	method    string
}

// NewTimer starts timing a call. A nil metrics makes the timer a no-op.
func NewTimer(metrics *Metrics, namespace, method string) *Timer {
	return &Timer{
		start:     time.Now(),
		metrics:   metrics,
		namespace: namespace,
		method:    method,
	}
}

// Stop records the call with the given status.
func (t *Timer) Stop(status string) time.Duration {
	d := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.RecordInteropCall(t.namespace, t.method, status, d)
	}
	return d
}
