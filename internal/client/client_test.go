package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 2 * time.Second
	cfg.MinWait = time.Millisecond
	cfg.MaxWait = 5 * time.Millisecond
	return cfg
}

func newServer(t *testing.T, register func(r *gin.Engine)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL, testConfig())
}

func TestStatus(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"components": []gin.H{{"id": "sess_1", "contextId": "ctx", "codec": "json"}},
				"metrics":    gin.H{"activeSessions": 1, "totalCalls": 7},
			})
		})
	})

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, status.Components, 1)
	assert.Equal(t, "sess_1", status.Components[0].ID)
	require.NotNil(t, status.Metrics)
	assert.Equal(t, int64(7), status.Metrics.TotalCalls)
}

func TestGetLocationSendsOnlySetOptions(t *testing.T) {
	var body map[string]any
	c := newServer(t, func(r *gin.Engine) {
		r.POST("/components/:id/geolocation/location", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&body))
			c.JSON(http.StatusOK, gin.H{"position": gin.H{"coords": gin.H{"latitude": 1.5}}})
		})
	})

	result, err := c.GetLocation(context.Background(), "sess_1", &geolocation.PositionOptions{Timeout: geolocation.Duration(3 * time.Second)})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, 1.5, result.Position.Coords.Latitude)
	assert.Equal(t, map[string]any{"timeout": float64(3000)}, body)
}

func TestAPIError(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.POST("/components/:id/geolocation/watches/:key", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "component not found"})
		})
	})

	_, err := c.Watch(context.Background(), "sess_missing", "device")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "component not found", apiErr.Message)
}

func TestRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	c := newServer(t, func(r *gin.Engine) {
		r.POST("/components/:id/logger/log", func(c *gin.Context) {
			if calls.Add(1) < 3 {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "not connected"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"logged": true})
		})
	})

	logged, err := c.Log(context.Background(), "sess_1", interop.LevelWarning, "disk")
	require.NoError(t, err)
	assert.True(t, logged)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoesNotRetryGatewayErrors(t *testing.T) {
	var calls atomic.Int32
	c := newServer(t, func(r *gin.Engine) {
		r.PUT("/components/:id/observer/log-level", func(c *gin.Context) {
			calls.Add(1)
			c.JSON(http.StatusBadGateway, gin.H{"error": "boom"})
		})
	})

	err := c.SetLogLevel(context.Background(), "sess_1", "observer", interop.LevelTrace)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
