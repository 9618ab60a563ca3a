/*
Package monitoring provides Prometheus metrics for the interop host.

# Metrics

  - webinterop_calls_total{namespace,method,status}: host to browser invocations
  - webinterop_call_duration_seconds{namespace,method}: invocation round trip
  - webinterop_callbacks_total{method,status}: browser to host callbacks
  - webinterop_sessions_active / webinterop_sessions_total: connected contexts
  - webinterop_frames_total{direction,kind}: frames on the wire
  - webinterop_http_requests_total, webinterop_http_request_duration_seconds

Collectors live on a private registry per Metrics value.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "Geolocation", "getLocation")
	// ... invoke ...
	timer.Stop(monitoring.StatusOK)
*/
package monitoring
