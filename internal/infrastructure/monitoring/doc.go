/*
Package monitoring provides Prometheus metrics for the backend.

# Overview

Each Metrics value owns a private registry, so servers built in tests do not
collide on metric names. The registry carries HTTP, pipeline, workspace and
WebSocket metrics plus the Go runtime and process collectors.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "transform")
	// ... run the stage ...
	timer.Stop()

	metrics.RecordRun("useState", "rendered", "", elapsed)
*/
package monitoring
