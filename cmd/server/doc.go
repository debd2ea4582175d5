// Package main is the entry point for the Hookify backend server.
//
// The server runs lesson scripts through the sandbox pipeline and serves
// the editor frontend.
//
// Architecture:
//
//	Editor (browser) → REST + /stream → workspace → preview controller → sandbox pipeline
//
// The server provides:
//   - REST API for topics, files and the active topic
//   - Preview snapshots and the preview document
//   - WebSocket streaming of every run
//   - Prometheus metrics on /metrics
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - -port flag overrides PORT
//
// Usage:
//
//	./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	LOG_DEV=true LOG_LEVEL=debug ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
