// Package config provides 12-factor configuration management for the Hookify backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, CORS origins)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Sandbox: Script timeout, call stack limit, console capture
//   - Store: Key-value store driver for workspace preferences
//   - Templates: Optional template override file and lesson directory
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - SANDBOX_TIMEOUT, SANDBOX_MAX_CALL_STACK, SANDBOX_CONSOLE
//   - STORE_DRIVER, STORE_PATH, TEMPLATES_PATH, LESSONS_DIR
package config
