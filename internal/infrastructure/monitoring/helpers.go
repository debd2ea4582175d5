package monitoring

import "time"

// Snapshot returns the current totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

// Uptime returns how long the collector has existed
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
