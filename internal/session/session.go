// Package session tracks per-session fact-check statistics. Counters
// only ever increase for the lifetime of a session, so a UI polling
// them never sees a count go backwards.
package session

import "time"

// Stats is the root structure stored in persistence.
type Stats struct {
	Version   string           `json:"version"`
	SessionID string           `json:"session_id"`
	StartedAt time.Time        `json:"started_at"`
	Counters  Counters         `json:"counters"`
	ByVerdict map[string]int64 `json:"by_verdict"`
}

// Counters holds the monotonic per-session tallies.
type Counters struct {
	ChecksCompleted int64   `json:"checks_completed"`
	TextChecks      int64   `json:"text_checks"`
	ImageChecks     int64   `json:"image_checks"`
	CacheHits       int64   `json:"cache_hits"`
	Failures        int64   `json:"failures"`
	ConfidenceSum   float64 `json:"confidence_sum"`
}

// AverageConfidence returns the running mean confidence across
// completed checks, or 0 when none have completed.
func (c Counters) AverageConfidence() float64 {
	if c.ChecksCompleted == 0 {
		return 0
	}
	return c.ConfidenceSum / float64(c.ChecksCompleted)
}
