package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tracker manages session statistics recording and persistence.
type Tracker struct {
	mu        sync.Mutex
	stats     Stats
	filePath  string
	dirty     bool
	saveDelay time.Duration
	logger    *zap.Logger
}

// NewTracker creates a session tracker persisting under dataDir. A
// fresh session ID is minted on every construction; persisted counters
// from a previous run of the same path are discarded, since statistics
// are scoped to a single session.
func NewTracker(dataDir string, logger *zap.Logger) (*Tracker, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Tracker{
		filePath:  filepath.Join(dataDir, "session.json"),
		saveDelay: 2 * time.Second,
		logger:    logger.Named("session"),
		stats: Stats{
			Version:   "1.0",
			SessionID: uuid.NewString(),
			StartedAt: time.Now().UTC(),
			ByVerdict: make(map[string]int64),
		},
	}
	return t, nil
}

// SessionID returns the identifier for the current session.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.SessionID
}

// RecordCheck records one completed fact-check and its verdict.
func (t *Tracker) RecordCheck(verdict string, confidence float64, fromCache, image bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Counters.ChecksCompleted++
	if image {
		t.stats.Counters.ImageChecks++
	} else {
		t.stats.Counters.TextChecks++
	}
	if fromCache {
		t.stats.Counters.CacheHits++
	}
	t.stats.Counters.ConfidenceSum += confidence
	t.stats.ByVerdict[verdict]++

	t.scheduleSaveLocked()
}

// RecordFailure records a check that errored before producing a verdict.
func (t *Tracker) RecordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Counters.Failures++
	t.scheduleSaveLocked()
}

// Snapshot returns a copy of the current statistics.
func (t *Tracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.stats
	out.ByVerdict = make(map[string]int64, len(t.stats.ByVerdict))
	for verdict, n := range t.stats.ByVerdict {
		out.ByVerdict[verdict] = n
	}
	return out
}

// Save writes the statistics to disk.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	data, err := json.MarshalIndent(t.stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.filePath, data, 0644)
}

// scheduleSaveLocked debounces persistence so bursts of checks cause a
// single write.
func (t *Tracker) scheduleSaveLocked() {
	if t.dirty {
		return
	}
	t.dirty = true
	time.AfterFunc(t.saveDelay, func() {
		t.mu.Lock()
		// Clear the flag before writing so a check recorded while the
		// save runs schedules the next one.
		t.dirty = false
		err := t.saveLocked()
		t.mu.Unlock()
		if err != nil {
			t.logger.Warn("failed to save session stats", zap.Error(err))
		}
	})
}
