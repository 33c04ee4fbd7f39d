package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracker_FreshSession(t *testing.T) {
	tr, err := NewTracker(t.TempDir(), nil)
	require.NoError(t, err)

	stats := tr.Snapshot()
	assert.NotEmpty(t, stats.SessionID)
	assert.False(t, stats.StartedAt.IsZero())
	assert.Zero(t, stats.Counters.ChecksCompleted)
}

func TestNewTracker_DistinctSessionIDs(t *testing.T) {
	dir := t.TempDir()
	a, err := NewTracker(dir, nil)
	require.NoError(t, err)
	b, err := NewTracker(dir, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestRecordCheck_CountersAndVerdicts(t *testing.T) {
	tr, err := NewTracker(t.TempDir(), nil)
	require.NoError(t, err)

	tr.RecordCheck("True", 0.9, false, false)
	tr.RecordCheck("False", 0.8, true, false)
	tr.RecordCheck("Unverified", 0.4, false, true)
	tr.RecordFailure()

	stats := tr.Snapshot()
	assert.Equal(t, int64(3), stats.Counters.ChecksCompleted)
	assert.Equal(t, int64(2), stats.Counters.TextChecks)
	assert.Equal(t, int64(1), stats.Counters.ImageChecks)
	assert.Equal(t, int64(1), stats.Counters.CacheHits)
	assert.Equal(t, int64(1), stats.Counters.Failures)
	assert.Equal(t, int64(1), stats.ByVerdict["True"])
	assert.Equal(t, int64(1), stats.ByVerdict["False"])
	assert.Equal(t, int64(1), stats.ByVerdict["Unverified"])
	assert.InDelta(t, 0.7, stats.Counters.AverageConfidence(), 0.001)
}

func TestCounters_NeverDecrease(t *testing.T) {
	tr, err := NewTracker(t.TempDir(), nil)
	require.NoError(t, err)

	verdicts := []string{"True", "Mostly True", "False", "Mostly False", "Unverified"}
	var prev Counters
	for i := 0; i < 50; i++ {
		tr.RecordCheck(verdicts[i%len(verdicts)], float64(i%10)/10, i%3 == 0, i%7 == 0)
		cur := tr.Snapshot().Counters

		assert.GreaterOrEqual(t, cur.ChecksCompleted, prev.ChecksCompleted)
		assert.GreaterOrEqual(t, cur.TextChecks, prev.TextChecks)
		assert.GreaterOrEqual(t, cur.ImageChecks, prev.ImageChecks)
		assert.GreaterOrEqual(t, cur.CacheHits, prev.CacheHits)
		prev = cur
	}
	assert.Equal(t, int64(50), prev.ChecksCompleted)
}

func TestSnapshot_IsACopy(t *testing.T) {
	tr, err := NewTracker(t.TempDir(), nil)
	require.NoError(t, err)

	tr.RecordCheck("True", 1.0, false, false)
	snap := tr.Snapshot()
	snap.ByVerdict["True"] = 99

	assert.Equal(t, int64(1), tr.Snapshot().ByVerdict["True"])
}

func TestSave_WritesJSON(t *testing.T) {
	dir := t.TempDir()
	tr, err := NewTracker(dir, nil)
	require.NoError(t, err)

	tr.RecordCheck("True", 0.95, false, false)
	require.NoError(t, tr.Save())

	data, err := os.ReadFile(filepath.Join(dir, "session.json"))
	require.NoError(t, err)

	var stats Stats
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, tr.SessionID(), stats.SessionID)
	assert.Equal(t, int64(1), stats.Counters.ChecksCompleted)
}

func TestScheduleSave_ReschedulesAfterFlush(t *testing.T) {
	dir := t.TempDir()
	tr, err := NewTracker(dir, nil)
	require.NoError(t, err)
	tr.saveDelay = 10 * time.Millisecond

	tr.RecordCheck("True", 0.9, false, false)
	waitForSavedChecks(t, dir, 1)

	// A check recorded after the debounce flushed must schedule a new
	// save, not get stranded behind a stale dirty flag.
	tr.RecordCheck("False", 0.1, false, false)
	waitForSavedChecks(t, dir, 2)
}

func waitForSavedChecks(t *testing.T, dir string, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(filepath.Join(dir, "session.json"))
		if err == nil {
			var stats Stats
			if json.Unmarshal(data, &stats) == nil && stats.Counters.ChecksCompleted == want {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session.json never reached %d completed checks", want)
}

func TestRecordCheck_Concurrent(t *testing.T) {
	tr, err := NewTracker(t.TempDir(), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				tr.RecordCheck("True", 0.5, false, false)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(200), tr.Snapshot().Counters.ChecksCompleted)
}

func TestAverageConfidence_EmptyIsZero(t *testing.T) {
	assert.Zero(t, Counters{}.AverageConfidence())
}
