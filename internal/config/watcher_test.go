package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatchEnvFile_ReloadsOnWrite(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "initial")
	t.Setenv("GOOGLE_API_KEY", "initial")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=initial\n"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 1)
	err := WatchEnvFile(ctx, path, zaptest.NewLogger(t), func(apiKey string) {
		select {
		case changed <- apiKey:
		default:
		}
	})
	require.NoError(t, err)

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=rotated\n"), 0600))

	select {
	case key := <-changed:
		assert.Equal(t, "rotated", key)
		assert.Equal(t, "rotated", os.Getenv("GEMINI_API_KEY"))
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not observe env file change")
	}
}

func TestWatchEnvFile_IgnoresSiblingFiles(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "initial")
	t.Setenv("GOOGLE_API_KEY", "initial")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=initial\n"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 1)
	err := WatchEnvFile(ctx, path, zaptest.NewLogger(t), func(apiKey string) {
		changed <- apiKey
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0600))

	select {
	case key := <-changed:
		t.Fatalf("unexpected reload from sibling file, key=%s", key)
	case <-time.After(500 * time.Millisecond):
	}
}
