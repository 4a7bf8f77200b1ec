package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	_, err := New(dir, 0, nil, nil)
	assert.Error(t, err, "callback is required")

	_, err = New(filepath.Join(dir, "missing"), 0, func() {}, nil)
	assert.Error(t, err)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = New(file, 0, func() {}, nil)
	assert.ErrorContains(t, err, "is not a directory")
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32

	w, err := New(dir, 100*time.Millisecond, func() { calls.Add(1) }, func(msg string) { t.Log(msg) })
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	assert.Error(t, w.Start(context.Background()), "second start fails")

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(50 * time.Millisecond)

	for _, name := range []string{"frame001.vtk", "frame002.vtk", "frame003.vtk"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses into one callback")

	require.NoError(t, os.Remove(filepath.Join(dir, "frame002.vtk")))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherStopsWithContext(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32

	w, err := New(dir, 20*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()
	require.NoError(t, w.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.vtk"), nil, 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
