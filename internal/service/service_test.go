package service

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyseq/internal/entry"
	"fyseq/internal/scan"
	"fyseq/internal/store"
)

// setupTestEnvironment creates a directory holding a numbered sequence and a
// service over an in-memory store.
func setupTestEnvironment(t *testing.T, names ...string) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	lister, err := scan.NewLister("", nil)
	require.NoError(t, err)
	return NewService(store.NewMemoryStore(), lister, func(msg string) { t.Log(msg) }), dir
}

func frameNames(from, to int) []string {
	var names []string
	for i := from; i <= to; i++ {
		names = append(names, fmt.Sprintf("frame%03d.vtk", i))
	}
	return names
}

func TestDetect(t *testing.T) {
	svc, dir := setupTestEnvironment(t, append(frameNames(1, 4), "readme.txt")...)

	report, err := svc.Detect(filepath.Join(dir, "frame003.vtk"))
	require.NoError(t, err)
	assert.Equal(t, frameNames(1, 4), report.Files)
	assert.Equal(t, 2, report.Index)
	assert.Equal(t, "padded", report.Pattern)
	assert.Equal(t, 1, report.Min)
	assert.Equal(t, 4, report.Max)
	assert.Equal(t, "frame", report.Stem)
	assert.Equal(t, "003", report.Run)
	assert.Equal(t, "vtk", report.Ext)
	assert.Equal(t, 5, report.Listed)
	assert.False(t, report.Fallback)

	report, err = svc.Detect(filepath.Join(dir, "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"readme.txt"}, report.Files)
	assert.True(t, report.Fallback)

	_, err = svc.Detect("")
	assert.Error(t, err)

	_, err = svc.Detect(dir + string(filepath.Separator))
	assert.ErrorContains(t, err, "names a directory")

	_, err = svc.Open("k", dir+string(filepath.Separator))
	assert.ErrorIs(t, err, entry.ErrEmptyPath)
}

func TestDetectMissingDirectoryDegrades(t *testing.T) {
	svc, dir := setupTestEnvironment(t)
	report, err := svc.Detect(filepath.Join(dir, "gone", "frame001.vtk"))
	require.NoError(t, err)
	assert.Equal(t, []string{"frame001.vtk"}, report.Files)
	assert.Equal(t, 0, report.Listed)
}

func TestOpenStepShow(t *testing.T) {
	svc, dir := setupTestEnvironment(t, frameNames(1, 4)...)

	rec, err := svc.Open("reader", filepath.Join(dir, "frame002.vtk"))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.TimeStep)
	require.Len(t, rec.Files, 4)
	assert.Equal(t, filepath.Join(dir, "frame001.vtk"), rec.Files[0])

	rec, err = svc.Step("reader", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.TimeStep)
	assert.Equal(t, filepath.Join(dir, "frame004.vtk"), rec.Value)

	_, err = svc.Step("reader", 4)
	assert.ErrorIs(t, err, entry.ErrOutOfRange)

	shown, err := svc.Show("reader")
	require.NoError(t, err)
	assert.Equal(t, rec.Value, shown.Value)

	keys, err := svc.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"reader"}, keys)
}

func TestOpenErrors(t *testing.T) {
	svc, _ := setupTestEnvironment(t)
	_, err := svc.Open("reader", "")
	assert.ErrorIs(t, err, entry.ErrEmptyPath)

	_, err = svc.Open("", "/data/frame001.vtk")
	assert.ErrorIs(t, err, entry.ErrNoStore)

	_, err = svc.Step("unknown", 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestForget(t *testing.T) {
	svc, dir := setupTestEnvironment(t, frameNames(1, 2)...)
	_, err := svc.Open("reader", filepath.Join(dir, "frame001.vtk"))
	require.NoError(t, err)

	require.NoError(t, svc.Forget("reader"))
	_, err = svc.Show("reader")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.Forget("reader"), store.ErrNotFound)
}

func TestScript(t *testing.T) {
	svc, dir := setupTestEnvironment(t, frameNames(1, 2)...)
	_, err := svc.Open("reader", filepath.Join(dir, "frame002.vtk"))
	require.NoError(t, err)

	script, err := svc.Script("reader")
	require.NoError(t, err)
	assert.Contains(t, script, "FILES=(")
	assert.Contains(t, script, filepath.Join(dir, "frame001.vtk"))
	assert.Contains(t, script, `FILE="${FILES[1]}"`)
}

func TestCleanStore(t *testing.T) {
	svc, dir := setupTestEnvironment(t, frameNames(1, 3)...)

	_, err := svc.Open("kept", filepath.Join(dir, "frame001.vtk"))
	require.NoError(t, err)
	_, err = svc.Open("deleted", filepath.Join(dir, "frame003.vtk"))
	require.NoError(t, err)
	require.NoError(t, svc.Store.Save(store.Record{Key: "vanished-dir", Value: filepath.Join(dir, "nope", "x.vtk")}))

	require.NoError(t, os.Remove(filepath.Join(dir, "frame003.vtk")))

	removed, err := svc.CleanStore()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	keys, err := svc.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, keys)
}

func TestFrameInfo(t *testing.T) {
	svc, dir := setupTestEnvironment(t, frameNames(1, 3)...)
	_, err := svc.Open("reader", filepath.Join(dir, "frame002.vtk"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "frame003.vtk")))

	infos, err := svc.FrameInfo("reader")
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.True(t, infos[0].Present)
	assert.Equal(t, int64(len("frame001.vtk")), infos[0].Size)
	assert.False(t, infos[0].ModTime.IsZero())
	assert.True(t, infos[1].Current)
	assert.False(t, infos[2].Present)
	assert.Equal(t, filepath.Join(dir, "frame003.vtk"), infos[2].Path)

	_, err = svc.FrameInfo("unknown")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
	assert.Equal(t, "1.5 MiB", FormatSize(1536*1024))
}
