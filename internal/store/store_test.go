package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(key string) Record {
	return Record{
		Key:      key,
		Value:    "/data/frame007.vtk",
		Files:    []string{"/data/frame006.vtk", "/data/frame007.vtk", "/data/frame008.vtk"},
		TimeStep: 1,
	}
}

// exerciseStore runs the behaviour shared by every SequenceStore.
func exerciseStore(t *testing.T, s SequenceStore) {
	t.Helper()

	_, err := s.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Save(Record{}), "empty key must be rejected")

	require.NoError(t, s.Save(sampleRecord("b")))
	require.NoError(t, s.Save(sampleRecord("a")))

	rec, err := s.Load("a")
	require.NoError(t, err)
	assert.Equal(t, "/data/frame007.vtk", rec.Value)
	assert.Equal(t, 1, rec.TimeStep)
	assert.Len(t, rec.Files, 3)
	assert.False(t, rec.Updated.IsZero())

	// Mutating the returned record must not leak into the store.
	rec.Files[0] = "changed"
	again, err := s.Load("a")
	require.NoError(t, err)
	assert.Equal(t, "/data/frame006.vtk", again.Files[0])

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	updated := sampleRecord("a")
	updated.TimeStep = 2
	require.NoError(t, s.Save(updated))
	rec, err = s.Load("a")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.TimeStep)

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Delete("never-there"))
	_, err = s.Load("a")
	assert.ErrorIs(t, err, ErrNotFound)

	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestBoltStore(t *testing.T) {
	var logs []string
	s, err := NewBoltStore(t.TempDir(), func(msg string) { logs = append(logs, msg) })
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, dbFileName, filepath.Base(s.Path()))
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0], s.Path())

	exerciseStore(t, s)
}

func TestBoltStorePersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "custom.db")

	s, err := NewBoltStore(dbPath, nil)
	require.NoError(t, err)
	assert.Equal(t, dbPath, s.Path())

	rec := sampleRecord("entry")
	rec.Updated = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(rec))
	require.NoError(t, s.Close())

	reopened, err := NewBoltStore(dbPath, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load("entry")
	require.NoError(t, err)
	assert.Equal(t, rec.Files, got.Files)
	assert.True(t, rec.Updated.Equal(got.Updated))
}

func TestRecordHelpers(t *testing.T) {
	rec := sampleRecord("k")
	assert.Equal(t, "/data", rec.Dir())
	assert.Equal(t, "/data/frame007.vtk", rec.Current())

	rec.TimeStep = 5
	assert.Equal(t, rec.Value, rec.Current())

	var empty Record
	assert.Equal(t, "", empty.Dir())
	assert.Equal(t, "", empty.Current())
}
