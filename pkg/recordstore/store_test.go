package recordstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testRecord struct {
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
}

func sameKey(a, b testRecord) bool {
	return a.SessionID == b.SessionID && a.StudentID == b.StudentID
}

func newFileStore(t *testing.T) *Store {
	t.Helper()
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return New(backend, "test", zap.NewNop())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	records := []testRecord{
		{SessionID: "s1", StudentID: "stu1", Status: "PRESENT"},
		{SessionID: "s1", StudentID: "stu2", Status: "LATE"},
	}
	require.NoError(t, Save(ctx, store, "attendance", records))

	loaded := Load[testRecord](ctx, store, "attendance", nil)
	assert.Equal(t, records, loaded)
}

func TestLoadNeverWrittenKeyReturnsFallback(t *testing.T) {
	store := newFileStore(t)

	fallback := []testRecord{{SessionID: "seed", StudentID: "seed", Status: "PRESENT"}}
	loaded := Load(context.Background(), store, "missing", fallback)
	assert.Equal(t, fallback, loaded)
}

func TestLoadUnparseablePayloadFallsBack(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	store := New(backend, "test", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, "test:broken", []byte("{not json")))

	fallback := []testRecord{{SessionID: "seed", StudentID: "seed"}}
	loaded := Load(ctx, store, "broken", fallback)
	assert.Equal(t, fallback, loaded)
}

func TestUpsertReplacesByKey(t *testing.T) {
	records := []testRecord{
		{SessionID: "s1", StudentID: "stu1", Status: "PRESENT"},
	}

	records = Upsert(records, []testRecord{
		{SessionID: "s1", StudentID: "stu1", Status: "ABSENT"},
		{SessionID: "s1", StudentID: "stu2", Status: "LATE"},
	}, sameKey)

	require.Len(t, records, 2)
	assert.Equal(t, "ABSENT", records[0].Status)
	assert.Equal(t, "stu2", records[1].StudentID)
}

func TestUpsertIsIdempotent(t *testing.T) {
	rec := testRecord{SessionID: "s1", StudentID: "stu1", Status: "PRESENT"}

	records := Upsert(nil, []testRecord{rec}, sameKey)
	records = Upsert(records, []testRecord{rec}, sameKey)

	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestSaveObserverSeesEverySave(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	var keys []string
	store.SetSaveObserver(func(key string, elapsed time.Duration) {
		keys = append(keys, key)
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	})

	require.NoError(t, Save(ctx, store, "attendance", []testRecord{{SessionID: "s1", StudentID: "stu1"}}))
	require.NoError(t, Save(ctx, store, "notes", []testRecord{{SessionID: "s1", StudentID: "stu1"}}))

	assert.Equal(t, []string{"attendance", "notes"}, keys)
}

func TestSaveReplacesWholeCollection(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, Save(ctx, store, "attendance", []testRecord{
		{SessionID: "s1", StudentID: "stu1"},
		{SessionID: "s1", StudentID: "stu2"},
	}))
	require.NoError(t, Save(ctx, store, "attendance", []testRecord{
		{SessionID: "s1", StudentID: "stu3"},
	}))

	loaded := Load[testRecord](ctx, store, "attendance", nil)
	require.Len(t, loaded, 1)
	assert.Equal(t, "stu3", loaded[0].StudentID)
}
