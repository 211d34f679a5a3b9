package notes

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethanbaker/soundscript/pkg/notes"
	"github.com/ethanbaker/soundscript/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory builds a fresh store whose clock is driven by the test
type storeFactory func(t *testing.T, clock notes.Clock) notes.Store

func sqliteFactory(t *testing.T, clock notes.Clock) notes.Store {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "notes.sqlite"))
	require.NoError(t, err)
	store.clock = clock
	t.Cleanup(func() { store.Close() })
	return store
}

func memoryFactory(t *testing.T, clock notes.Clock) notes.Store {
	store := NewInMemoryStore()
	store.clock = clock
	return store
}

var factories = map[string]storeFactory{
	"sqlite": sqliteFactory,
	"memory": memoryFactory,
}

// steppingClock returns a clock that advances by step on every call
func steppingClock(start time.Time, step time.Duration) notes.Clock {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

// summaryCount counts the summary rows stored for a transcript id
func summaryCount(t *testing.T, store notes.Store, transcriptionID uint) int64 {
	t.Helper()

	switch s := store.(type) {
	case *Store:
		var n int64
		require.NoError(t, s.db.Table("summarization").Where("transcription_id = ?", transcriptionID).Count(&n).Error)
		return n
	case *InMemoryStore:
		s.mutex.RLock()
		defer s.mutex.RUnlock()
		var n int64
		for _, summary := range s.summaries {
			if summary.TranscriptionID == transcriptionID {
				n++
			}
		}
		return n
	}

	t.Fatalf("unsupported store %T", store)
	return 0
}

func TestStoreContract(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			t.Run("insert then get", func(t *testing.T) { testInsertThenGet(t, factory) })
			t.Run("delete unknown", func(t *testing.T) { testDeleteUnknown(t, factory) })
			t.Run("delete cascades", func(t *testing.T) { testDeleteCascades(t, factory) })
			t.Run("list ordering", func(t *testing.T) { testListOrdering(t, factory) })
			t.Run("latest summary wins", func(t *testing.T) { testLatestSummaryWins(t, factory) })
			t.Run("summary requires transcript", func(t *testing.T) { testSummaryRequiresTranscript(t, factory) })
			t.Run("empty list", func(t *testing.T) { testEmptyList(t, factory) })
		})
	}
}

func testInsertThenGet(t *testing.T, factory storeFactory) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2024, 10, 1, 14, 5, 9, 0, time.UTC) }
	store := factory(t, clock)

	id, err := store.InsertTranscript(ctx, "lecture", "Hello world")
	require.NoError(t, err)
	assert.NotZero(t, id)

	detail, err := store.GetTranscript(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, id, detail.TranscriptionID)
	assert.Equal(t, "lecture", detail.FileName)
	assert.Equal(t, "Hello world", detail.Transcript)
	assert.Equal(t, "2024-10-01", detail.Date)
	assert.Nil(t, detail.Summary)
	assert.Nil(t, detail.Keywords)
	assert.False(t, detail.HasSummary())

	require.NoError(t, store.InsertSummary(ctx, id, "A greeting.", "hello world"))

	detail, err = store.GetTranscript(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, detail.Summary)
	require.NotNil(t, detail.Keywords)
	assert.Equal(t, "A greeting.", *detail.Summary)
	assert.Equal(t, "hello world", *detail.Keywords)

	missing, err := store.GetTranscript(ctx, id+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testDeleteUnknown(t *testing.T, factory storeFactory) {
	store := factory(t, nil)

	deleted, err := store.DeleteTranscript(context.Background(), 4242)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testDeleteCascades(t *testing.T, factory storeFactory) {
	ctx := context.Background()
	store := factory(t, nil)

	id, err := store.InsertTranscript(ctx, "meeting", "minutes")
	require.NoError(t, err)
	require.NoError(t, store.InsertSummary(ctx, id, "short", "a b"))
	require.NoError(t, store.InsertSummary(ctx, id, "shorter", "a"))
	require.Equal(t, int64(2), summaryCount(t, store, id))

	deleted, err := store.DeleteTranscript(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Zero(t, summaryCount(t, store, id), "summaries must go with their transcript")

	detail, err := store.GetTranscript(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, detail)

	// A new transcript must not inherit the deleted summary
	newID, err := store.InsertTranscript(ctx, "meeting-2", "minutes")
	require.NoError(t, err)
	detail, err = store.GetTranscript(ctx, newID)
	require.NoError(t, err)
	assert.Nil(t, detail.Summary)

	deleted, err = store.DeleteTranscript(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testListOrdering(t *testing.T, factory storeFactory) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	store := factory(t, steppingClock(start, 30*time.Minute))

	// Creation times: day 1 23:00, day 1 23:30, day 2 00:00, day 2 00:30
	names := []string{"first", "second", "third", "fourth"}
	for _, name := range names {
		_, err := store.InsertTranscript(ctx, name, "text of "+name)
		require.NoError(t, err)
	}

	listings, err := store.ListTranscripts(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 4)

	var got []string
	for _, listing := range listings {
		got = append(got, listing.FileName)
	}
	assert.Equal(t, []string{"fourth", "third", "second", "first"}, got)

	for i := 1; i < len(listings); i++ {
		assert.GreaterOrEqual(t, listings[i-1].Date, listings[i].Date)
	}
}

func testLatestSummaryWins(t *testing.T, factory storeFactory) {
	ctx := context.Background()
	store := factory(t, nil)

	id, err := store.InsertTranscript(ctx, "talk", "content")
	require.NoError(t, err)
	other, err := store.InsertTranscript(ctx, "other", "content")
	require.NoError(t, err)

	require.NoError(t, store.InsertSummary(ctx, id, "first summary", "one"))
	require.NoError(t, store.InsertSummary(ctx, id, "second summary", "two"))

	listings, err := store.ListTranscripts(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2, "duplicate summaries must not duplicate list rows")

	byID := map[uint]*notes.Listing{}
	for _, listing := range listings {
		byID[listing.ID] = listing
	}
	require.NotNil(t, byID[id].Keywords)
	assert.Equal(t, "two", *byID[id].Keywords)
	assert.Nil(t, byID[other].Keywords)

	detail, err := store.GetTranscript(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "second summary", *detail.Summary)
}

func testSummaryRequiresTranscript(t *testing.T, factory storeFactory) {
	store := factory(t, nil)

	err := store.InsertSummary(context.Background(), 999, "orphan", "x")
	assert.Error(t, err)
}

func testEmptyList(t *testing.T, factory storeFactory) {
	store := factory(t, nil)

	listings, err := store.ListTranscripts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
}

func TestSQLiteStorePing(t *testing.T) {
	store := sqliteFactory(t, nil)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := Open(utils.NewConfig(map[string]string{"DB_DRIVER": "memory"}))
		require.NoError(t, err)
		assert.IsType(t, &InMemoryStore{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "mydb.sqlite")
		store, err := Open(utils.NewConfig(map[string]string{"SQLITE_PATH": path}))
		require.NoError(t, err)
		defer store.Close()
		assert.FileExists(t, path)
	})

	t.Run("mysql without database", func(t *testing.T) {
		_, err := Open(utils.NewConfig(map[string]string{"DB_DRIVER": "mysql"}))
		assert.ErrorContains(t, err, "MYSQL_DATABASE")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(utils.NewConfig(map[string]string{"DB_DRIVER": "oracle"}))
		assert.ErrorContains(t, err, "unsupported DB_DRIVER")
	})
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN(utils.NewConfig(map[string]string{
		"MYSQL_USER":          "notes",
		"MYSQL_ROOT_PASSWORD": "secret",
		"MYSQL_HOST":          "db",
		"MYSQL_PORT":          "3307",
		"MYSQL_DATABASE":      "soundscript",
	}))
	require.NoError(t, err)

	assert.Contains(t, dsn, "notes:secret@tcp(db:3307)/soundscript")
	assert.Contains(t, dsn, "parseTime=true")
}
