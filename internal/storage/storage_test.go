package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func newTestRedisStorage(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStorage("redis://"+mr.Addr(), ttl, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func newTestSQLiteStorage(t *testing.T, ttl time.Duration) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "sessions.db"), ttl, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSession() *state.Session {
	s := state.NewSession("Kara", "dark_fantasy")
	s.WorldName = "The Ashen Realms"
	s.ClassID = "ashen_legion"
	s.Class = "The Ashen Legion"
	s.Skills = []string{"Shield Wall"}
	s.SetScore(skillcheck.Strength, 14)
	s.History = append(s.History, state.NewGameStartEvent(state.GameStartEvent{
		WorldID: "dark_fantasy",
		Text:    "Ash falls like snow.",
		Choices: []state.Choice{
			{ID: "A", Text: "Force the gate", Gate: &state.Gate{Stat: skillcheck.Strength, Difficulty: 15}},
			{ID: "B", Text: "Wait"},
		},
	}))
	return s
}

// runStoreContract exercises the behavior every SessionStore must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) SessionStore) {
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		store := newStore(t)
		assert.NoError(t, store.Ping(ctx))
	})

	t.Run("create assigns fresh id", func(t *testing.T) {
		store := newStore(t)
		a, err := store.Create(ctx, sampleSession())
		require.NoError(t, err)
		b, err := store.Create(ctx, sampleSession())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("load round trip", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, sampleSession())
		require.NoError(t, err)

		loaded, err := store.Load(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, loaded.ID)
		assert.Equal(t, "Kara", loaded.PlayerName)
		assert.Equal(t, "The Ashen Legion", loaded.Class)
		assert.Equal(t, "ashen_legion", loaded.ClassID)
		assert.Equal(t, 14, loaded.Score(skillcheck.Strength))
		assert.Equal(t, []string{"Shield Wall"}, loaded.Skills)
		require.Len(t, loaded.History, 1)
		assert.Equal(t, state.EventGameStart, loaded.History[0].Type)

		choices := loaded.CurrentChoices()
		require.Len(t, choices, 2)
		require.NotNil(t, choices[0].Gate)
		assert.Equal(t, 15, choices[0].Gate.Difficulty)
	})

	t.Run("load missing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Load(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save appends history", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, sampleSession())
		require.NoError(t, err)

		res := skillcheck.Result{Stat: skillcheck.Strength, Difficulty: 15, Roll: 13, Modifier: 2, Total: 15, Outcome: skillcheck.Success}
		_, err = store.Save(ctx, created.ID, state.Update{Append: []state.Event{state.NewSkillCheckEvent(res, "Ash falls like snow.")}})
		require.NoError(t, err)

		health := 80
		loc := "df_gate"
		updated, err := store.Save(ctx, created.ID, state.Update{
			Append: []state.Event{state.NewAIResponseEvent(state.AIResponseEvent{
				Action:    "force the gate",
				Narrative: "The gate groans open.",
				Choices:   []state.Choice{{ID: "A", Text: "Enter"}},
			})},
			Health:   &health,
			Location: &loc,
		})
		require.NoError(t, err)
		assert.Len(t, updated.History, 3)

		loaded, err := store.Load(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, loaded.History, 3)
		assert.Equal(t, state.EventGameStart, loaded.History[0].Type)
		assert.Equal(t, state.EventSkillCheckAttempt, loaded.History[1].Type)
		assert.Equal(t, state.EventAIResponse, loaded.History[2].Type)
		assert.Equal(t, skillcheck.Success, loaded.History[1].SkillCheck.Outcome)
		assert.Equal(t, 80, loaded.Health)
		assert.Equal(t, "df_gate", loaded.Location)
		assert.Equal(t, "The gate groans open.", loaded.ScenarioText())
	})

	t.Run("save missing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Save(ctx, uuid.New(), state.Update{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save rejects malformed event", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, sampleSession())
		require.NoError(t, err)

		_, err = store.Save(ctx, created.ID, state.Update{Append: []state.Event{{Type: state.EventAIResponse}}})
		assert.Error(t, err)

		loaded, err := store.Load(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.History, 1)
	})

	t.Run("concurrent saves keep every event", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, sampleSession())
		require.NoError(t, err)

		const writers = 8
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Save(ctx, created.ID, state.Update{Append: []state.Event{
					state.NewAIResponseEvent(state.AIResponseEvent{Narrative: "beat"}),
				}})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		loaded, err := store.Load(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.History, writers+1)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, sampleSession())
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, created.ID))
		_, err = store.Load(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, created.ID), ErrNotFound)
	})
}

func TestRedisStorage_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) SessionStore {
		store, _ := newTestRedisStorage(t, 0)
		return store
	})
}

func TestSQLiteStorage_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) SessionStore {
		return newTestSQLiteStorage(t, 0)
	})
}

func TestMockStorage_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) SessionStore {
		return NewMockStorage()
	})
}

func TestRedisStorage_TTL(t *testing.T) {
	store, mr := newTestRedisStorage(t, time.Hour)
	ctx := context.Background()

	created, err := store.Create(ctx, sampleSession())
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(sessionKey(created.ID)))

	_, err = store.Save(ctx, created.ID, state.Update{Append: []state.Event{
		state.NewAIResponseEvent(state.AIResponseEvent{Narrative: "beat"}),
	}})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(sessionKey(created.ID)))

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorage_KeyLayout(t *testing.T) {
	store, mr := newTestRedisStorage(t, 0)
	created, err := store.Create(context.Background(), sampleSession())
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:"+created.ID.String()))
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	store, _ := newTestRedisStorage(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, store.WaitForConnection(ctx))
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions("localhost:6380")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)

	opts, err = redisOptions("redis://:secret@cache:6379/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = redisOptions("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
}

func TestSQLiteStorage_Expiry(t *testing.T) {
	store := newTestSQLiteStorage(t, time.Hour)
	ctx := context.Background()

	created, err := store.Create(ctx, sampleSession())
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = store.Load(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteStorage_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	first, err := NewSQLiteStorage(path, 0, testLogger())
	require.NoError(t, err)
	created, err := first.Create(context.Background(), sampleSession())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLiteStorage(path, 0, testLogger())
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	var applied int
	require.NoError(t, second.sqlDB.QueryRow("SELECT COUNT(*) FROM "+migrationTable).Scan(&applied))
	assert.Equal(t, 1, applied)

	_, err = second.Load(context.Background(), created.ID)
	assert.NoError(t, err)
}

func TestNewSQLiteStorage_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ", 0, testLogger())
	assert.Error(t, err)
}

func TestExtractUpMigration(t *testing.T) {
	got := extractUpMigration("-- +migrate Up\nCREATE TABLE x (id INT);\n-- +migrate Down\nDROP TABLE x;")
	assert.Equal(t, "\nCREATE TABLE x (id INT);\n", got)
	assert.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
}

func TestMockStorage_InjectedErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMockStorage()
	created, err := store.Create(ctx, sampleSession())
	require.NoError(t, err)

	store.SetPingError(assert.AnError)
	assert.ErrorIs(t, store.Ping(ctx), assert.AnError)
	store.SetPingSuccess()
	assert.NoError(t, store.Ping(ctx))

	store.SetLoadError(assert.AnError)
	_, err = store.Load(ctx, created.ID)
	assert.ErrorIs(t, err, assert.AnError)
	store.SetLoadError(nil)

	store.SaveErrorAfter = 1
	_, err = store.Save(ctx, created.ID, state.Update{})
	assert.NoError(t, err)
	_, err = store.Save(ctx, created.ID, state.Update{})
	assert.Error(t, err)
	assert.Equal(t, 2, store.Saves())
}
