package gateway

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasquez/canvasagent/pkg/canvas"
)

func TestSessionStore(t *testing.T) {
	newStore := func(ttl time.Duration) (*SessionStore, *time.Time) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		store := NewSessionStore(ttl, zerolog.Nop())
		store.now = func() time.Time { return now }
		return store, &now
	}

	t.Run("should mint distinct keys", func(t *testing.T) {
		store, _ := newStore(time.Minute)
		a := store.Create()
		b := store.Create()
		assert.NotEmpty(t, a.Key)
		assert.NotEqual(t, a.Key, b.Key)
		assert.Equal(t, 2, store.Count())
	})

	t.Run("should resume a live session", func(t *testing.T) {
		store, _ := newStore(time.Minute)
		created := store.Create()

		resumed, ok := store.Resume(created.Key)
		require.True(t, ok)
		assert.Same(t, created, resumed)
	})

	t.Run("should reject an unknown key", func(t *testing.T) {
		store, _ := newStore(time.Minute)
		_, ok := store.Resume("no-such-key")
		assert.False(t, ok)
	})

	t.Run("should expire an idle session on resume", func(t *testing.T) {
		store, now := newStore(time.Minute)
		created := store.Create()

		*now = now.Add(2 * time.Minute)
		_, ok := store.Resume(created.Key)
		assert.False(t, ok)
		assert.Equal(t, 0, store.Count())
	})

	t.Run("should keep a touched session alive", func(t *testing.T) {
		store, now := newStore(time.Minute)
		created := store.Create()

		*now = now.Add(45 * time.Second)
		store.Touch(created)
		*now = now.Add(45 * time.Second)

		_, ok := store.Resume(created.Key)
		assert.True(t, ok)
	})

	t.Run("should store the pending catalog under the lock", func(t *testing.T) {
		store, now := newStore(time.Minute)
		created := store.Create()

		catalog := []canvas.Course{{ID: 101, Name: "Operating Systems"}}
		*now = now.Add(45 * time.Second)
		store.SetPending(created, catalog)

		assert.Equal(t, catalog, store.Pending(created))

		*now = now.Add(45 * time.Second)
		_, ok := store.Resume(created.Key)
		assert.True(t, ok, "SetPending refreshes the idle timer")
	})

	t.Run("should serialize pending updates from concurrent resumers", func(t *testing.T) {
		store := NewSessionStore(time.Minute, zerolog.Nop())
		created := store.Create()

		catalogs := [][]canvas.Course{
			{{ID: 101, Name: "Operating Systems"}},
			{{ID: 202, Name: "Databases"}},
		}

		var wg sync.WaitGroup
		for _, catalog := range catalogs {
			wg.Add(1)
			go func(c []canvas.Course) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					resumed, ok := store.Resume(created.Key)
					require.True(t, ok)
					store.SetPending(resumed, c)
					store.Pending(resumed)
				}
			}(catalog)
		}
		wg.Wait()

		final := store.Pending(created)
		require.Len(t, final, 1)
		assert.Contains(t, []int64{101, 202}, final[0].ID)
	})

	t.Run("should sweep only expired sessions", func(t *testing.T) {
		store, now := newStore(time.Minute)
		old := store.Create()

		*now = now.Add(90 * time.Second)
		fresh := store.Create()

		assert.Equal(t, 1, store.Sweep())
		assert.Equal(t, 1, store.Count())

		_, ok := store.Resume(old.Key)
		assert.False(t, ok)
		_, ok = store.Resume(fresh.Key)
		assert.True(t, ok)
	})
}

func TestConnectionSlot(t *testing.T) {
	t.Run("should admit one holder at a time", func(t *testing.T) {
		slot := NewConnectionSlot(time.Hour)
		require.NoError(t, slot.Acquire())
		assert.EqualError(t, slot.Acquire(), "A connection is already active. Try again later.")

		slot.Release()
		assert.NoError(t, slot.Acquire())
	})

	t.Run("should expire past the deadline", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		slot := NewConnectionSlot(time.Hour)
		slot.now = func() time.Time { return now }

		require.NoError(t, slot.Acquire())
		assert.False(t, slot.Expired())

		now = now.Add(61 * time.Minute)
		assert.True(t, slot.Expired())
	})

	t.Run("should not report expiry while free", func(t *testing.T) {
		slot := NewConnectionSlot(-time.Second)
		assert.False(t, slot.Expired())
	})
}
