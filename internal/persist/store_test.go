package persist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

type counterState struct {
	Count int    `json:"count"`
	Label string `json:"label"`
	Busy  bool   `json:"-"`
}

// failingStorage fails every call, to prove persistence errors never escape.
type failingStorage struct {
	saves int
}

func (f *failingStorage) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (f *failingStorage) Save(context.Context, string, []byte) error {
	f.saves++
	return errors.New("disk on fire")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCounter(t *testing.T, storage Storage) *Store[counterState] {
	t.Helper()
	return New(counterState{Label: "initial"}, Config[counterState]{
		Name:    "counter",
		Storage: storage,
		Logger:  quietLogger(),
	})
}

func increment(s counterState) counterState {
	s.Count++
	return s
}

// =========================================================================
// GET / SET / SUBSCRIBE
// =========================================================================

func TestSet_UpdatesState(t *testing.T) {
	s := newCounter(t, nil)

	next := s.Set(increment)

	assert.Equal(t, 1, next.Count)
	assert.Equal(t, 1, s.Get().Count)
	assert.Equal(t, "initial", s.Get().Label, "fields the update didn't touch are kept")
}

func TestSubscribe_NotifiedBeforeSetReturns(t *testing.T) {
	s := newCounter(t, nil)

	var got []int
	s.Subscribe(func(next, prev counterState) {
		got = append(got, prev.Count, next.Count)
	})

	s.Set(increment)
	s.Set(increment)

	assert.Equal(t, []int{0, 1, 1, 2}, got)
}

func TestSubscribe_OrderAndUnsubscribe(t *testing.T) {
	s := newCounter(t, nil)

	var calls []string
	unsubA := s.Subscribe(func(_, _ counterState) { calls = append(calls, "a") })
	s.Subscribe(func(_, _ counterState) { calls = append(calls, "b") })

	s.Set(increment)
	unsubA()
	unsubA() // second call is harmless
	s.Set(increment)

	assert.Equal(t, []string{"a", "b", "b"}, calls)
}

// =========================================================================
// PERSISTENCE
// =========================================================================

func TestSet_PersistsEnvelope(t *testing.T) {
	storage := NewMemoryStorage()
	s := newCounter(t, storage)

	s.Set(func(c counterState) counterState {
		c.Count = 7
		c.Busy = true
		return c
	})

	blob, ok, err := storage.Load(context.Background(), "counter")
	require.NoError(t, err)
	require.True(t, ok)

	var env struct {
		State   map[string]any `json:"state"`
		Version int            `json:"version"`
	}
	require.NoError(t, json.Unmarshal(blob, &env))
	assert.Equal(t, float64(7), env.State["count"])
	assert.NotContains(t, env.State, "Busy")
	assert.Equal(t, 0, env.Version)
}

func TestPartialize_OnlyProjectionIsStored(t *testing.T) {
	storage := NewMemoryStorage()
	s := New(counterState{}, Config[counterState]{
		Name:    "counter",
		Storage: storage,
		Logger:  quietLogger(),
		Partialize: func(c counterState) any {
			return struct {
				Count int `json:"count"`
			}{c.Count}
		},
	})

	s.Set(func(c counterState) counterState {
		c.Count, c.Label = 3, "not persisted"
		return c
	})

	restored := New(counterState{Label: "fresh"}, Config[counterState]{
		Name: "counter", Storage: storage, Logger: quietLogger(),
	})
	assert.True(t, restored.Hydrated())
	assert.Equal(t, 3, restored.Get().Count)
	assert.Equal(t, "fresh", restored.Get().Label, "fields outside the projection keep their initial value")
}

func TestNew_RoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	first := newCounter(t, storage)
	first.Set(func(c counterState) counterState {
		c.Count, c.Label, c.Busy = 5, "saved", true
		return c
	})

	second := newCounter(t, storage)
	got := second.Get()
	assert.Equal(t, 5, got.Count)
	assert.Equal(t, "saved", got.Label)
	assert.False(t, got.Busy, "json:\"-\" fields always restart at their initial value")
}

func TestNew_VersionMismatchDiscardsSnapshot(t *testing.T) {
	storage := NewMemoryStorage()
	old := New(counterState{}, Config[counterState]{Name: "counter", Storage: storage, Version: 1, Logger: quietLogger()})
	old.Set(increment)

	current := New(counterState{}, Config[counterState]{Name: "counter", Storage: storage, Version: 2, Logger: quietLogger()})
	assert.False(t, current.Hydrated())
	assert.Equal(t, 0, current.Get().Count)
}

func TestNew_CorruptSnapshotIsIgnored(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), "counter", []byte(`{"state": not json`)))

	s := newCounter(t, storage)
	assert.False(t, s.Hydrated())
	assert.Equal(t, "initial", s.Get().Label)
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	storage := &failingStorage{}
	s := newCounter(t, storage)

	assert.NotPanics(t, func() { s.Set(increment) })
	assert.Equal(t, 1, s.Get().Count, "a failed save never undoes the mutation")
	assert.Equal(t, 1, storage.saves)
}
