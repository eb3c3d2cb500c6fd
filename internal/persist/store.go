// Package persist is the state container both storefront stores are built on.
//
// WHAT A Store[S] GIVES YOU:
//  1. Get()        → the current state, synchronously
//  2. Set(update)  → apply an update, notify subscribers, persist
//  3. Subscribe(f) → be told about every future Set
//  4. Persistence  → a projection of S is mirrored to a Storage under a name,
//     and read back when the store is created
//
// PERSISTENCE IS A DECORATOR, NOT A FEATURE OF THE STORES:
// The cart and auth services never call Save. They call Set, and the Store
// writes the new snapshot on their behalf. Swapping Storage (memory, file,
// SQLite, Redis) changes nothing in the business code.
//
// BEST-EFFORT WRITES:
// A failed Load or Save is logged at Warn and otherwise ignored. The in-memory
// state is the authority; storage is a mirror.
package persist

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// defaultIOTimeout bounds a single Load or Save against a Storage.
const defaultIOTimeout = 3 * time.Second

// Config configures a Store.
//
// GENERIC CONFIG:
// Config is parameterized by the state type so Partialize is type-checked:
// a Config[model.AuthState] only accepts func(model.AuthState) any.
type Config[S any] struct {
	// Name is the storage key. Two stores must never share one.
	Name string

	// Storage is where snapshots go. Nil disables persistence entirely.
	Storage Storage

	// Version is written into every envelope. A stored blob with a different
	// version is ignored on restore.
	Version int

	// Partialize picks what gets persisted. Nil persists the whole state.
	// The projection must decode back onto S (same json field names) for
	// restore to work.
	Partialize func(S) any

	// Logger receives storage failures. Nil uses slog.Default().
	Logger *slog.Logger

	// IOTimeout bounds each storage call. Zero uses 3 seconds.
	IOTimeout time.Duration
}

// envelope is the on-disk shape of a snapshot.
type envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// Listener is called after every Set with the new and the previous state.
type Listener[S any] func(next, prev S)

// Store holds one value of S and keeps it mirrored to storage.
//
// LOCKING:
//   - mu guards state; Get takes the read lock only.
//   - setMu serializes whole Set calls (swap, notify, persist) so subscribers
//     and storage always see updates in the order they were applied.
//
// Because of setMu, a Listener must not call Set on the store that invoked it.
type Store[S any] struct {
	cfg      Config[S]
	logger   *slog.Logger
	hydrated bool

	mu    sync.RWMutex
	state S

	setMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]Listener[S]
	nextSub int
}

// New creates a Store seeded with initial, then overlays whatever was
// previously persisted under cfg.Name.
func New[S any](initial S, cfg Config[S]) *Store[S] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IOTimeout <= 0 {
		cfg.IOTimeout = defaultIOTimeout
	}

	s := &Store[S]{
		cfg:    cfg,
		logger: logger.With(slog.String("store", cfg.Name)),
		state:  initial,
		subs:   make(map[int]Listener[S]),
	}
	s.hydrate()
	return s
}

// Get returns the current state.
//
// Get returns a COPY of S, but a copy of a struct containing a slice still
// points at the same backing array. Stores built on this package treat state
// as immutable: every update builds new slices instead of editing old ones.
func (s *Store[S]) Get() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Hydrated reports whether a stored snapshot was found and applied by New.
func (s *Store[S]) Hydrated() bool {
	return s.hydrated
}

// Set applies update to the current state and returns the new state.
//
// ORDER OF EFFECTS (all before Set returns):
//  1. state is swapped
//  2. subscribers are notified, in subscription order
//  3. the projection is written to storage (failures are swallowed)
func (s *Store[S]) Set(update func(S) S) S {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next := update(prev)
	s.state = next
	s.mu.Unlock()

	for _, l := range s.listeners() {
		l(next, prev)
	}

	s.persist(next)
	return next
}

// Subscribe registers l for every future Set. Call the returned function to
// unsubscribe; calling it more than once is harmless.
func (s *Store[S]) Subscribe(l Listener[S]) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = l
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// listeners returns a stable, ordered copy of the subscriber set so Set never
// holds subsMu while calling out.
func (s *Store[S]) listeners() []Listener[S] {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	out := make([]Listener[S], 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if l, ok := s.subs[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store[S]) persist(state S) {
	if s.cfg.Storage == nil {
		return
	}

	var projection any = state
	if s.cfg.Partialize != nil {
		projection = s.cfg.Partialize(state)
	}

	raw, err := json.Marshal(projection)
	if err != nil {
		s.logger.Warn("persist: encoding state", slog.String("error", err.Error()))
		return
	}
	blob, err := json.Marshal(envelope{State: raw, Version: s.cfg.Version})
	if err != nil {
		s.logger.Warn("persist: encoding envelope", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.IOTimeout)
	defer cancel()
	if err := s.cfg.Storage.Save(ctx, s.cfg.Name, blob); err != nil {
		s.logger.Warn("persist: saving state", slog.String("error", err.Error()))
	}
}

// hydrate runs once, from New, before anyone can subscribe.
func (s *Store[S]) hydrate() {
	if s.cfg.Storage == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.IOTimeout)
	defer cancel()

	blob, ok, err := s.cfg.Storage.Load(ctx, s.cfg.Name)
	if err != nil {
		s.logger.Warn("persist: loading state", slog.String("error", err.Error()))
		return
	}
	if !ok {
		return
	}

	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		s.logger.Warn("persist: decoding envelope", slog.String("error", err.Error()))
		return
	}
	if env.Version != s.cfg.Version {
		s.logger.Warn("persist: discarding snapshot with a different version",
			slog.Int("stored", env.Version),
			slog.Int("want", s.cfg.Version),
		)
		return
	}
	if len(env.State) == 0 || string(env.State) == "null" {
		return
	}

	// FIELD-WISE MERGE:
	// Decoding onto a copy of the initial state only overwrites the fields
	// present in the blob. Anything the projection left out (like the auth
	// loading flag) keeps its initial value.
	merged := s.state
	if err := json.Unmarshal(env.State, &merged); err != nil {
		s.logger.Warn("persist: decoding state", slog.String("error", err.Error()))
		return
	}
	s.state = merged
	s.hydrated = true
}
