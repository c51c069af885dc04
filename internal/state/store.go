package state

import (
	"log/slog"
	"sync"

	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/seed"
)

// Persister writes the durable subset of the state to the on-device slot.
type Persister interface {
	Save(Persisted) error
}

// Subscriber receives a snapshot after every mutation.
type Subscriber func(State)

// Store is the mutable state container. Mutations are synchronous and
// total: subscribers only ever see fully applied snapshots.
type Store struct {
	mu        sync.Mutex
	state     State
	subs      []Subscriber
	persister Persister
	undo      *undoEntry
	logger    *slog.Logger
}

// New creates a Store around the given initial state. persister may be nil
// (tests, in-memory use).
func New(initial State, persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:     initial,
		persister: persister,
		logger:    logger.With("component", "state"),
	}
}

// Subscribe registers a callback invoked synchronously after every
// mutation, with a snapshot of the new state.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Initialize seeds the default master list exactly once. Subsequent calls
// are no-ops guarded by the initialized flag, so user edits survive.
func (s *Store) Initialize() {
	s.mutate(func(st *State) {
		if st.Initialized {
			return
		}
		st.Categories = seed.Categories()
		st.MasterItems = seed.MasterItems()
		st.Initialized = true
	})
}

// ResetMasterList discards the current categories and master items and
// restores the built-in defaults. Trips keep their items. Undoable.
func (s *Store) ResetMasterList() {
	s.mutate(func(st *State) {
		prevCategories := append([]model.Category(nil), st.Categories...)
		prevItems := cloneMasterItems(st.MasterItems)
		st.Categories = seed.Categories()
		st.MasterItems = seed.MasterItems()
		s.rememberUndo(func(st *State) {
			st.Categories = prevCategories
			st.MasterItems = prevItems
		})
	})
}

// mutate applies fn under the lock, persists the durable subset, and
// notifies subscribers with the resulting snapshot.
func (s *Store) mutate(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.Clone()
	subs := append([]Subscriber(nil), s.subs...)
	if s.persister != nil {
		if err := s.persister.Save(snap.Persisted()); err != nil {
			s.logger.Error("persist state", "error", err)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// maxCategorySortOrder returns the highest sortOrder among categories,
// or -1 when there are none.
func maxCategorySortOrder(categories []model.Category) int {
	max := -1
	for _, c := range categories {
		if c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max
}
