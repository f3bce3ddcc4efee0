// Package store owns the normalized in-memory task and recurring-config
// collections. Every mutation is applied atomically under a single lock and
// handed to the persister as a batch; readers always see the latest
// committed state.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quatroapp/quatro/internal/models"
)

// ErrNotFound is returned when an operation targets an unknown task or
// config id.
var ErrNotFound = errors.New("not found")

// Store holds the task collection as {order, entities} plus the recurring
// configs. It is the single source of truth; derived views are recomputed
// from snapshots.
type Store struct {
	mu      sync.Mutex
	order   []string // manual rank order over live (non-trashed) tasks
	tasks   map[string]*models.Task
	configs map[string]*models.RecurringConfig

	// muts counts mutations per task since hydrate or spawn, used to decide
	// whether an auto-spawned recurrence instance may still be retracted.
	muts map[string]uint64
	// spawns maps a completed task id to the instance its completion
	// spawned. Session-local: retraction is only offered within the process
	// that performed the completion.
	spawns map[string]string

	version   uint64
	now       func() time.Time
	persister Persister
}

// Opts holds construction parameters for a Store.
type Opts struct {
	Persister Persister        // nil means in-memory only
	Now       func() time.Time // nil means time.Now
}

// New creates an empty Store.
func New(opts Opts) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		tasks:     make(map[string]*models.Task),
		configs:   make(map[string]*models.RecurringConfig),
		muts:      make(map[string]uint64),
		spawns:    make(map[string]string),
		now:       now,
		persister: opts.Persister,
	}
}

// Hydrate loads a persisted snapshot into the store, replacing any existing
// state. The rank order is rebuilt from task positions; trashed tasks stay
// in the collection (for purging) but out of the order.
func (s *Store) Hydrate(tasks []models.Task, configs []models.RecurringConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = s.order[:0]
	s.tasks = make(map[string]*models.Task, len(tasks))
	s.configs = make(map[string]*models.RecurringConfig, len(configs))
	s.muts = make(map[string]uint64)
	s.spawns = make(map[string]string)

	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	for i := range sorted {
		t := cloneTask(&sorted[i])
		s.tasks[t.ID] = t
		if t.Trashed == nil {
			s.order = append(s.order, t.ID)
		}
	}
	for i := range configs {
		c := configs[i]
		s.configs[c.ID] = &c
	}
	s.version++
}

// Snapshot is a read-only copy of the store state for derivation and
// rendering.
type Snapshot struct {
	Order   []string
	Tasks   map[string]*models.Task
	Configs map[string]*models.RecurringConfig
	Version uint64
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		Order:   append([]string(nil), s.order...),
		Tasks:   make(map[string]*models.Task, len(s.tasks)),
		Configs: make(map[string]*models.RecurringConfig, len(s.configs)),
		Version: s.version,
	}
	for id, t := range s.tasks {
		snap.Tasks[id] = cloneTask(t)
	}
	for id, c := range s.configs {
		cc := *c
		snap.Configs[id] = &cc
	}
	return snap
}

// GetTask returns a copy of the task with the given id.
func (s *Store) GetTask(id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("store: task %s: %w", id, ErrNotFound)
	}
	return cloneTask(t), nil
}

// GetConfig returns a copy of the recurring config with the given id.
func (s *Store) GetConfig(id string) (*models.RecurringConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.configs[id]
	if !ok {
		return nil, fmt.Errorf("store: config %s: %w", id, ErrNotFound)
	}
	cc := *c
	return &cc, nil
}

// Version returns the state version counter. It increments on every
// committed mutation, letting pollers detect changes cheaply.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// commit bumps the version and hands the batch to the persister. Callers
// hold the lock; the persister must not block.
func (s *Store) commit(batch []Mutation) {
	s.version++
	if s.persister != nil && len(batch) > 0 {
		s.persister.Persist(batch)
	}
}

// task returns the live task for id or a NotFound error. Callers hold the
// lock.
func (s *Store) task(id string) (*models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("store: task %s: %w", id, ErrNotFound)
	}
	return t, nil
}

// generateID creates a unique entity ID with the given prefix (5-char hex).
// Collisions get a fresh draw; the bound only guards against a broken
// random source.
func (s *Store) generateID(prefix string) (string, error) {
	for attempt := 0; attempt < 64; attempt++ {
		b := make([]byte, 3)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("store: generate ID: %w", err)
		}
		id := prefix + "-" + hex.EncodeToString(b)[:5]
		if _, taken := s.tasks[id]; taken {
			continue
		}
		if _, taken := s.configs[id]; taken {
			continue
		}
		return id, nil
	}
	return "", fmt.Errorf("store: failed to generate unique ID after retries")
}

// cloneTask deep-copies a task including its blocker and subtask slices.
func cloneTask(t *models.Task) *models.Task {
	c := *t
	c.Blockers = append([]models.TaskBlocker(nil), t.Blockers...)
	c.Subtasks = append([]models.Subtask(nil), t.Subtasks...)
	return &c
}

// timePtr returns a pointer to t.
func timePtr(t time.Time) *time.Time {
	return &t
}
