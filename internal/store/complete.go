package store

import (
	"fmt"

	"github.com/quatroapp/quatro/internal/models"
	"github.com/quatroapp/quatro/internal/recur"
)

// UndoToken reverses the exact mutation that produced it, including any
// recurrence instance spawned as a side effect. Tokens are single-use;
// callers offer them for a bounded window (the toast duration) and drop
// them afterward.
type UndoToken func() error

// CompleteTask marks the task completed. When the task is the most recent
// instance of a recurring chain, the next occurrence is spawned in the same
// transition, carrying over the template fields with subtasks reset to
// uncompleted. The returned token undoes the completion and retracts the
// spawned instance if it has not been mutated since.
func (s *Store) CompleteTask(id string) (UndoToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.task(id)
	if err != nil {
		return nil, err
	}
	if t.Completed != nil {
		return nil, fmt.Errorf("store: task %s is already completed", id)
	}

	completedAt := s.now()
	batch := []Mutation{}

	// Spawn before mutating so a malformed config fails the whole intent.
	var spawned *models.Task
	cfg := s.chainConfig(t)
	if cfg != nil {
		spawned, err = s.spawnNextLocked(t, cfg)
		if err != nil {
			return nil, err
		}
		batch = append(batch, taskCreate(spawned), configSave(cfg))
	}

	t.Completed = &completedAt
	t.UpdatedAt = completedAt
	s.muts[id]++
	batch = append([]Mutation{taskUpdate(id, map[string]any{
		"completed":  t.Completed,
		"updated_at": t.UpdatedAt,
	})}, batch...)

	if spawned != nil {
		s.spawns[id] = spawned.ID
	}
	s.commit(batch)

	used := false
	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if used {
			return fmt.Errorf("store: undo token for %s already used", id)
		}
		used = true
		return s.undoCompleteLocked(id)
	}, nil
}

// undoCompleteLocked restores completed=nil and retracts the spawned
// instance when it is still untouched.
func (s *Store) undoCompleteLocked(id string) error {
	t, err := s.task(id)
	if err != nil {
		return err
	}

	t.Completed = nil
	t.UpdatedAt = s.now()
	batch := []Mutation{taskUpdate(id, map[string]any{
		"completed":  nil,
		"updated_at": t.UpdatedAt,
	})}

	_, retractions := s.retractSpawnLocked(id)
	batch = append(batch, retractions...)
	s.commit(batch)
	return nil
}

// MarkIncomplete clears the task's completion. If completing it spawned a
// recurrence instance in this session and that instance is still untouched,
// the instance is retracted and the chain anchor moves back. The returned
// token re-applies the original completion timestamp and restores the
// retracted instance, re-advancing the anchor.
func (s *Store) MarkIncomplete(id string) (UndoToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.task(id)
	if err != nil {
		return nil, err
	}
	if t.Completed == nil {
		return nil, fmt.Errorf("store: task %s is not completed", id)
	}

	prevCompleted := *t.Completed
	t.Completed = nil
	t.UpdatedAt = s.now()
	s.muts[id]++

	batch := []Mutation{taskUpdate(id, map[string]any{
		"completed":  nil,
		"updated_at": t.UpdatedAt,
	})}
	retracted, retractions := s.retractSpawnLocked(id)
	batch = append(batch, retractions...)
	s.commit(batch)

	used := false
	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if used {
			return fmt.Errorf("store: undo token for %s already used", id)
		}
		used = true

		t, err := s.task(id)
		if err != nil {
			return err
		}
		t.Completed = timePtr(prevCompleted)
		t.UpdatedAt = s.now()
		batch := []Mutation{taskUpdate(id, map[string]any{
			"completed":  t.Completed,
			"updated_at": t.UpdatedAt,
		})}
		batch = append(batch, s.restoreSpawnLocked(id, retracted)...)
		s.commit(batch)
		return nil
	}, nil
}

// chainConfig returns the task's recurring config when the task is the
// chain's most recent instance, nil otherwise.
func (s *Store) chainConfig(t *models.Task) *models.RecurringConfig {
	if t.RecurringConfigID == nil {
		return nil
	}
	cfg, ok := s.configs[*t.RecurringConfigID]
	if !ok || cfg.MostRecentTaskID != t.ID {
		return nil
	}
	return cfg
}

// spawnNextLocked creates the next instance of a recurring chain from the
// template task and advances the chain anchor. The new instance inherits
// title, description, impact, effort, blockers, and subtasks (reset to
// uncompleted); its start is the next occurrence after the template's
// anchor date.
func (s *Store) spawnNextLocked(tmpl *models.Task, cfg *models.RecurringConfig) (*models.Task, error) {
	anchor := s.now()
	if tmpl.ScheduledStart != nil {
		anchor = *tmpl.ScheduledStart
	} else if tmpl.Due != nil {
		anchor = *tmpl.Due
	}

	next, err := recur.NextOccurrence(cfg, anchor)
	if err != nil {
		return nil, fmt.Errorf("store: spawn next instance of %s: %w", tmpl.ID, err)
	}

	id, err := s.generateID("tk")
	if err != nil {
		return nil, err
	}

	now := s.now()
	spawn := &models.Task{
		ID:                id,
		Title:             tmpl.Title,
		Description:       tmpl.Description,
		Impact:            tmpl.Impact,
		Effort:            tmpl.Effort,
		Score:             tmpl.Score,
		ScheduledStart:    &next,
		RecurringConfigID: &cfg.ID,
		Position:          s.positionFor(false),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for i, b := range tmpl.Blockers {
		spawn.Blockers = append(spawn.Blockers, models.TaskBlocker{
			TaskID:        id,
			Ordinal:       i,
			Kind:          b.Kind,
			BlockerTaskID: b.BlockerTaskID,
			Value:         b.Value,
		})
	}
	for i, st := range tmpl.Subtasks {
		subID, err := s.generateID("st")
		if err != nil {
			return nil, err
		}
		spawn.Subtasks = append(spawn.Subtasks, models.Subtask{
			ID:      subID,
			TaskID:  id,
			Ordinal: i,
			Title:   st.Title,
		})
	}

	s.tasks[id] = spawn
	s.order = append(s.order, id)
	s.muts[id] = 0
	cfg.MostRecentTaskID = id
	return spawn, nil
}

// retractSpawnLocked removes the instance spawned by completing id, if it
// exists, is untouched since the spawn, and is not itself completed. The
// chain anchor moves back to id. Returns the retracted instance and the
// mutations for the retraction.
func (s *Store) retractSpawnLocked(id string) (*models.Task, []Mutation) {
	spawnID, ok := s.spawns[id]
	if !ok {
		return nil, nil
	}
	delete(s.spawns, id)

	spawn, ok := s.tasks[spawnID]
	if !ok || s.muts[spawnID] != 0 || spawn.Completed != nil {
		return nil, nil
	}

	delete(s.tasks, spawnID)
	delete(s.muts, spawnID)
	s.removeFromOrder(spawnID)

	batch := []Mutation{taskDelete(spawnID)}
	if spawn.RecurringConfigID != nil {
		if cfg, ok := s.configs[*spawn.RecurringConfigID]; ok && cfg.MostRecentTaskID == spawnID {
			cfg.MostRecentTaskID = id
			batch = append(batch, configSave(cfg))
		}
	}
	return spawn, batch
}

// restoreSpawnLocked re-inserts a previously retracted instance and moves
// the chain anchor forward to it again. A nil spawn, or an id the store has
// since reused, is a no-op. Callers hold the lock and commit the batch.
func (s *Store) restoreSpawnLocked(id string, spawn *models.Task) []Mutation {
	if spawn == nil {
		return nil
	}
	if _, taken := s.tasks[spawn.ID]; taken {
		return nil
	}

	s.tasks[spawn.ID] = spawn
	s.order = append(s.order, spawn.ID)
	s.muts[spawn.ID] = 0
	s.spawns[id] = spawn.ID

	batch := []Mutation{taskCreate(spawn)}
	if spawn.RecurringConfigID != nil {
		if cfg, ok := s.configs[*spawn.RecurringConfigID]; ok && cfg.MostRecentTaskID == id {
			cfg.MostRecentTaskID = spawn.ID
			batch = append(batch, configSave(cfg))
		}
	}
	return batch
}

// removeFromOrder drops id from the rank order if present.
func (s *Store) removeFromOrder(id string) {
	for i, tid := range s.order {
		if tid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
