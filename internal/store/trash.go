package store

import (
	"time"
)

// DeleteTask soft-deletes the task. With allFuture the owning recurring
// config is deleted so no further instances spawn; otherwise a deleted
// chain anchor spawns its next occurrence first, so the chain continues.
func (s *Store) DeleteTask(id string, allFuture bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.task(id)
	if err != nil {
		return err
	}

	now := s.now()
	fields := map[string]any{
		"trashed":    &now,
		"updated_at": now,
	}
	var batch []Mutation

	cfg := s.chainConfig(t)
	switch {
	case allFuture && t.RecurringConfigID != nil:
		// Kill the whole chain regardless of which instance this is.
		cfgID := *t.RecurringConfigID
		t.RecurringConfigID = nil
		fields["recurring_config_id"] = nil
		batch = append(batch, s.deleteConfigCascadeLocked(cfgID, id)...)
	case cfg != nil:
		spawned, err := s.spawnNextLocked(t, cfg)
		if err != nil {
			return err
		}
		batch = append(batch, taskCreate(spawned), configSave(cfg))
	}

	t.Trashed = &now
	t.UpdatedAt = now
	s.removeFromOrder(id)
	s.muts[id]++

	batch = append([]Mutation{taskUpdate(id, fields)}, batch...)
	s.commit(batch)
	return nil
}

// PurgeTrashed permanently removes tasks trashed longer ago than retention.
// Returns the number of tasks purged.
func (s *Store) PurgeTrashed(retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-retention)
	var batch []Mutation
	for id, t := range s.tasks {
		if t.Trashed == nil || !t.Trashed.Before(cutoff) {
			continue
		}
		delete(s.tasks, id)
		delete(s.muts, id)
		batch = append(batch, taskDelete(id))
	}

	if len(batch) == 0 {
		return 0
	}
	s.commit(batch)
	return len(batch)
}
