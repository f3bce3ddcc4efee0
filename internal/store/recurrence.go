package store

import (
	"fmt"

	"github.com/quatroapp/quatro/internal/models"
	"github.com/quatroapp/quatro/internal/recur"
)

// SetRecurrence attaches a repeat cadence to the task, creating a new
// config or rewriting the task's existing one. The task must have a
// scheduled start, since the cadence advances from it.
func (s *Store) SetRecurrence(taskID string, unit string, amount int, weekdays *models.RecurringConfig) (*models.RecurringConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.task(taskID)
	if err != nil {
		return nil, err
	}
	if t.ScheduledStart == nil {
		return nil, fmt.Errorf("store: task %s: recurrence requires a scheduled start", taskID)
	}

	candidate := models.RecurringConfig{Unit: unit, Amount: amount}
	if weekdays != nil {
		candidate.Mon = weekdays.Mon
		candidate.Tue = weekdays.Tue
		candidate.Wed = weekdays.Wed
		candidate.Thu = weekdays.Thu
		candidate.Fri = weekdays.Fri
		candidate.Sat = weekdays.Sat
		candidate.Sun = weekdays.Sun
	}
	if err := recur.Validate(&candidate); err != nil {
		return nil, err
	}

	now := s.now()
	if t.RecurringConfigID != nil {
		cfg, ok := s.configs[*t.RecurringConfigID]
		if ok {
			candidate.ID = cfg.ID
			candidate.MostRecentTaskID = taskID
			candidate.CreatedAt = cfg.CreatedAt
			candidate.UpdatedAt = now
			*cfg = candidate
			s.muts[taskID]++
			s.commit([]Mutation{configSave(cfg)})
			cc := *cfg
			return &cc, nil
		}
	}

	id, err := s.generateID("rc")
	if err != nil {
		return nil, err
	}
	candidate.ID = id
	candidate.MostRecentTaskID = taskID
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	cfg := candidate
	s.configs[id] = &cfg
	t.RecurringConfigID = &id
	t.UpdatedAt = now
	s.muts[taskID]++

	s.commit([]Mutation{
		configCreate(&cfg),
		taskUpdate(taskID, map[string]any{
			"recurring_config_id": id,
			"updated_at":          t.UpdatedAt,
		}),
	})
	cc := cfg
	return &cc, nil
}

// ClearRecurrence detaches the task from its chain. Clearing from the
// chain's most recent instance ends the chain: the config is deleted and
// every instance still referencing it is detached.
func (s *Store) ClearRecurrence(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.task(taskID)
	if err != nil {
		return err
	}
	if t.RecurringConfigID == nil {
		return nil
	}

	fields := make(map[string]any)
	batch := s.detachRecurrenceLocked(t, fields)

	t.UpdatedAt = s.now()
	fields["updated_at"] = t.UpdatedAt
	s.muts[taskID]++

	batch = append([]Mutation{taskUpdate(taskID, fields)}, batch...)
	s.commit(batch)
	return nil
}

// detachRecurrenceLocked removes the task's config reference, recording the
// change in fields. When the task anchors the chain the config is deleted
// and all other referencing tasks are detached too; the extra mutations are
// returned. Callers hold the lock and commit the batch.
func (s *Store) detachRecurrenceLocked(t *models.Task, fields map[string]any) []Mutation {
	if t.RecurringConfigID == nil {
		return nil
	}
	cfgID := *t.RecurringConfigID
	t.RecurringConfigID = nil
	fields["recurring_config_id"] = nil

	cfg, ok := s.configs[cfgID]
	if !ok {
		return nil
	}
	if cfg.MostRecentTaskID != t.ID {
		return nil
	}
	return s.deleteConfigCascadeLocked(cfgID, t.ID)
}

// deleteConfigCascadeLocked deletes a config and detaches every task still
// referencing it, except the task whose own update already carries the
// detach. Callers hold the lock and commit the returned mutations.
func (s *Store) deleteConfigCascadeLocked(cfgID, except string) []Mutation {
	if _, ok := s.configs[cfgID]; !ok {
		return nil
	}
	var batch []Mutation
	for _, other := range s.tasks {
		if other.ID != except && other.RecurringConfigID != nil && *other.RecurringConfigID == cfgID {
			other.RecurringConfigID = nil
			batch = append(batch, taskUpdate(other.ID, map[string]any{"recurring_config_id": nil}))
		}
	}
	delete(s.configs, cfgID)
	batch = append(batch, configDelete(cfgID))
	return batch
}
