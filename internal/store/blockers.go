package store

import (
	"fmt"

	"github.com/quatroapp/quatro/internal/models"
)

// AddTaskBlocker appends a blocker pointing at another task. Self-blocking
// and unknown targets are rejected.
func (s *Store) AddTaskBlocker(taskID, blockerTaskID string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if taskID == blockerTaskID {
		return nil, fmt.Errorf("store: task %s cannot block itself", taskID)
	}
	t, err := s.task(taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.task(blockerTaskID); err != nil {
		return nil, err
	}

	t.Blockers = append(t.Blockers, models.TaskBlocker{
		TaskID:        taskID,
		Ordinal:       len(t.Blockers),
		Kind:          models.BlockerKindTask,
		BlockerTaskID: &blockerTaskID,
	})
	return s.saveAfterBlockerChange(t)
}

// AddFreeTextBlocker appends a free-text blocker describing an external
// dependency.
func (s *Store) AddFreeTextBlocker(taskID, value string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == "" {
		return nil, fmt.Errorf("store: task %s: blocker text is required", taskID)
	}
	t, err := s.task(taskID)
	if err != nil {
		return nil, err
	}

	t.Blockers = append(t.Blockers, models.TaskBlocker{
		TaskID:  taskID,
		Ordinal: len(t.Blockers),
		Kind:    models.BlockerKindFreeText,
		Value:   value,
	})
	return s.saveAfterBlockerChange(t)
}

// RemoveBlockerByIndex deletes the blocker at the given ordinal and
// renumbers the remaining blockers contiguously.
func (s *Store) RemoveBlockerByIndex(taskID string, index int) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.task(taskID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(t.Blockers) {
		return nil, fmt.Errorf("store: task %s: blocker index %d out of range [0,%d)", taskID, index, len(t.Blockers))
	}

	t.Blockers = append(t.Blockers[:index], t.Blockers[index+1:]...)
	for i := range t.Blockers {
		t.Blockers[i].Ordinal = i
	}
	return s.saveAfterBlockerChange(t)
}

// AddSubtask appends a checklist item to the task.
func (s *Store) AddSubtask(taskID, title string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if title == "" {
		return nil, fmt.Errorf("store: task %s: subtask title is required", taskID)
	}
	t, err := s.task(taskID)
	if err != nil {
		return nil, err
	}

	id, err := s.generateID("st")
	if err != nil {
		return nil, err
	}
	t.Subtasks = append(t.Subtasks, models.Subtask{
		ID:      id,
		TaskID:  taskID,
		Ordinal: len(t.Subtasks),
		Title:   title,
	})
	return s.saveAfterBlockerChange(t)
}

// ToggleSubtask flips a subtask's completed flag.
func (s *Store) ToggleSubtask(taskID, subtaskID string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.task(taskID)
	if err != nil {
		return nil, err
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			return s.saveAfterBlockerChange(t)
		}
	}
	return nil, fmt.Errorf("store: task %s: subtask %s: %w", taskID, subtaskID, ErrNotFound)
}

// RemoveSubtask deletes a checklist item and renumbers the rest.
func (s *Store) RemoveSubtask(taskID, subtaskID string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.task(taskID)
	if err != nil {
		return nil, err
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			for j := range t.Subtasks {
				t.Subtasks[j].Ordinal = j
			}
			return s.saveAfterBlockerChange(t)
		}
	}
	return nil, fmt.Errorf("store: task %s: subtask %s: %w", taskID, subtaskID, ErrNotFound)
}

// saveAfterBlockerChange stamps the task and commits a full-record save,
// since association rows changed. Callers hold the lock.
func (s *Store) saveAfterBlockerChange(t *models.Task) (*models.Task, error) {
	t.UpdatedAt = s.now()
	s.muts[t.ID]++
	s.commit([]Mutation{taskSave(t)})
	return cloneTask(t), nil
}
