package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/quatroapp/quatro/internal/models"
	"github.com/quatroapp/quatro/internal/score"
)

// CreateOpts holds parameters for creating a new task.
type CreateOpts struct {
	Title       string
	Description string
	Impact      int // [0,4]
	Effort      int // [0,4]

	Due            *time.Time
	ScheduledStart *time.Time
	SnoozedUntil   *time.Time

	// AtHead inserts the task at the top of the manual rank order instead
	// of the bottom.
	AtHead bool
}

// CreateTask validates opts, assigns an id, computes the score, and inserts
// the task into the collection and the rank order.
func (s *Store) CreateTask(opts CreateOpts) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []string
	if opts.Title == "" {
		errs = append(errs, "title is required")
	}
	if !score.InRange(opts.Impact) {
		errs = append(errs, fmt.Sprintf("impact %d out of range [%d,%d]", opts.Impact, score.Min, score.Max))
	}
	if !score.InRange(opts.Effort) {
		errs = append(errs, fmt.Sprintf("effort %d out of range [%d,%d]", opts.Effort, score.Min, score.Max))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("store: create task: %s", strings.Join(errs, "; "))
	}

	id, err := s.generateID("tk")
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &models.Task{
		ID:             id,
		Title:          opts.Title,
		Description:    opts.Description,
		Impact:         opts.Impact,
		Effort:         opts.Effort,
		Score:          score.Calculate(opts.Impact, opts.Effort),
		Due:            opts.Due,
		ScheduledStart: opts.ScheduledStart,
		SnoozedUntil:   opts.SnoozedUntil,
		Position:       s.positionFor(opts.AtHead),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.tasks[id] = t
	if opts.AtHead {
		s.order = append([]string{id}, s.order...)
	} else {
		s.order = append(s.order, id)
	}
	s.muts[id]++

	s.commit([]Mutation{taskCreate(t)})
	return cloneTask(t), nil
}

// positionFor picks a persisted position just outside the current extremes,
// so hydration reproduces the manual order without rewriting every row on
// insert.
func (s *Store) positionFor(head bool) int {
	if len(s.order) == 0 {
		return 0
	}
	if head {
		return s.tasks[s.order[0]].Position - 1
	}
	return s.tasks[s.order[len(s.order)-1]].Position + 1
}

// OptTime is an optional nullable-timestamp patch field: Set selects the
// field for update, Time nil clears it.
type OptTime struct {
	Set  bool
	Time *time.Time
}

// SetTime returns an OptTime that assigns t.
func SetTime(t time.Time) OptTime {
	return OptTime{Set: true, Time: &t}
}

// ClearTime returns an OptTime that nulls the field.
func ClearTime() OptTime {
	return OptTime{Set: true}
}

// Patch holds a partial task update. Nil pointer fields and unset OptTimes
// are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Impact      *int
	Effort      *int

	Due            OptTime
	ScheduledStart OptTime
	SnoozedUntil   OptTime

	CalendarBlockCalendarID *string
	CalendarBlockStart      OptTime
	CalendarBlockEnd        OptTime
}

// UpdateTask merges a patch into the task. Changing impact or effort
// recomputes the score in the same transition; clearing scheduledStart also
// clears the calendar block fields and any recurrence tie anchored to the
// start date.
func (s *Store) UpdateTask(id string, p Patch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.task(id)
	if err != nil {
		return nil, err
	}

	if p.Impact != nil && !score.InRange(*p.Impact) {
		return nil, fmt.Errorf("store: update task %s: impact %d out of range [%d,%d]", id, *p.Impact, score.Min, score.Max)
	}
	if p.Effort != nil && !score.InRange(*p.Effort) {
		return nil, fmt.Errorf("store: update task %s: effort %d out of range [%d,%d]", id, *p.Effort, score.Min, score.Max)
	}
	if p.Title != nil && *p.Title == "" {
		return nil, fmt.Errorf("store: update task %s: title cannot be empty", id)
	}

	fields := make(map[string]any)
	batch := []Mutation{}

	if p.Title != nil {
		t.Title = *p.Title
		fields["title"] = t.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
		fields["description"] = t.Description
	}
	if p.Impact != nil || p.Effort != nil {
		if p.Impact != nil {
			t.Impact = *p.Impact
			fields["impact"] = t.Impact
		}
		if p.Effort != nil {
			t.Effort = *p.Effort
			fields["effort"] = t.Effort
		}
		t.Score = score.Calculate(t.Impact, t.Effort)
		fields["score"] = t.Score
	}
	if p.Due.Set {
		t.Due = p.Due.Time
		fields["due"] = t.Due
	}
	if p.SnoozedUntil.Set {
		t.SnoozedUntil = p.SnoozedUntil.Time
		fields["snoozed_until"] = t.SnoozedUntil
	}
	if p.CalendarBlockCalendarID != nil {
		t.CalendarBlockCalendarID = *p.CalendarBlockCalendarID
		fields["calendar_block_calendar_id"] = t.CalendarBlockCalendarID
	}
	if p.CalendarBlockStart.Set {
		t.CalendarBlockStart = p.CalendarBlockStart.Time
		fields["calendar_block_start"] = t.CalendarBlockStart
	}
	if p.CalendarBlockEnd.Set {
		t.CalendarBlockEnd = p.CalendarBlockEnd.Time
		fields["calendar_block_end"] = t.CalendarBlockEnd
	}
	if p.ScheduledStart.Set {
		t.ScheduledStart = p.ScheduledStart.Time
		fields["scheduled_start"] = t.ScheduledStart
		if t.ScheduledStart == nil {
			// No start date means no calendar block and no recurrence
			// anchor.
			t.CalendarBlockCalendarID = ""
			t.CalendarBlockStart = nil
			t.CalendarBlockEnd = nil
			fields["calendar_block_calendar_id"] = ""
			fields["calendar_block_start"] = nil
			fields["calendar_block_end"] = nil
			batch = append(batch, s.detachRecurrenceLocked(t, fields)...)
		}
	}

	if len(fields) == 0 {
		return cloneTask(t), nil
	}

	t.UpdatedAt = s.now()
	fields["updated_at"] = t.UpdatedAt
	s.muts[id]++

	batch = append([]Mutation{taskUpdate(id, fields)}, batch...)
	s.commit(batch)
	return cloneTask(t), nil
}

// Snooze suppresses the task's Now visibility until the given time.
func (s *Store) Snooze(id string, until time.Time) (*models.Task, error) {
	return s.UpdateTask(id, Patch{SnoozedUntil: SetTime(until)})
}

// SetRelativePrioritization moves the task at fromIndex to toIndex in the
// manual rank order. The order keeps exactly the same id multiset; only
// positions change. Persisted position rewrites go out as one batch.
func (s *Store) SetRelativePrioritization(taskID string, fromIndex, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fromIndex < 0 || fromIndex >= len(s.order) {
		return fmt.Errorf("store: reorder: from index %d out of range [0,%d)", fromIndex, len(s.order))
	}
	if toIndex < 0 || toIndex >= len(s.order) {
		return fmt.Errorf("store: reorder: to index %d out of range [0,%d)", toIndex, len(s.order))
	}
	if s.order[fromIndex] != taskID {
		return fmt.Errorf("store: reorder: task %s is not at index %d", taskID, fromIndex)
	}
	if fromIndex == toIndex {
		return nil
	}

	id := s.order[fromIndex]
	s.order = append(s.order[:fromIndex], s.order[fromIndex+1:]...)
	rest := append([]string(nil), s.order[toIndex:]...)
	s.order = append(append(s.order[:toIndex], id), rest...)

	batch := make([]Mutation, 0, len(s.order))
	for i, tid := range s.order {
		t := s.tasks[tid]
		if t.Position == i {
			continue
		}
		t.Position = i
		s.muts[tid]++
		batch = append(batch, taskUpdate(tid, map[string]any{"position": i}))
	}

	s.commit(batch)
	return nil
}
