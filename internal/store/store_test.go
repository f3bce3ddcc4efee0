package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/quatroapp/quatro/internal/models"
)

// recordingPersister captures mutation batches for assertions.
type recordingPersister struct {
	batches [][]Mutation
}

func (p *recordingPersister) Persist(batch []Mutation) {
	p.batches = append(p.batches, batch)
}

func testTime() time.Time {
	// A Monday morning.
	return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) (*Store, *recordingPersister) {
	t.Helper()
	p := &recordingPersister{}
	s := New(Opts{Persister: p, Now: testTime})
	return s, p
}

func mustCreate(t *testing.T, s *Store, opts CreateOpts) *models.Task {
	t.Helper()
	task, err := s.CreateTask(opts)
	if err != nil {
		t.Fatalf("CreateTask(%q): %v", opts.Title, err)
	}
	return task
}

func TestCreateTask(t *testing.T) {
	s, p := newTestStore(t)

	task := mustCreate(t, s, CreateOpts{Title: "Write report", Impact: 4, Effort: 4})
	if task.ID == "" || !strings.HasPrefix(task.ID, "tk-") {
		t.Errorf("ID = %q, want tk- prefix", task.ID)
	}
	if task.Score != 64 {
		t.Errorf("Score = %d, want 64", task.Score)
	}
	if task.Completed != nil || task.Trashed != nil {
		t.Error("new task should have nil completed and trashed")
	}
	if len(task.Blockers) != 0 {
		t.Errorf("new task has %d blockers, want 0", len(task.Blockers))
	}

	if len(p.batches) != 1 {
		t.Fatalf("persisted %d batches, want 1", len(p.batches))
	}
	if m := p.batches[0][0]; m.Op != OpCreate || m.Entity != EntityTask || m.ID != task.ID {
		t.Errorf("mutation = %+v, want task create for %s", m, task.ID)
	}
}

func TestCreateTask_IDsStayUnique(t *testing.T) {
	s, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		task := mustCreate(t, s, CreateOpts{Title: fmt.Sprintf("task %d", i), Impact: 1, Effort: 1})
		if seen[task.ID] {
			t.Fatalf("duplicate ID %s after %d creates", task.ID, i+1)
		}
		seen[task.ID] = true
	}
}

func TestCreateTask_Validation(t *testing.T) {
	s, _ := newTestStore(t)

	tests := []struct {
		name    string
		opts    CreateOpts
		wantErr string
	}{
		{"missing title", CreateOpts{Impact: 1, Effort: 1}, "title is required"},
		{"impact too high", CreateOpts{Title: "x", Impact: 5, Effort: 1}, "impact 5 out of range"},
		{"negative effort", CreateOpts{Title: "x", Impact: 1, Effort: -1}, "effort -1 out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTask(tt.opts)
			if err == nil {
				t.Fatal("CreateTask = nil error, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}

	if len(s.Snapshot().Order) != 0 {
		t.Error("failed creates must not partially apply")
	}
}

func TestCreateTask_AtHead(t *testing.T) {
	s, _ := newTestStore(t)

	a := mustCreate(t, s, CreateOpts{Title: "a", Impact: 1, Effort: 1})
	b := mustCreate(t, s, CreateOpts{Title: "b", Impact: 1, Effort: 1, AtHead: true})

	snap := s.Snapshot()
	if snap.Order[0] != b.ID || snap.Order[1] != a.ID {
		t.Errorf("order = %v, want [%s %s]", snap.Order, b.ID, a.ID)
	}
}

func TestUpdateTask_RecomputesScore(t *testing.T) {
	s, _ := newTestStore(t)
	task := mustCreate(t, s, CreateOpts{Title: "x", Impact: 2, Effort: 3})

	impact := 4
	got, err := s.UpdateTask(task.ID, Patch{Impact: &impact})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.Score != 48 {
		t.Errorf("Score = %d, want 48 (4*4*3)", got.Score)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	title := "y"
	_, err := s.UpdateTask("tk-zzzzz", Patch{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateTask_ClearScheduledStartCascades(t *testing.T) {
	s, _ := newTestStore(t)

	start := testTime().Add(24 * time.Hour)
	task := mustCreate(t, s, CreateOpts{Title: "x", Impact: 1, Effort: 1, ScheduledStart: &start})

	calID := "primary"
	if _, err := s.UpdateTask(task.ID, Patch{
		CalendarBlockCalendarID: &calID,
		CalendarBlockStart:      SetTime(start),
		CalendarBlockEnd:        SetTime(start.Add(time.Hour)),
	}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if _, err := s.SetRecurrence(task.ID, models.UnitDay, 1, nil); err != nil {
		t.Fatalf("SetRecurrence: %v", err)
	}

	got, err := s.UpdateTask(task.ID, Patch{ScheduledStart: ClearTime()})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.ScheduledStart != nil {
		t.Error("ScheduledStart not cleared")
	}
	if got.CalendarBlockCalendarID != "" || got.CalendarBlockStart != nil || got.CalendarBlockEnd != nil {
		t.Error("calendar block fields not cleared with scheduled start")
	}
	if got.RecurringConfigID != nil {
		t.Error("recurrence tie not cleared with scheduled start")
	}
	if len(s.Snapshot().Configs) != 0 {
		t.Error("orphaned recurring config not deleted")
	}
}

func TestCompleteTask_UndoRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	task := mustCreate(t, s, CreateOpts{Title: "x", Impact: 2, Effort: 2})

	undo, err := s.CompleteTask(task.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	got, _ := s.GetTask(task.ID)
	if got.Completed == nil {
		t.Fatal("Completed = nil after CompleteTask")
	}

	if err := undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if got.Completed != nil {
		t.Error("Completed not nil after undo")
	}
	if got.Score != task.Score || got.Title != task.Title {
		t.Error("undo changed unrelated fields")
	}

	if err := undo(); err == nil {
		t.Error("second undo = nil error, want already-used error")
	}
}

func TestCompleteTask_AlreadyCompleted(t *testing.T) {
	s, _ := newTestStore(t)
	task := mustCreate(t, s, CreateOpts{Title: "x", Impact: 1, Effort: 1})

	if _, err := s.CompleteTask(task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if _, err := s.CompleteTask(task.ID); err == nil {
		t.Error("second CompleteTask = nil error, want error")
	}
}

// recurringMonday creates a task scheduled on the test Monday with a weekly
// Monday cadence.
func recurringMonday(t *testing.T, s *Store) *models.Task {
	t.Helper()
	start := testTime()
	task := mustCreate(t, s, CreateOpts{Title: "Weekly review", Impact: 3, Effort: 1, ScheduledStart: &start})
	mask := &models.RecurringConfig{Mon: true}
	if _, err := s.SetRecurrence(task.ID, models.UnitWeek, 1, mask); err != nil {
		t.Fatalf("SetRecurrence: %v", err)
	}
	got, _ := s.GetTask(task.ID)
	return got
}

func TestCompleteTask_SpawnsNextOccurrence(t *testing.T) {
	s, p := newTestStore(t)
	task := recurringMonday(t, s)

	if _, err := s.AddSubtask(task.ID, "prepare notes"); err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}
	if _, err := s.ToggleSubtask(task.ID, mustGetSubtaskID(t, s, task.ID, 0)); err != nil {
		t.Fatalf("ToggleSubtask: %v", err)
	}

	p.batches = nil
	if _, err := s.CompleteTask(task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	snap := s.Snapshot()
	var spawn *models.Task
	for _, st := range snap.Tasks {
		if st.ID != task.ID && st.Completed == nil {
			spawn = st
		}
	}
	if spawn == nil {
		t.Fatal("no spawned instance found")
	}
	if spawn.Title != task.Title || spawn.Impact != task.Impact || spawn.Effort != task.Effort {
		t.Error("spawn does not carry template fields")
	}
	if spawn.ScheduledStart == nil {
		t.Fatal("spawn has no scheduled start")
	}
	nextMonday := testTime().AddDate(0, 0, 7)
	if !spawn.ScheduledStart.Equal(nextMonday) {
		t.Errorf("spawn start = %v, want next Monday %v", spawn.ScheduledStart, nextMonday)
	}
	if spawn.RecurringConfigID == nil || *spawn.RecurringConfigID != *task.RecurringConfigID {
		t.Error("spawn does not continue the chain config")
	}
	if len(spawn.Subtasks) != 1 || spawn.Subtasks[0].Completed {
		t.Error("spawn subtasks not carried over reset to uncompleted")
	}

	cfg := snap.Configs[*task.RecurringConfigID]
	if cfg.MostRecentTaskID != spawn.ID {
		t.Errorf("chain anchor = %s, want spawn %s", cfg.MostRecentTaskID, spawn.ID)
	}

	// Complete + spawn + anchor move arrive as one logical batch.
	if len(p.batches) != 1 {
		t.Errorf("persisted %d batches, want 1", len(p.batches))
	}
}

func mustGetSubtaskID(t *testing.T, s *Store, taskID string, ordinal int) string {
	t.Helper()
	task, err := s.GetTask(taskID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if ordinal >= len(task.Subtasks) {
		t.Fatalf("task has %d subtasks, want ordinal %d", len(task.Subtasks), ordinal)
	}
	return task.Subtasks[ordinal].ID
}

func TestCompleteTask_UndoRetractsSpawn(t *testing.T) {
	s, _ := newTestStore(t)
	task := recurringMonday(t, s)

	undo, err := s.CompleteTask(task.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if got := len(s.Snapshot().Tasks); got != 2 {
		t.Fatalf("task count = %d after complete, want 2", got)
	}

	if err := undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}

	snap := s.Snapshot()
	if got := len(snap.Tasks); got != 1 {
		t.Errorf("task count = %d after undo, want 1 (spawn retracted)", got)
	}
	cfg := snap.Configs[*task.RecurringConfigID]
	if cfg.MostRecentTaskID != task.ID {
		t.Errorf("chain anchor = %s after undo, want %s", cfg.MostRecentTaskID, task.ID)
	}
}

func TestCompleteTask_UndoKeepsMutatedSpawn(t *testing.T) {
	s, _ := newTestStore(t)
	task := recurringMonday(t, s)

	undo, err := s.CompleteTask(task.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	// Find and touch the spawn before undoing.
	var spawnID string
	for id := range s.Snapshot().Tasks {
		if id != task.ID {
			spawnID = id
		}
	}
	title := "edited"
	if _, err := s.UpdateTask(spawnID, Patch{Title: &title}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if err := undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, err := s.GetTask(spawnID); err != nil {
		t.Error("mutated spawn was retracted, want kept")
	}
}

func TestMarkIncomplete(t *testing.T) {
	s, _ := newTestStore(t)
	task := recurringMonday(t, s)

	if _, err := s.MarkIncomplete(task.ID); err == nil {
		t.Error("MarkIncomplete on uncompleted task = nil error, want error")
	}

	if _, err := s.CompleteTask(task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	undo, err := s.MarkIncomplete(task.ID)
	if err != nil {
		t.Fatalf("MarkIncomplete: %v", err)
	}

	snap := s.Snapshot()
	if got, _ := s.GetTask(task.ID); got.Completed != nil {
		t.Error("Completed not nil after MarkIncomplete")
	}
	if got := len(snap.Tasks); got != 1 {
		t.Errorf("task count = %d, want 1 (untouched spawn retracted)", got)
	}

	if err := undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got, _ := s.GetTask(task.ID); got.Completed == nil {
		t.Error("Completed nil after undoing MarkIncomplete")
	}
}

func TestMarkIncomplete_UndoRestoresRetractedSpawn(t *testing.T) {
	s, _ := newTestStore(t)
	task := recurringMonday(t, s)

	if _, err := s.CompleteTask(task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	var spawnID string
	for id := range s.Snapshot().Tasks {
		if id != task.ID {
			spawnID = id
		}
	}
	if spawnID == "" {
		t.Fatal("no spawned instance found")
	}

	undo, err := s.MarkIncomplete(task.ID)
	if err != nil {
		t.Fatalf("MarkIncomplete: %v", err)
	}
	if got := len(s.Snapshot().Tasks); got != 1 {
		t.Fatalf("task count = %d after MarkIncomplete, want 1 (spawn retracted)", got)
	}

	if err := undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}

	snap := s.Snapshot()
	if got := len(snap.Tasks); got != 2 {
		t.Fatalf("task count = %d after undo, want 2 (retracted spawn restored)", got)
	}
	spawn, ok := snap.Tasks[spawnID]
	if !ok {
		t.Fatalf("restored spawn %s not found", spawnID)
	}
	nextMonday := testTime().AddDate(0, 0, 7)
	if spawn.ScheduledStart == nil || !spawn.ScheduledStart.Equal(nextMonday) {
		t.Errorf("restored spawn start = %v, want next Monday %v", spawn.ScheduledStart, nextMonday)
	}
	cfg := snap.Configs[*task.RecurringConfigID]
	if cfg.MostRecentTaskID != spawnID {
		t.Errorf("chain anchor = %s after undo, want restored spawn %s", cfg.MostRecentTaskID, spawnID)
	}
	if got, _ := s.GetTask(task.ID); got.Completed == nil {
		t.Error("anchor task not completed after undo")
	}
}

func TestDeleteTask(t *testing.T) {
	s, _ := newTestStore(t)
	task := mustCreate(t, s, CreateOpts{Title: "x", Impact: 1, Effort: 1})

	if err := s.DeleteTask(task.ID, false); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	snap := s.Snapshot()
	if snap.Tasks[task.ID].Trashed == nil {
		t.Error("Trashed = nil after delete")
	}
	if len(snap.Order) != 0 {
		t.Error("trashed task still in rank order")
	}

	if err := s.DeleteTask("tk-zzzzz", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTask(unknown) = %v, want ErrNotFound", err)
	}
}

func TestDeleteTask_ChainContinues(t *testing.T) {
	s, _ := newTestStore(t)
	task := recurringMonday(t, s)

	if err := s.DeleteTask(task.ID, false); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Order) != 1 {
		t.Fatalf("live task count = %d, want 1 (chain spawned next)", len(snap.Order))
	}
	spawn := snap.Tasks[snap.Order[0]]
	nextMonday := testTime().AddDate(0, 0, 7)
	if spawn.ScheduledStart == nil || !spawn.ScheduledStart.Equal(nextMonday) {
		t.Errorf("spawn start = %v, want %v", spawn.ScheduledStart, nextMonday)
	}
}

func TestDeleteTask_AllFutureEndsChain(t *testing.T) {
	s, _ := newTestStore(t)
	task := recurringMonday(t, s)

	if err := s.DeleteTask(task.ID, true); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Order) != 0 {
		t.Errorf("live task count = %d, want 0 (no spawn)", len(snap.Order))
	}
	if len(snap.Configs) != 0 {
		t.Error("recurring config survived all-future delete")
	}
}

func TestSetRelativePrioritization(t *testing.T) {
	s, p := newTestStore(t)
	a := mustCreate(t, s, CreateOpts{Title: "a", Impact: 1, Effort: 1})
	b := mustCreate(t, s, CreateOpts{Title: "b", Impact: 1, Effort: 1})
	c := mustCreate(t, s, CreateOpts{Title: "c", Impact: 1, Effort: 1})

	p.batches = nil
	if err := s.SetRelativePrioritization(c.ID, 2, 0); err != nil {
		t.Fatalf("SetRelativePrioritization: %v", err)
	}

	snap := s.Snapshot()
	want := []string{c.ID, a.ID, b.ID}
	for i, id := range want {
		if snap.Order[i] != id {
			t.Fatalf("order = %v, want %v", snap.Order, want)
		}
	}

	// Same multiset, no duplication or loss.
	seen := map[string]int{}
	for _, id := range snap.Order {
		seen[id]++
	}
	for _, id := range []string{a.ID, b.ID, c.ID} {
		if seen[id] != 1 {
			t.Errorf("task %s appears %d times in order, want 1", id, seen[id])
		}
	}

	// Bulk position rewrite goes out as a single batch.
	if len(p.batches) != 1 {
		t.Errorf("persisted %d batches, want 1", len(p.batches))
	}
}

func TestSetRelativePrioritization_Validation(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, CreateOpts{Title: "a", Impact: 1, Effort: 1})
	mustCreate(t, s, CreateOpts{Title: "b", Impact: 1, Effort: 1})

	if err := s.SetRelativePrioritization(a.ID, 5, 0); err == nil {
		t.Error("out-of-range from index accepted")
	}
	if err := s.SetRelativePrioritization(a.ID, 0, 9); err == nil {
		t.Error("out-of-range to index accepted")
	}
	if err := s.SetRelativePrioritization(a.ID, 1, 0); err == nil {
		t.Error("mismatched task id at from index accepted")
	}
}

func TestBlockers(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, CreateOpts{Title: "a", Impact: 1, Effort: 1})
	b := mustCreate(t, s, CreateOpts{Title: "b", Impact: 1, Effort: 1})

	if _, err := s.AddTaskBlocker(a.ID, a.ID); err == nil {
		t.Error("self-blocking accepted")
	}
	if _, err := s.AddTaskBlocker(a.ID, "tk-zzzzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown blocker target = %v, want ErrNotFound", err)
	}

	if _, err := s.AddTaskBlocker(a.ID, b.ID); err != nil {
		t.Fatalf("AddTaskBlocker: %v", err)
	}
	got, err := s.AddFreeTextBlocker(a.ID, "waiting on vendor")
	if err != nil {
		t.Fatalf("AddFreeTextBlocker: %v", err)
	}
	if len(got.Blockers) != 2 {
		t.Fatalf("blocker count = %d, want 2", len(got.Blockers))
	}
	if got.Blockers[0].Kind != models.BlockerKindTask || got.Blockers[1].Kind != models.BlockerKindFreeText {
		t.Error("blocker kinds out of order")
	}

	// Removing by index renumbers the rest contiguously.
	got, err = s.RemoveBlockerByIndex(a.ID, 0)
	if err != nil {
		t.Fatalf("RemoveBlockerByIndex: %v", err)
	}
	if len(got.Blockers) != 1 {
		t.Fatalf("blocker count = %d, want 1", len(got.Blockers))
	}
	if got.Blockers[0].Ordinal != 0 {
		t.Errorf("remaining blocker ordinal = %d, want 0", got.Blockers[0].Ordinal)
	}
	if got.Blockers[0].Value != "waiting on vendor" {
		t.Errorf("remaining blocker = %q, want free-text one", got.Blockers[0].Value)
	}

	if _, err := s.RemoveBlockerByIndex(a.ID, 5); err == nil {
		t.Error("out-of-range blocker index accepted")
	}
}

func TestSubtasks(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, CreateOpts{Title: "a", Impact: 1, Effort: 1})

	if _, err := s.AddSubtask(a.ID, ""); err == nil {
		t.Error("empty subtask title accepted")
	}

	got, err := s.AddSubtask(a.ID, "first")
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}
	if _, err := s.AddSubtask(a.ID, "second"); err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}

	subID := got.Subtasks[0].ID
	got, err = s.ToggleSubtask(a.ID, subID)
	if err != nil {
		t.Fatalf("ToggleSubtask: %v", err)
	}
	if !got.Subtasks[0].Completed {
		t.Error("subtask not completed after toggle")
	}

	got, err = s.RemoveSubtask(a.ID, subID)
	if err != nil {
		t.Fatalf("RemoveSubtask: %v", err)
	}
	if len(got.Subtasks) != 1 || got.Subtasks[0].Ordinal != 0 {
		t.Error("subtasks not renumbered after removal")
	}
}

func TestSetRecurrence_RequiresScheduledStart(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, CreateOpts{Title: "a", Impact: 1, Effort: 1})

	_, err := s.SetRecurrence(a.ID, models.UnitDay, 1, nil)
	if err == nil {
		t.Fatal("SetRecurrence without scheduled start = nil error, want error")
	}
	if !strings.Contains(err.Error(), "scheduled start") {
		t.Errorf("error = %q, want to mention scheduled start", err.Error())
	}
}

func TestSetRecurrence_MalformedConfig(t *testing.T) {
	s, _ := newTestStore(t)
	start := testTime()
	a := mustCreate(t, s, CreateOpts{Title: "a", Impact: 1, Effort: 1, ScheduledStart: &start})

	if _, err := s.SetRecurrence(a.ID, models.UnitWeek, 1, nil); err == nil {
		t.Error("week cadence with empty mask accepted")
	}
	if _, err := s.SetRecurrence(a.ID, "fortnight", 1, nil); err == nil {
		t.Error("unknown unit accepted")
	}
	if _, err := s.SetRecurrence(a.ID, models.UnitDay, 0, nil); err == nil {
		t.Error("zero amount accepted")
	}
}

func TestClearRecurrence(t *testing.T) {
	s, _ := newTestStore(t)
	task := recurringMonday(t, s)

	if err := s.ClearRecurrence(task.ID); err != nil {
		t.Fatalf("ClearRecurrence: %v", err)
	}

	got, _ := s.GetTask(task.ID)
	if got.RecurringConfigID != nil {
		t.Error("RecurringConfigID not cleared")
	}
	if len(s.Snapshot().Configs) != 0 {
		t.Error("config not deleted when chain anchor cleared recurrence")
	}
}

func TestPurgeTrashed(t *testing.T) {
	p := &recordingPersister{}
	current := testTime()
	s := New(Opts{Persister: p, Now: func() time.Time { return current }})

	a, _ := s.CreateTask(CreateOpts{Title: "old", Impact: 1, Effort: 1})
	b, _ := s.CreateTask(CreateOpts{Title: "fresh", Impact: 1, Effort: 1})

	if err := s.DeleteTask(a.ID, false); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	current = current.Add(40 * 24 * time.Hour)
	if err := s.DeleteTask(b.ID, false); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	if got := s.PurgeTrashed(30 * 24 * time.Hour); got != 1 {
		t.Fatalf("PurgeTrashed = %d, want 1", got)
	}

	snap := s.Snapshot()
	if _, ok := snap.Tasks[a.ID]; ok {
		t.Error("old trashed task survived purge")
	}
	if _, ok := snap.Tasks[b.ID]; !ok {
		t.Error("recently trashed task purged too early")
	}

	if got := s.PurgeTrashed(30 * 24 * time.Hour); got != 0 {
		t.Errorf("second PurgeTrashed = %d, want 0", got)
	}
}

func TestHydrate_RebuildsOrderFromPositions(t *testing.T) {
	s, _ := newTestStore(t)

	trashedAt := testTime()
	tasks := []models.Task{
		{ID: "tk-ccccc", Title: "c", Position: 2, CreatedAt: testTime()},
		{ID: "tk-aaaaa", Title: "a", Position: 0, CreatedAt: testTime()},
		{ID: "tk-bbbbb", Title: "b", Position: 1, CreatedAt: testTime()},
		{ID: "tk-ddddd", Title: "d", Position: 3, Trashed: &trashedAt, CreatedAt: testTime()},
	}
	s.Hydrate(tasks, nil)

	snap := s.Snapshot()
	want := []string{"tk-aaaaa", "tk-bbbbb", "tk-ccccc"}
	if len(snap.Order) != len(want) {
		t.Fatalf("order = %v, want %v", snap.Order, want)
	}
	for i, id := range want {
		if snap.Order[i] != id {
			t.Fatalf("order = %v, want %v", snap.Order, want)
		}
	}
	if _, ok := snap.Tasks["tk-ddddd"]; !ok {
		t.Error("trashed task missing from collection after hydrate")
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, CreateOpts{Title: "a", Impact: 1, Effort: 1})

	snap := s.Snapshot()
	snap.Tasks[a.ID].Title = "mutated"
	snap.Order[0] = "bogus"

	got, _ := s.GetTask(a.ID)
	if got.Title != "a" {
		t.Error("snapshot mutation leaked into store")
	}
	if s.Snapshot().Order[0] != a.ID {
		t.Error("snapshot order mutation leaked into store")
	}
}
