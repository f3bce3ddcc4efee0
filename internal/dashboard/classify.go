// Package dashboard derives the dashboard section membership from the task
// collection and serves it over HTTP.
package dashboard

import (
	"sort"
	"time"

	"github.com/quatroapp/quatro/internal/models"
	"github.com/quatroapp/quatro/internal/store"
)

// DefaultNowLimit is the hard capacity of the Now section; overflow
// continues into Next in the same rank order.
const DefaultNowLimit = 4

// Sections holds the derived, ordered membership of each dashboard tab.
// It is recomputed from a snapshot on every read; nothing here is stored.
type Sections struct {
	Now       []*models.Task
	Next      []*models.Task
	Scheduled []*models.Task
	Blocked   []*models.Task
	Completed []*models.Task
}

// Classify buckets every non-trashed task into exactly one section:
//
//   - Completed: completed timestamp set, oldest first.
//   - Blocked: any unresolved blocker, score descending. Blocked wins over
//     Scheduled when a task qualifies for both.
//   - Scheduled: scheduled start set, soonest first.
//   - Now/Next: the remaining pool in manual rank order (score descending
//     for unranked tasks), split at nowLimit.
//
// Tasks snoozed past now are suppressed from Now/Next until the snooze
// expires. Equal scores break ties by ascending id so ordering is
// deterministic.
func Classify(snap *store.Snapshot, now time.Time, nowLimit int) Sections {
	if nowLimit <= 0 {
		nowLimit = DefaultNowLimit
	}

	var s Sections
	var pool []*models.Task

	for _, t := range snap.Tasks {
		if t.Trashed != nil {
			continue
		}
		if t.Completed != nil {
			s.Completed = append(s.Completed, t)
			continue
		}
		pool = append(pool, t)
	}

	sort.Slice(s.Completed, func(i, j int) bool {
		if !s.Completed[i].Completed.Equal(*s.Completed[j].Completed) {
			return s.Completed[i].Completed.Before(*s.Completed[j].Completed)
		}
		return s.Completed[i].ID < s.Completed[j].ID
	})

	var ranked []*models.Task
	for _, t := range pool {
		switch {
		case isBlocked(t, snap.Tasks):
			s.Blocked = append(s.Blocked, t)
		case t.ScheduledStart != nil:
			s.Scheduled = append(s.Scheduled, t)
		case t.SnoozedUntil != nil && t.SnoozedUntil.After(now):
			// Suppressed until the snooze expires.
		default:
			ranked = append(ranked, t)
		}
	}

	sort.Slice(s.Blocked, func(i, j int) bool {
		if s.Blocked[i].Score != s.Blocked[j].Score {
			return s.Blocked[i].Score > s.Blocked[j].Score
		}
		return s.Blocked[i].ID < s.Blocked[j].ID
	})
	sort.Slice(s.Scheduled, func(i, j int) bool {
		if !s.Scheduled[i].ScheduledStart.Equal(*s.Scheduled[j].ScheduledStart) {
			return s.Scheduled[i].ScheduledStart.Before(*s.Scheduled[j].ScheduledStart)
		}
		return s.Scheduled[i].ID < s.Scheduled[j].ID
	})

	sortByRank(ranked, snap.Order)

	if len(ranked) > nowLimit {
		s.Now = ranked[:nowLimit]
		s.Next = ranked[nowLimit:]
	} else {
		s.Now = ranked
	}
	return s
}

// sortByRank orders tasks by their position in the manual rank order.
// Tasks missing from the order fall back to score descending (id ascending
// on ties) and sort after every ranked task.
func sortByRank(tasks []*models.Task, order []string) {
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}

	sort.Slice(tasks, func(i, j int) bool {
		ri, iOK := rank[tasks[i].ID]
		rj, jOK := rank[tasks[j].ID]
		switch {
		case iOK && jOK:
			return ri < rj
		case iOK:
			return true
		case jOK:
			return false
		}
		if tasks[i].Score != tasks[j].Score {
			return tasks[i].Score > tasks[j].Score
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// isBlocked reports whether any blocker is unresolved: free-text blockers
// block until removed, task blockers block while the target task is live
// and uncompleted. A trashed or purged target no longer blocks.
func isBlocked(t *models.Task, tasks map[string]*models.Task) bool {
	for _, b := range t.Blockers {
		switch b.Kind {
		case models.BlockerKindFreeText:
			return true
		case models.BlockerKindTask:
			if b.BlockerTaskID == nil {
				continue
			}
			target, ok := tasks[*b.BlockerTaskID]
			if ok && target.Completed == nil && target.Trashed == nil {
				return true
			}
		}
	}
	return false
}
