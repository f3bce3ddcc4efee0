package dashboard

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quatroapp/quatro/internal/models"
	"github.com/quatroapp/quatro/internal/recur"
	"github.com/quatroapp/quatro/internal/store"
)

// registerRoutes sets up the JSON API consumed by the presentation layer.
func registerRoutes(router *gin.Engine, st *store.Store, nowLimit int) {
	router.GET("/api/sections", handleSections(st, nowLimit))
	router.GET("/api/tasks", handleTaskList(st))
	router.GET("/api/tasks/:id", handleTaskDetail(st))
	router.GET("/api/events", handleSSE(st))
}

// blockerView is the wire shape of one blocked-by entry.
type blockerView struct {
	Kind   string `json:"kind"`
	TaskID string `json:"taskId,omitempty"`
	Value  string `json:"value,omitempty"`
}

// subtaskView is the wire shape of one checklist item.
type subtaskView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// taskView is the wire shape of a task, including the derived recurrence
// description.
type taskView struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Impact         int           `json:"impact"`
	Effort         int           `json:"effort"`
	Score          int           `json:"score"`
	Completed      *time.Time    `json:"completed,omitempty"`
	Due            *time.Time    `json:"due,omitempty"`
	ScheduledStart *time.Time    `json:"scheduledStart,omitempty"`
	SnoozedUntil   *time.Time    `json:"snoozedUntil,omitempty"`
	Blockers       []blockerView `json:"blockedBy,omitempty"`
	Subtasks       []subtaskView `json:"subtasks,omitempty"`
	Recurrence     string        `json:"recurrence,omitempty"`
}

// viewOf converts a task to its wire shape, resolving the recurrence
// description from the config collection.
func viewOf(t *models.Task, configs map[string]*models.RecurringConfig) taskView {
	v := taskView{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Impact:         t.Impact,
		Effort:         t.Effort,
		Score:          t.Score,
		Completed:      t.Completed,
		Due:            t.Due,
		ScheduledStart: t.ScheduledStart,
		SnoozedUntil:   t.SnoozedUntil,
	}
	for _, b := range t.Blockers {
		bv := blockerView{Kind: b.Kind, Value: b.Value}
		if b.BlockerTaskID != nil {
			bv.TaskID = *b.BlockerTaskID
		}
		v.Blockers = append(v.Blockers, bv)
	}
	for _, st := range t.Subtasks {
		v.Subtasks = append(v.Subtasks, subtaskView{ID: st.ID, Title: st.Title, Completed: st.Completed})
	}
	if t.RecurringConfigID != nil {
		v.Recurrence = recur.Describe(configs[*t.RecurringConfigID])
	}
	return v
}

func viewsOf(tasks []*models.Task, configs map[string]*models.RecurringConfig) []taskView {
	views := make([]taskView, len(tasks))
	for i, t := range tasks {
		views[i] = viewOf(t, configs)
	}
	return views
}

func handleSections(st *store.Store, nowLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := st.Snapshot()
		sec := Classify(snap, time.Now(), nowLimit)
		c.JSON(http.StatusOK, gin.H{
			"version":   snap.Version,
			"now":       viewsOf(sec.Now, snap.Configs),
			"next":      viewsOf(sec.Next, snap.Configs),
			"scheduled": viewsOf(sec.Scheduled, snap.Configs),
			"blocked":   viewsOf(sec.Blocked, snap.Configs),
			"completed": viewsOf(sec.Completed, snap.Configs),
		})
	}
}

func handleTaskList(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := st.Snapshot()
		result := make([]string, len(snap.Order))
		copy(result, snap.Order)

		entities := make(map[string]taskView, len(snap.Tasks))
		for id, t := range snap.Tasks {
			if t.Trashed != nil {
				continue
			}
			entities[id] = viewOf(t, snap.Configs)
		}
		c.JSON(http.StatusOK, gin.H{
			"result":   result,
			"entities": entities,
		})
	}
}

func handleTaskDetail(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		t, err := st.GetTask(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		// Trashed tasks are invisible to every dashboard view.
		if t.Trashed != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "task " + id + " not found"})
			return
		}
		snap := st.Snapshot()
		c.JSON(http.StatusOK, viewOf(t, snap.Configs))
	}
}
