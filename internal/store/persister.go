package store

import "github.com/quatroapp/quatro/internal/models"

// Mutation operations.
const (
	OpCreate = "create" // full record insert
	OpUpdate = "update" // partial field update
	OpSave   = "save"   // full record rewrite including associations
	OpDelete = "delete" // permanent removal
)

// Entity kinds carried by mutations.
const (
	EntityTask   = "task"
	EntityConfig = "recurring_config"
)

// Mutation is one durable write produced by a store operation. The store
// applies mutations to memory first; the persister writes them to the
// backing database afterward, fire-and-forget.
type Mutation struct {
	Op     string
	Entity string
	ID     string

	Fields map[string]any          // OpUpdate payload
	Task   *models.Task            // OpCreate/OpSave task record
	Config *models.RecurringConfig // OpCreate/OpSave config record
}

// Persister receives mutation batches for durable storage. One batch is one
// logical write: a multi-entity store operation (complete + spawn, bulk
// re-rank) arrives as a single batch. Persist must not block the caller.
type Persister interface {
	Persist(batch []Mutation)
}

// taskUpdate builds a partial-update mutation for a task.
func taskUpdate(id string, fields map[string]any) Mutation {
	return Mutation{Op: OpUpdate, Entity: EntityTask, ID: id, Fields: fields}
}

// taskCreate builds a create mutation carrying a full task copy.
func taskCreate(t *models.Task) Mutation {
	return Mutation{Op: OpCreate, Entity: EntityTask, ID: t.ID, Task: cloneTask(t)}
}

// taskSave builds a full-rewrite mutation for a task whose associations
// (blockers, subtasks) changed.
func taskSave(t *models.Task) Mutation {
	return Mutation{Op: OpSave, Entity: EntityTask, ID: t.ID, Task: cloneTask(t)}
}

// taskDelete builds a permanent-removal mutation for a task.
func taskDelete(id string) Mutation {
	return Mutation{Op: OpDelete, Entity: EntityTask, ID: id}
}

// configCreate builds a create mutation carrying a full config copy.
func configCreate(c *models.RecurringConfig) Mutation {
	cc := *c
	return Mutation{Op: OpCreate, Entity: EntityConfig, ID: c.ID, Config: &cc}
}

// configSave builds a full-rewrite mutation for a config.
func configSave(c *models.RecurringConfig) Mutation {
	cc := *c
	return Mutation{Op: OpSave, Entity: EntityConfig, ID: c.ID, Config: &cc}
}

// configDelete builds a permanent-removal mutation for a config.
func configDelete(id string) Mutation {
	return Mutation{Op: OpDelete, Entity: EntityConfig, ID: id}
}
