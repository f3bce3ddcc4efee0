// Package persist writes store mutation batches to the database in the
// background. Writes are optimistic: the in-memory store has already
// applied the change, so a failed write is reported via the notifier
// rather than surfaced to the caller.
package persist

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"

	"github.com/quatroapp/quatro/internal/models"
	"github.com/quatroapp/quatro/internal/notify"
	"github.com/quatroapp/quatro/internal/store"
)

// queueSize bounds the pending batch queue. A full queue falls back to a
// synchronous write so nothing is dropped.
const queueSize = 256

// Store is a gorm-backed store.Persister. Batches are applied in order by
// a single background goroutine, each batch in one transaction.
type Store struct {
	db       *gorm.DB
	notifier notify.Notifier

	queue chan []store.Mutation
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Opts holds parameters for creating a persist Store.
type Opts struct {
	DB       *gorm.DB
	Notifier notify.Notifier // optional; defaults to notify.Log
}

// New creates the persister and starts its background writer.
func New(opts Opts) *Store {
	n := opts.Notifier
	if n == nil {
		n = notify.Log{}
	}
	p := &Store{
		db:       opts.DB,
		notifier: n,
		queue:    make(chan []store.Mutation, queueSize),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Persist enqueues a batch for background writing. It never blocks on the
// database; if the queue is full the batch is written inline.
func (p *Store) Persist(batch []store.Mutation) {
	if len(batch) == 0 {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.apply(batch)
		return
	}
	p.mu.Unlock()

	select {
	case p.queue <- batch:
	default:
		p.apply(batch)
	}
}

// Close drains pending batches and stops the background writer.
func (p *Store) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.queue)
	p.wg.Wait()
}

func (p *Store) run() {
	defer p.wg.Done()
	for batch := range p.queue {
		p.apply(batch)
	}
}

// apply writes one batch in a single transaction and reports failures.
func (p *Store) apply(batch []store.Mutation) {
	err := p.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range batch {
			if err := applyMutation(tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("persist: batch of %d failed: %v", len(batch), err)
		p.notifier.Notify(context.Background(), notify.Event{
			Title:    "Database write failed",
			Body:     err.Error(),
			Severity: notify.SeverityError,
		})
	}
}

func applyMutation(tx *gorm.DB, m store.Mutation) error {
	switch m.Entity {
	case store.EntityTask:
		return applyTaskMutation(tx, m)
	case store.EntityConfig:
		return applyConfigMutation(tx, m)
	default:
		return fmt.Errorf("persist: unknown entity %q", m.Entity)
	}
}

func applyTaskMutation(tx *gorm.DB, m store.Mutation) error {
	switch m.Op {
	case store.OpCreate:
		if err := tx.Create(m.Task).Error; err != nil {
			return fmt.Errorf("persist: create task %s: %w", m.ID, err)
		}
	case store.OpUpdate:
		if err := tx.Model(&models.Task{}).Where("id = ?", m.ID).Updates(m.Fields).Error; err != nil {
			return fmt.Errorf("persist: update task %s: %w", m.ID, err)
		}
	case store.OpSave:
		// Associations are replaced wholesale so ordinals stay contiguous.
		if err := tx.Where("task_id = ?", m.ID).Delete(&models.TaskBlocker{}).Error; err != nil {
			return fmt.Errorf("persist: clear blockers for %s: %w", m.ID, err)
		}
		if err := tx.Where("task_id = ?", m.ID).Delete(&models.Subtask{}).Error; err != nil {
			return fmt.Errorf("persist: clear subtasks for %s: %w", m.ID, err)
		}
		if err := tx.Save(m.Task).Error; err != nil {
			return fmt.Errorf("persist: save task %s: %w", m.ID, err)
		}
		for i := range m.Task.Blockers {
			if err := tx.Create(&m.Task.Blockers[i]).Error; err != nil {
				return fmt.Errorf("persist: save blocker %s/%d: %w", m.ID, i, err)
			}
		}
		for i := range m.Task.Subtasks {
			if err := tx.Create(&m.Task.Subtasks[i]).Error; err != nil {
				return fmt.Errorf("persist: save subtask %s/%d: %w", m.ID, i, err)
			}
		}
	case store.OpDelete:
		if err := tx.Where("task_id = ?", m.ID).Delete(&models.TaskBlocker{}).Error; err != nil {
			return fmt.Errorf("persist: delete blockers for %s: %w", m.ID, err)
		}
		if err := tx.Where("task_id = ?", m.ID).Delete(&models.Subtask{}).Error; err != nil {
			return fmt.Errorf("persist: delete subtasks for %s: %w", m.ID, err)
		}
		if err := tx.Where("id = ?", m.ID).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("persist: delete task %s: %w", m.ID, err)
		}
	default:
		return fmt.Errorf("persist: unknown op %q", m.Op)
	}
	return nil
}

func applyConfigMutation(tx *gorm.DB, m store.Mutation) error {
	switch m.Op {
	case store.OpCreate:
		if err := tx.Create(m.Config).Error; err != nil {
			return fmt.Errorf("persist: create config %s: %w", m.ID, err)
		}
	case store.OpSave:
		if err := tx.Save(m.Config).Error; err != nil {
			return fmt.Errorf("persist: save config %s: %w", m.ID, err)
		}
	case store.OpDelete:
		if err := tx.Where("id = ?", m.ID).Delete(&models.RecurringConfig{}).Error; err != nil {
			return fmt.Errorf("persist: delete config %s: %w", m.ID, err)
		}
	default:
		return fmt.Errorf("persist: unknown op %q for config", m.Op)
	}
	return nil
}

// LoadSnapshot reads all tasks and recurring configs for store hydration.
// Tasks come back ordered by position with associations preloaded.
func LoadSnapshot(db *gorm.DB) ([]models.Task, []models.RecurringConfig, error) {
	var tasks []models.Task
	err := db.Preload("Blockers").Preload("Subtasks").
		Order("position asc").Find(&tasks).Error
	if err != nil {
		return nil, nil, fmt.Errorf("persist: load tasks: %w", err)
	}

	var configs []models.RecurringConfig
	if err := db.Find(&configs).Error; err != nil {
		return nil, nil, fmt.Errorf("persist: load configs: %w", err)
	}

	return tasks, configs, nil
}
