package models

import "time"

// Blocker kinds. A task blocker either points at another task or carries
// free text describing an external dependency.
const (
	BlockerKindTask     = "task"
	BlockerKindFreeText = "freetext"
)

// Task is the core work item in Quatro.
type Task struct {
	ID          string `gorm:"primaryKey;size:32"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Impact      int    `gorm:"default:0"`
	Effort      int    `gorm:"default:0"`
	Score       int    `gorm:"index"`
	Position    int    `gorm:"index"`

	Completed      *time.Time `gorm:"index"`
	Due            *time.Time
	ScheduledStart *time.Time
	SnoozedUntil   *time.Time
	Trashed        *time.Time `gorm:"index"`

	RecurringConfigID *string `gorm:"size:32;index"`

	CalendarBlockCalendarID string `gorm:"size:128"`
	CalendarBlockStart      *time.Time
	CalendarBlockEnd        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Blockers []TaskBlocker `gorm:"foreignKey:TaskID"`
	Subtasks []Subtask     `gorm:"foreignKey:TaskID"`
}

// TaskBlocker is one entry in a task's ordered blocked-by list.
// Ordinal positions are contiguous starting at 0.
type TaskBlocker struct {
	TaskID  string `gorm:"primaryKey;size:32"`
	Ordinal int    `gorm:"primaryKey"`
	Kind    string `gorm:"size:16;default:task"`

	BlockerTaskID *string `gorm:"size:32"`
	Value         string  `gorm:"type:text"`
}

// Subtask is a checklist item belonging to a task.
type Subtask struct {
	ID        string `gorm:"primaryKey;size:32"`
	TaskID    string `gorm:"size:32;index"`
	Ordinal   int
	Title     string `gorm:"not null"`
	Completed bool   `gorm:"default:false"`
}
