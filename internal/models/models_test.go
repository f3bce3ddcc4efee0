package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestTask_Fields(t *testing.T) {
	typ := reflect.TypeOf(Task{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "Title", "not null")
	assertGormTag(t, typ, "Description", "type:text")
	assertGormTag(t, typ, "Score", "index")
	assertGormTag(t, typ, "Position", "index")
	assertGormTag(t, typ, "Completed", "index")
	assertGormTag(t, typ, "Trashed", "index")
	assertGormTag(t, typ, "RecurringConfigID", "size:32")

	assertFieldType(t, typ, "ID", "string")
	assertFieldType(t, typ, "Impact", "int")
	assertFieldType(t, typ, "Effort", "int")
	assertFieldType(t, typ, "Score", "int")
	assertFieldType(t, typ, "Completed", "*time.Time")
	assertFieldType(t, typ, "Due", "*time.Time")
	assertFieldType(t, typ, "ScheduledStart", "*time.Time")
	assertFieldType(t, typ, "SnoozedUntil", "*time.Time")
	assertFieldType(t, typ, "Trashed", "*time.Time")
	assertFieldType(t, typ, "RecurringConfigID", "*string")
	assertFieldType(t, typ, "CreatedAt", "time.Time")
	assertFieldType(t, typ, "UpdatedAt", "time.Time")
}

func TestTask_Relations(t *testing.T) {
	typ := reflect.TypeOf(Task{})

	assertGormTag(t, typ, "Blockers", "foreignKey:TaskID")
	assertGormTag(t, typ, "Subtasks", "foreignKey:TaskID")

	assertFieldType(t, typ, "Blockers", "[]models.TaskBlocker")
	assertFieldType(t, typ, "Subtasks", "[]models.Subtask")
}

func TestTaskBlocker_Fields(t *testing.T) {
	typ := reflect.TypeOf(TaskBlocker{})

	assertGormTag(t, typ, "TaskID", "primaryKey")
	assertGormTag(t, typ, "Ordinal", "primaryKey")
	assertGormTag(t, typ, "Kind", "size:16")
	assertGormTag(t, typ, "Kind", "default:task")

	assertFieldType(t, typ, "BlockerTaskID", "*string")
	assertFieldType(t, typ, "Value", "string")
}

func TestRecurringConfig_WeekdayMask(t *testing.T) {
	var cfg RecurringConfig

	days := []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
	for _, d := range days {
		if cfg.ActiveOn(d) {
			t.Errorf("zero-value config: ActiveOn(%s) = true, want false", d)
		}
	}

	cfg.SetWeekday(time.Monday, true)
	cfg.SetWeekday(time.Friday, true)

	if !cfg.ActiveOn(time.Monday) {
		t.Error("ActiveOn(Monday) = false after SetWeekday(Monday, true)")
	}
	if !cfg.ActiveOn(time.Friday) {
		t.Error("ActiveOn(Friday) = false after SetWeekday(Friday, true)")
	}
	if cfg.ActiveOn(time.Tuesday) {
		t.Error("ActiveOn(Tuesday) = true, want false")
	}
	if got := cfg.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount() = %d, want 2", got)
	}

	cfg.SetWeekday(time.Monday, false)
	if cfg.ActiveOn(time.Monday) {
		t.Error("ActiveOn(Monday) = true after SetWeekday(Monday, false)")
	}
	if got := cfg.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount() = %d, want 1", got)
	}
}
