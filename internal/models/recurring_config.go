package models

import "time"

// Recurrence units.
const (
	UnitDay   = "day"
	UnitWeek  = "week"
	UnitMonth = "month"
)

// RecurringConfig describes a repeat cadence shared by a chain of task
// instances over time. Weekday flags are meaningful only for UnitWeek.
type RecurringConfig struct {
	ID     string `gorm:"primaryKey;size:32"`
	Unit   string `gorm:"size:8;not null"`
	Amount int    `gorm:"default:1"`

	Mon bool
	Tue bool
	Wed bool
	Thu bool
	Fri bool
	Sat bool
	Sun bool

	// MostRecentTaskID is the instance that drives the next spawn.
	MostRecentTaskID string `gorm:"size:32;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveOn reports whether the given weekday is flagged in the mask.
func (c *RecurringConfig) ActiveOn(d time.Weekday) bool {
	switch d {
	case time.Monday:
		return c.Mon
	case time.Tuesday:
		return c.Tue
	case time.Wednesday:
		return c.Wed
	case time.Thursday:
		return c.Thu
	case time.Friday:
		return c.Fri
	case time.Saturday:
		return c.Sat
	case time.Sunday:
		return c.Sun
	}
	return false
}

// SetWeekday flags or unflags a weekday in the mask.
func (c *RecurringConfig) SetWeekday(d time.Weekday, on bool) {
	switch d {
	case time.Monday:
		c.Mon = on
	case time.Tuesday:
		c.Tue = on
	case time.Wednesday:
		c.Wed = on
	case time.Thursday:
		c.Thu = on
	case time.Friday:
		c.Fri = on
	case time.Saturday:
		c.Sat = on
	case time.Sunday:
		c.Sun = on
	}
}

// ActiveCount returns how many weekdays are flagged.
func (c *RecurringConfig) ActiveCount() int {
	n := 0
	for _, on := range []bool{c.Mon, c.Tue, c.Wed, c.Thu, c.Fri, c.Sat, c.Sun} {
		if on {
			n++
		}
	}
	return n
}
