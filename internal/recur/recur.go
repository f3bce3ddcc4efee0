// Package recur computes recurrence descriptions, preset matching, and next
// occurrence dates for recurring task configs.
package recur

import (
	"fmt"
	"strings"
	"time"

	"github.com/quatroapp/quatro/internal/models"
)

// Preset keys returned by MatchPreset. The empty string means no config;
// PresetCustom means a config that matches no preset shape.
const (
	PresetEveryDay = "everyDay"
	PresetWeekdays = "weekdays"
	PresetWeekly   = "weekly"
	PresetMonthly  = "monthly"
	PresetCustom   = "custom"
)

// describeOrder is the weekday listing order for Describe.
var describeOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Validate checks that a config is well formed: a known unit, a positive
// amount, and for week units at least one active weekday. Malformed configs
// never silently default to a no-op cadence.
func Validate(cfg *models.RecurringConfig) error {
	if cfg == nil {
		return fmt.Errorf("recur: config is nil")
	}
	switch cfg.Unit {
	case models.UnitDay, models.UnitWeek, models.UnitMonth:
	default:
		return fmt.Errorf("recur: unknown unit %q", cfg.Unit)
	}
	if cfg.Amount < 1 {
		return fmt.Errorf("recur: amount must be positive, got %d", cfg.Amount)
	}
	if cfg.Unit == models.UnitWeek && cfg.ActiveCount() == 0 {
		return fmt.Errorf("recur: week config has no active weekdays")
	}
	return nil
}

// Describe renders a config as a human-readable phrase like "Every day",
// "Every 3 days", "Every Monday, Tuesday and Wednesday" or
// "Every weekday (Monday to Friday) every 2 weeks". A nil config yields
// the empty string.
func Describe(cfg *models.RecurringConfig) string {
	if cfg == nil {
		return ""
	}

	var phrase string
	switch cfg.Unit {
	case models.UnitDay:
		if cfg.Amount == 1 {
			phrase = "day"
		} else {
			phrase = fmt.Sprintf("%d days", cfg.Amount)
		}
	case models.UnitWeek:
		phrase = describeWeekly(cfg)
	case models.UnitMonth:
		if cfg.Amount == 1 {
			phrase = "month"
		} else {
			phrase = fmt.Sprintf("%d months", cfg.Amount)
		}
	default:
		return ""
	}

	return "Every " + phrase
}

func describeWeekly(cfg *models.RecurringConfig) string {
	var phrase string
	switch {
	case cfg.ActiveCount() == 7:
		// All seven days flagged is effectively daily.
		phrase = "day"
	case isWeekdaysOnly(cfg):
		phrase = "weekday (Monday to Friday)"
	default:
		names := make([]string, 0, 7)
		for _, d := range describeOrder {
			if cfg.ActiveOn(d) {
				names = append(names, d.String())
			}
		}
		phrase = joinWithAnd(names)
	}

	if cfg.Amount != 1 {
		phrase += fmt.Sprintf(" every %d weeks", cfg.Amount)
	}
	return phrase
}

// joinWithAnd joins names with commas and a final " and " before the last.
func joinWithAnd(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func isWeekdaysOnly(cfg *models.RecurringConfig) bool {
	return cfg.Mon && cfg.Tue && cfg.Wed && cfg.Thu && cfg.Fri && !cfg.Sat && !cfg.Sun
}

// Preset pairs a preset key with its canonical config shape.
type Preset struct {
	Key    string
	Config models.RecurringConfig
}

// Presets returns the fixed preset table for a reference date: every day,
// weekdays Mon-Fri, weekly on the reference weekday, and monthly on the
// reference day-of-month.
func Presets(ref time.Time) []Preset {
	weekly := models.RecurringConfig{Unit: models.UnitWeek, Amount: 1}
	weekly.SetWeekday(ref.Weekday(), true)

	return []Preset{
		{Key: PresetEveryDay, Config: models.RecurringConfig{Unit: models.UnitDay, Amount: 1}},
		{Key: PresetWeekdays, Config: models.RecurringConfig{
			Unit: models.UnitWeek, Amount: 1,
			Mon: true, Tue: true, Wed: true, Thu: true, Fri: true,
		}},
		{Key: PresetWeekly, Config: weekly},
		{Key: PresetMonthly, Config: models.RecurringConfig{Unit: models.UnitMonth, Amount: 1}},
	}
}

// MatchPreset compares a config's normalized shape against the preset table
// for the reference date. Returns "" for a nil config, the matching preset
// key, or PresetCustom when non-nil but unmatched.
func MatchPreset(cfg *models.RecurringConfig, ref time.Time) string {
	if cfg == nil {
		return ""
	}
	for _, p := range Presets(ref) {
		if sameShape(cfg, &p.Config) {
			return p.Key
		}
	}
	return PresetCustom
}

// sameShape compares unit, amount, and the weekday mask structurally.
func sameShape(a, b *models.RecurringConfig) bool {
	if a.Unit != b.Unit || a.Amount != b.Amount {
		return false
	}
	for _, d := range describeOrder {
		if a.ActiveOn(d) != b.ActiveOn(d) {
			return false
		}
	}
	return true
}

// NextOccurrence advances after by one cadence step: day units add amount
// days, week units find the next flagged weekday strictly after (skipping
// amount-1 whole weeks at each week boundary), month units add amount
// months clamping to the last day of short months. Malformed configs return
// an error.
func NextOccurrence(cfg *models.RecurringConfig, after time.Time) (time.Time, error) {
	if err := Validate(cfg); err != nil {
		return time.Time{}, err
	}

	switch cfg.Unit {
	case models.UnitDay:
		return after.AddDate(0, 0, cfg.Amount), nil
	case models.UnitWeek:
		return nextWeekly(cfg, after), nil
	default:
		return nextMonthly(after, cfg.Amount), nil
	}
}

// nextWeekly scans the rest of after's week (weeks start on Sunday) for a
// flagged weekday; failing that it jumps amount-1 whole weeks forward and
// scans the following week. Validate guarantees the mask is non-empty, so
// the second scan always hits.
func nextWeekly(cfg *models.RecurringConfig, after time.Time) time.Time {
	d := after.AddDate(0, 0, 1)
	for d.Weekday() != time.Sunday {
		if cfg.ActiveOn(d.Weekday()) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}

	d = d.AddDate(0, 0, 7*(cfg.Amount-1))
	for i := 0; i < 7; i++ {
		if cfg.ActiveOn(d.Weekday()) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// nextMonthly adds months preserving the day-of-month, clamping to the last
// day of the target month when it is shorter. Jan 31 + 1 month = Feb 28/29,
// not Mar 2/3; rolling over would drift the anchor day for the rest of the
// chain.
func nextMonthly(after time.Time, months int) time.Time {
	y, m, day := after.Date()
	hh, mm, ss := after.Clock()

	first := time.Date(y, m+time.Month(months), 1, hh, mm, ss, after.Nanosecond(), after.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hh, mm, ss, after.Nanosecond(), after.Location())
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
