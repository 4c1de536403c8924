// Package period resolves named calendar presets ("last working week",
// "month to date", ...) into concrete half-open date ranges. Every function
// is pure given now; nothing here reads a system clock.
package period

import (
	"strings"
	"time"

	"reportsql/internal/domain"
)

// Preset names a calendar-relative date range.
type Preset string

// Presets.
const (
	Today                   Preset = "today"
	Yesterday               Preset = "yesterday"
	LastWorkingDay          Preset = "last_working_day"
	DayBeforeLastWorkingDay Preset = "day_before_last_working_day"
	ThisWeek                Preset = "this_week"
	LastWeek                Preset = "last_week"
	WeekBeforeLast          Preset = "week_before_last"
	LastWorkingWeek         Preset = "last_working_week"
	ThisMonth               Preset = "this_month"
	LastMonth               Preset = "last_month"
	ThisQuarter             Preset = "this_quarter"
	LastQuarter             Preset = "last_quarter"
	ThisYear                Preset = "this_year"
	LastYear                Preset = "last_year"
	MonthToDate             Preset = "mtd"
	QuarterToDate           Preset = "qtd"
	YearToDate              Preset = "ytd"
)

// Presets returns every known preset in stable order.
func Presets() []Preset {
	return []Preset{
		Today, Yesterday, LastWorkingDay, DayBeforeLastWorkingDay,
		ThisWeek, LastWeek, WeekBeforeLast, LastWorkingWeek,
		ThisMonth, LastMonth, ThisQuarter, LastQuarter,
		ThisYear, LastYear, MonthToDate, QuarterToDate, YearToDate,
	}
}

// ParsePreset resolves a preset name.
func ParsePreset(name string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Presets() {
		if p == known {
			return p, nil
		}
	}
	return "", domain.ErrValidation("unknown period preset %q", name)
}

// WeekendDefinition names which two weekdays count as the weekend.
type WeekendDefinition string

// Weekend definitions.
const (
	WeekendSatSun WeekendDefinition = "sat_sun"
	WeekendFriSat WeekendDefinition = "fri_sat"
)

// Contains reports whether d is a weekend day under this definition.
func (w WeekendDefinition) Contains(d time.Weekday) bool {
	switch w {
	case WeekendFriSat:
		return d == time.Friday || d == time.Saturday
	default:
		return d == time.Saturday || d == time.Sunday
	}
}

// ParseWeekend resolves a weekend definition name.
func ParseWeekend(name string) (WeekendDefinition, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sat_sun", "satsun":
		return WeekendSatSun, nil
	case "fri_sat", "frisat":
		return WeekendFriSat, nil
	}
	return "", domain.ErrValidation("unknown weekend definition %q", name)
}

// ParseWeekday resolves a week-start day name ("MON", "sunday", ...).
func ParseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mon", "monday":
		return time.Monday, nil
	case "tue", "tuesday":
		return time.Tuesday, nil
	case "wed", "wednesday":
		return time.Wednesday, nil
	case "thu", "thursday":
		return time.Thursday, nil
	case "fri", "friday":
		return time.Friday, nil
	case "sat", "saturday":
		return time.Saturday, nil
	case "sun", "sunday":
		return time.Sunday, nil
	}
	return time.Monday, domain.ErrValidation("unknown weekday %q", name)
}

// Calendar carries the configurable calendar rules. Both values are explicit
// parameters everywhere; nothing reads them from ambient state.
type Calendar struct {
	WeekStartDay time.Weekday
	Weekend      WeekendDefinition
}

// DefaultCalendar is Monday week start with a Saturday/Sunday weekend.
func DefaultCalendar() Calendar {
	return Calendar{WeekStartDay: time.Monday, Weekend: WeekendSatSun}
}

// Range is a half-open date range [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// StartDate renders the inclusive start as YYYY-MM-DD.
func (r Range) StartDate() string { return r.Start.Format("2006-01-02") }

// EndDate renders the exclusive end as YYYY-MM-DD.
func (r Range) EndDate() string { return r.End.Format("2006-01-02") }

// Resolve maps a preset to a concrete half-open range relative to now.
func Resolve(p Preset, now time.Time, cal Calendar) (Range, error) {
	day := midnight(now)

	switch p {
	case Today:
		return Range{Start: day, End: day.AddDate(0, 0, 1)}, nil

	case Yesterday:
		return Range{Start: day.AddDate(0, 0, -1), End: day}, nil

	case LastWorkingDay:
		d := walkBackWorking(day.AddDate(0, 0, -1), cal.Weekend)
		return Range{Start: d, End: d.AddDate(0, 0, 1)}, nil

	case DayBeforeLastWorkingDay:
		d := walkBackWorking(day.AddDate(0, 0, -1), cal.Weekend)
		d = walkBackWorking(d.AddDate(0, 0, -1), cal.Weekend)
		return Range{Start: d, End: d.AddDate(0, 0, 1)}, nil

	case ThisWeek:
		s := startOfWeek(day, cal.WeekStartDay)
		return Range{Start: s, End: s.AddDate(0, 0, 7)}, nil

	case LastWeek:
		s := startOfWeek(day, cal.WeekStartDay)
		return Range{Start: s.AddDate(0, 0, -7), End: s}, nil

	case WeekBeforeLast:
		s := startOfWeek(day, cal.WeekStartDay)
		return Range{Start: s.AddDate(0, 0, -14), End: s.AddDate(0, 0, -7)}, nil

	case LastWorkingWeek:
		// Working weeks anchor on the first non-weekend day regardless of
		// the configured week start: Monday for SAT_SUN, Sunday for FRI_SAT.
		anchor := startOfWeek(day, workingWeekAnchor(cal.Weekend))
		start := anchor.AddDate(0, 0, -7)
		return Range{Start: start, End: start.AddDate(0, 0, 5)}, nil

	case ThisMonth:
		s := startOfMonth(day)
		return Range{Start: s, End: s.AddDate(0, 1, 0)}, nil

	case LastMonth:
		// AddDate normalizes, so January rolls back to December of the
		// previous year on its own.
		s := startOfMonth(day).AddDate(0, -1, 0)
		return Range{Start: s, End: s.AddDate(0, 1, 0)}, nil

	case ThisQuarter:
		s := startOfQuarter(day)
		return Range{Start: s, End: s.AddDate(0, 3, 0)}, nil

	case LastQuarter:
		s := startOfQuarter(day).AddDate(0, -3, 0)
		return Range{Start: s, End: s.AddDate(0, 3, 0)}, nil

	case ThisYear:
		s := startOfYear(day)
		return Range{Start: s, End: s.AddDate(1, 0, 0)}, nil

	case LastYear:
		s := startOfYear(day).AddDate(-1, 0, 0)
		return Range{Start: s, End: s.AddDate(1, 0, 0)}, nil

	// The to-date presets end at now, not at the next midnight. Every other
	// preset is midnight-aligned. Preserved behavior from the system this
	// replaces; do not "fix" the asymmetry.
	case MonthToDate:
		return Range{Start: startOfMonth(day), End: now}, nil

	case QuarterToDate:
		return Range{Start: startOfQuarter(day), End: now}, nil

	case YearToDate:
		return Range{Start: startOfYear(day), End: now}, nil
	}

	return Range{}, domain.ErrValidation("unknown period preset %q", p)
}

// midnight truncates t to the start of its calendar day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the most recent day with the given weekday, at or
// before d.
func startOfWeek(d time.Time, weekStart time.Weekday) time.Time {
	back := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDate(0, 0, -back)
}

// walkBackWorking steps d back one day at a time while it falls on a weekend.
func walkBackWorking(d time.Time, weekend WeekendDefinition) time.Time {
	for weekend.Contains(d.Weekday()) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// workingWeekAnchor is the first non-weekend day of the week for the given
// weekend definition.
func workingWeekAnchor(weekend WeekendDefinition) time.Weekday {
	if weekend == WeekendFriSat {
		return time.Sunday
	}
	return time.Monday
}

func startOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
}

func startOfQuarter(d time.Time) time.Time {
	q := (int(d.Month()) - 1) / 3
	return time.Date(d.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, d.Location())
}

func startOfYear(d time.Time) time.Time {
	return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location())
}
