package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportsql/internal/domain"
)

// 2024-06-10 is a Monday.
var monday = time.Date(2024, time.June, 10, 15, 30, 0, 0, time.UTC)

func satSun() Calendar { return DefaultCalendar() }

func friSat() Calendar {
	return Calendar{WeekStartDay: time.Sunday, Weekend: WeekendFriSat}
}

func TestResolveDates(t *testing.T) {
	tests := []struct {
		name      string
		preset    Preset
		now       time.Time
		cal       Calendar
		wantStart string
		wantEnd   string
	}{
		{name: "today", preset: Today, now: monday, cal: satSun(), wantStart: "2024-06-10", wantEnd: "2024-06-11"},
		{name: "yesterday", preset: Yesterday, now: monday, cal: satSun(), wantStart: "2024-06-09", wantEnd: "2024-06-10"},

		// From a Monday the last working day skips the whole weekend.
		{name: "last_working_day_over_weekend", preset: LastWorkingDay, now: monday, cal: satSun(), wantStart: "2024-06-07", wantEnd: "2024-06-08"},
		// Under FRI_SAT, Sunday 2024-06-09 is a working day.
		{name: "last_working_day_fri_sat", preset: LastWorkingDay, now: monday, cal: friSat(), wantStart: "2024-06-09", wantEnd: "2024-06-10"},
		// Midweek: no weekend in the way.
		{name: "last_working_day_midweek", preset: LastWorkingDay, now: time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC), cal: satSun(), wantStart: "2024-06-11", wantEnd: "2024-06-12"},
		{name: "day_before_last_working_day", preset: DayBeforeLastWorkingDay, now: monday, cal: satSun(), wantStart: "2024-06-06", wantEnd: "2024-06-07"},

		{name: "this_week_monday_start", preset: ThisWeek, now: monday, cal: satSun(), wantStart: "2024-06-10", wantEnd: "2024-06-17"},
		{name: "this_week_sunday_start", preset: ThisWeek, now: monday, cal: Calendar{WeekStartDay: time.Sunday, Weekend: WeekendSatSun}, wantStart: "2024-06-09", wantEnd: "2024-06-16"},
		{name: "last_week", preset: LastWeek, now: monday, cal: satSun(), wantStart: "2024-06-03", wantEnd: "2024-06-10"},
		{name: "week_before_last", preset: WeekBeforeLast, now: monday, cal: satSun(), wantStart: "2024-05-27", wantEnd: "2024-06-03"},

		// The working week spans five days and anchors Monday under SAT_SUN,
		// Sunday under FRI_SAT, whatever WeekStartDay says.
		{name: "last_working_week_sat_sun", preset: LastWorkingWeek, now: monday, cal: satSun(), wantStart: "2024-06-03", wantEnd: "2024-06-08"},
		{name: "last_working_week_fri_sat", preset: LastWorkingWeek, now: monday, cal: friSat(), wantStart: "2024-06-02", wantEnd: "2024-06-07"},
		{name: "last_working_week_ignores_week_start", preset: LastWorkingWeek, now: monday, cal: Calendar{WeekStartDay: time.Wednesday, Weekend: WeekendSatSun}, wantStart: "2024-06-03", wantEnd: "2024-06-08"},

		{name: "this_month", preset: ThisMonth, now: monday, cal: satSun(), wantStart: "2024-06-01", wantEnd: "2024-07-01"},
		{name: "last_month", preset: LastMonth, now: monday, cal: satSun(), wantStart: "2024-05-01", wantEnd: "2024-06-01"},
		{name: "last_month_january_wraps", preset: LastMonth, now: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), cal: satSun(), wantStart: "2023-12-01", wantEnd: "2024-01-01"},

		{name: "this_quarter", preset: ThisQuarter, now: monday, cal: satSun(), wantStart: "2024-04-01", wantEnd: "2024-07-01"},
		{name: "last_quarter", preset: LastQuarter, now: monday, cal: satSun(), wantStart: "2024-01-01", wantEnd: "2024-04-01"},
		{name: "last_quarter_q1_wraps", preset: LastQuarter, now: time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC), cal: satSun(), wantStart: "2023-10-01", wantEnd: "2024-01-01"},

		{name: "this_year", preset: ThisYear, now: monday, cal: satSun(), wantStart: "2024-01-01", wantEnd: "2025-01-01"},
		{name: "last_year", preset: LastYear, now: monday, cal: satSun(), wantStart: "2023-01-01", wantEnd: "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.preset, tt.now, tt.cal)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, got.StartDate())
			assert.Equal(t, tt.wantEnd, got.EndDate())
		})
	}
}

func TestResolveToDateEndsAtNow(t *testing.T) {
	// The to-date presets end at the instant of now, not the next midnight.
	for _, p := range []Preset{MonthToDate, QuarterToDate, YearToDate} {
		got, err := Resolve(p, monday, satSun())
		require.NoError(t, err)
		assert.True(t, got.End.Equal(monday), "%s should end at now", p)
	}

	mtd, err := Resolve(MonthToDate, monday, satSun())
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", mtd.StartDate())

	ytd, err := Resolve(YearToDate, monday, satSun())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", ytd.StartDate())
}

func TestResolveIsDeterministic(t *testing.T) {
	for _, p := range Presets() {
		a, err := Resolve(p, monday, satSun())
		require.NoError(t, err)
		b, err := Resolve(p, monday, satSun())
		require.NoError(t, err)
		assert.Equal(t, a, b, string(p))
	}
}

func TestResolveHalfOpenInvariant(t *testing.T) {
	for _, p := range Presets() {
		got, err := Resolve(p, monday, satSun())
		require.NoError(t, err)
		assert.True(t, got.Start.Before(got.End), "%s: start must precede end", p)
	}
}

func TestParsePreset(t *testing.T) {
	p, err := ParsePreset("  Last_Working_Day ")
	require.NoError(t, err)
	assert.Equal(t, LastWorkingDay, p)

	_, err = ParsePreset("fortnight")
	require.Error(t, err)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseWeekend(t *testing.T) {
	w, err := ParseWeekend("")
	require.NoError(t, err)
	assert.Equal(t, WeekendSatSun, w)

	w, err = ParseWeekend("FRI_SAT")
	require.NoError(t, err)
	assert.Equal(t, WeekendFriSat, w)

	_, err = ParseWeekend("thu_fri")
	require.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("sun")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)

	d, err = ParseWeekday("")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)

	_, err = ParseWeekday("someday")
	require.Error(t, err)
}

func TestWeekendContains(t *testing.T) {
	assert.True(t, WeekendSatSun.Contains(time.Saturday))
	assert.True(t, WeekendSatSun.Contains(time.Sunday))
	assert.False(t, WeekendSatSun.Contains(time.Friday))

	assert.True(t, WeekendFriSat.Contains(time.Friday))
	assert.True(t, WeekendFriSat.Contains(time.Saturday))
	assert.False(t, WeekendFriSat.Contains(time.Sunday))
}
