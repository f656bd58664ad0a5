package calendar

import (
	"time"

	"github.com/golang-sql/civil"
)

// Config holds the static inputs of a booking calendar.
type Config struct {
	Holidays DateSet
	Occupied DateSet
	// NonWorkingDay is flagged as a weekend special. Zero value is Sunday.
	NonWorkingDay time.Weekday
	// WeekStart is the weekday of the first grid column. Zero value is Sunday.
	WeekStart time.Weekday
	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// Day is one cell of a month grid. Blank cells pad the first week and
// carry the zero Date and no flags.
type Day struct {
	Date             civil.Date
	Blank            bool
	IsWeekendSpecial bool
	IsHoliday        bool
	IsOccupied       bool
	IsPast           bool
}

// Selectable reports whether the cell accepts shift selections.
func (d Day) Selectable() bool {
	return !d.Blank && !d.IsOccupied && !d.IsPast
}

// Calendar generates month grids and answers availability questions for
// one car.
type Calendar struct {
	holidays      DateSet
	occupied      DateSet
	nonWorkingDay time.Weekday
	weekStart     time.Weekday
	location      *time.Location
	now           func() time.Time
}

func New(cfg Config) *Calendar {
	c := &Calendar{
		holidays:      cfg.Holidays,
		occupied:      cfg.Occupied,
		nonWorkingDay: cfg.NonWorkingDay,
		weekStart:     cfg.WeekStart,
		location:      cfg.Location,
		now:           cfg.Now,
	}
	if c.holidays == nil {
		c.holidays = DateSet{}
	}
	if c.occupied == nil {
		c.occupied = DateSet{}
	}
	if c.location == nil {
		c.location = time.UTC
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Today is the current calendar day in the configured location.
func (c *Calendar) Today() civil.Date {
	return civil.DateOf(c.now().In(c.location))
}

func (c *Calendar) IsOccupied(d civil.Date) bool {
	return c.occupied.Contains(d)
}

func (c *Calendar) IsHoliday(d civil.Date) bool {
	return c.holidays.Contains(d)
}

// IsPast reports whether d is strictly before today.
func (c *Calendar) IsPast(d civil.Date) bool {
	return d.Before(c.Today())
}

// IsSelectable reports whether d is neither occupied nor in the past.
func (c *Calendar) IsSelectable(d civil.Date) bool {
	return !c.IsOccupied(d) && !c.IsPast(d)
}

// Month builds the grid for ym: leading blank cells up to the weekday
// column of the 1st, then one cell per day in ascending order.
func (c *Calendar) Month(ym YearMonth) []Day {
	first := ym.First()
	offset := (int(Weekday(first)) - int(c.weekStart) + 7) % 7
	n := ym.Days()
	today := c.Today()

	days := make([]Day, 0, offset+n)
	for i := 0; i < offset; i++ {
		days = append(days, Day{Blank: true})
	}
	for i := 0; i < n; i++ {
		d := first.AddDays(i)
		days = append(days, Day{
			Date:             d,
			IsWeekendSpecial: Weekday(d) == c.nonWorkingDay,
			IsHoliday:        c.holidays.Contains(d),
			IsOccupied:       c.occupied.Contains(d),
			IsPast:           d.Before(today),
		})
	}
	return days
}

// SelectableDates returns the dates of ym that accept selections.
func (c *Calendar) SelectableDates(ym YearMonth) []civil.Date {
	var out []civil.Date
	for _, day := range c.Month(ym) {
		if day.Selectable() {
			out = append(out, day.Date)
		}
	}
	return out
}
