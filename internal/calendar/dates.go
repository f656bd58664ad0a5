package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-sql/civil"
)

// DateSet is a set of calendar dates (holidays, occupied days).
type DateSet map[civil.Date]struct{}

func NewDateSet(dates ...civil.Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// ParseDateSet builds a set from ISO YYYY-MM-DD strings.
func ParseDateSet(values []string) (DateSet, error) {
	s := make(DateSet, len(values))
	for _, v := range values {
		d, err := civil.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", v, err)
		}
		s[d] = struct{}{}
	}
	return s, nil
}

func (s DateSet) Contains(d civil.Date) bool {
	_, ok := s[d]
	return ok
}

func (s DateSet) Add(dates ...civil.Date) {
	for _, d := range dates {
		s[d] = struct{}{}
	}
}

// Union returns a new set holding the dates of s and other.
func (s DateSet) Union(other DateSet) DateSet {
	out := make(DateSet, len(s)+len(other))
	for d := range s {
		out[d] = struct{}{}
	}
	for d := range other {
		out[d] = struct{}{}
	}
	return out
}

// Sorted returns the dates in chronological order.
func (s DateSet) Sorted() []civil.Date {
	out := make([]civil.Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// YearMonth identifies a displayed calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing d.
func MonthOf(d civil.Date) YearMonth {
	return YearMonth{Year: d.Year, Month: d.Month}
}

// AddMonths moves n months forward (or backward for negative n).
func (ym YearMonth) AddMonths(n int) YearMonth {
	t := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) First() civil.Date {
	return civil.Date{Year: ym.Year, Month: ym.Month, Day: 1}
}

func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// ParseYearMonth parses "2006-01".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// Weekday returns the day of week of d.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// ParseWeekday accepts English weekday names ("sunday", "Mon", ...).
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sun", "sunday":
		return time.Sunday, nil
	case "mon", "monday":
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
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
