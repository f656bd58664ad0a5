// Package availability provides the occupied dates of a car.
package availability

import (
	"context"
	"fmt"

	"github.com/golang-sql/civil"

	"github.com/taxirent/bookingservice/internal/calendar"
)

// AllCars is the car id of entries that apply to every car.
const AllCars = "*"

// Source returns the dates on or after from that carID cannot be booked.
type Source interface {
	OccupiedDates(ctx context.Context, carID string, from civil.Date) (calendar.DateSet, error)
}

// StaticSource serves occupied dates held in memory, usually from
// configuration.
type StaticSource struct {
	byCar map[string]calendar.DateSet
}

func NewStaticSource() *StaticSource {
	return &StaticSource{byCar: make(map[string]calendar.DateSet)}
}

// Add marks dates as occupied for carID, or for every car when carID is AllCars.
func (s *StaticSource) Add(carID string, dates ...civil.Date) {
	set, ok := s.byCar[carID]
	if !ok {
		set = calendar.NewDateSet()
		s.byCar[carID] = set
	}
	set.Add(dates...)
}

// AddStrings is Add for ISO date strings.
func (s *StaticSource) AddStrings(carID string, dates []string) error {
	set, err := calendar.ParseDateSet(dates)
	if err != nil {
		return fmt.Errorf("occupied dates for %s: %w", carID, err)
	}
	s.Add(carID, set.Sorted()...)
	return nil
}

func (s *StaticSource) OccupiedDates(ctx context.Context, carID string, from civil.Date) (calendar.DateSet, error) {
	out := calendar.NewDateSet()
	for _, key := range []string{carID, AllCars} {
		for d := range s.byCar[key] {
			if !d.Before(from) {
				out.Add(d)
			}
		}
	}
	return out, nil
}

// Merge combines sources. A failing source fails the lookup.
func Merge(sources ...Source) Source {
	return multiSource(sources)
}

type multiSource []Source

func (m multiSource) OccupiedDates(ctx context.Context, carID string, from civil.Date) (calendar.DateSet, error) {
	out := calendar.NewDateSet()
	for _, src := range m {
		set, err := src.OccupiedDates(ctx, carID, from)
		if err != nil {
			return nil, err
		}
		out = out.Union(set)
	}
	return out, nil
}
