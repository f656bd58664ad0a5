package availability

import (
	"context"

	"github.com/golang-sql/civil"

	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/circuitbreaker"
)

// guardedSource stops querying src while its circuit is open.
type guardedSource struct {
	src     Source
	breaker *circuitbreaker.CircuitBreaker
}

// WithBreaker protects src with breaker.
func WithBreaker(src Source, breaker *circuitbreaker.CircuitBreaker) Source {
	return &guardedSource{src: src, breaker: breaker}
}

func (g *guardedSource) OccupiedDates(ctx context.Context, carID string, from civil.Date) (calendar.DateSet, error) {
	var out calendar.DateSet
	err := g.breaker.Execute(ctx, func() error {
		var err error
		out, err = g.src.OccupiedDates(ctx, carID, from)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
