package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-sql/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/metrics"
)

const occupiedDatesQuery = `SELECT reserved_on FROM reservations WHERE car_id = $1 AND reserved_on >= $2`

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads occupied dates from the reservations table.
type PostgresSource struct {
	db Querier
}

func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) OccupiedDates(ctx context.Context, carID string, from civil.Date) (calendar.DateSet, error) {
	start := time.Now()
	defer func() { metrics.RecordDatabaseQuery("occupied_dates", time.Since(start)) }()

	rows, err := s.db.Query(ctx, occupiedDatesQuery, carID, from.In(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	out := calendar.NewDateSet()
	for rows.Next() {
		var reservedOn time.Time
		if err := rows.Scan(&reservedOn); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out.Add(civil.DateOf(reservedOn))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reservations: %w", err)
	}
	return out, nil
}

// EnsureSchema creates the reservations table when it does not exist.
func EnsureSchema(ctx context.Context, db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}) error {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS reservations (
		car_id      TEXT NOT NULL,
		reserved_on DATE NOT NULL,
		PRIMARY KEY (car_id, reserved_on)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create reservations table: %w", err)
	}
	return nil
}
