package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"route-sequencing-service/internal/platform/db"
	"route-sequencing-service/internal/platform/obs"
	"route-sequencing-service/internal/ports"
)

var ErrInvalidObservation = errors.New("invalid observation")

// SQLObservationRepository reads and appends rows of trip_observations.
type SQLObservationRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLObservationRepository(conn *sql.DB, dialect db.Dialect) *SQLObservationRepository {
	return &SQLObservationRepository{DB: conn, Dialect: dialect}
}

func (r *SQLObservationRepository) AddObservation(ctx context.Context, o ports.TripObservation) (err error) {
	defer obs.Time(ctx, "observations.repo.Add")(&err)

	if r.DB == nil {
		return errors.New("observation repository: DB is nil")
	}
	if err := validateObservation(o); err != nil {
		return fmt.Errorf("add observation: %w", err)
	}

	p := r.Dialect.Placeholder
	query := fmt.Sprintf(`
	INSERT INTO trip_observations (
		origin_lat, origin_lng, dest_lat, dest_lng, departed_at, traffic_level, minutes
	)
	VALUES (%s, %s, %s, %s, %s, %s, %s);
	`, p(1), p(2), p(3), p(4), p(5), p(6), p(7))

	_, err = r.DB.ExecContext(ctx, query,
		o.Origin.Lat, o.Origin.Lng,
		o.Destination.Lat, o.Destination.Lng,
		o.DepartedAt.Format(time.RFC3339),
		o.Traffic, o.Minutes,
	)
	if err != nil {
		return fmt.Errorf("add observation: insert: %w", err)
	}
	return nil
}

// ListObservations returns the most recently inserted rows first. A limit
// of zero or less returns every row.
func (r *SQLObservationRepository) ListObservations(ctx context.Context, limit int) (_ []ports.TripObservation, err error) {
	defer obs.Time(ctx, "observations.repo.List")(&err)

	if r.DB == nil {
		return nil, errors.New("observation repository: DB is nil")
	}

	query := `
	SELECT origin_lat, origin_lng, dest_lat, dest_lng, departed_at, traffic_level, minutes
	FROM trip_observations
	ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += "LIMIT " + r.Dialect.Placeholder(1)
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list observations: query trip_observations table: %w", err)
	}
	defer rows.Close()

	out := make([]ports.TripObservation, 0, 64)
	for rows.Next() {
		var o ports.TripObservation
		var departed string
		if err := rows.Scan(
			&o.Origin.Lat, &o.Origin.Lng,
			&o.Destination.Lat, &o.Destination.Lng,
			&departed, &o.Traffic, &o.Minutes,
		); err != nil {
			return nil, fmt.Errorf("list observations: scan row: %w", err)
		}
		o.DepartedAt, err = time.Parse(time.RFC3339, departed)
		if err != nil {
			return nil, fmt.Errorf("list observations: departed_at %q: %w", departed, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list observations: row iteration: %w", err)
	}

	return out, nil
}

func validateObservation(o ports.TripObservation) error {
	if err := o.Origin.Validate(); err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	if err := o.Destination.Validate(); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if o.DepartedAt.IsZero() {
		return fmt.Errorf("%w: departed_at is required", ErrInvalidObservation)
	}
	if math.IsNaN(o.Traffic) || o.Traffic < 0 || o.Traffic > 1 {
		return fmt.Errorf("%w: traffic level %v outside [0,1]", ErrInvalidObservation, o.Traffic)
	}
	if math.IsNaN(o.Minutes) || math.IsInf(o.Minutes, 0) || o.Minutes < 0 {
		return fmt.Errorf("%w: minutes %v", ErrInvalidObservation, o.Minutes)
	}
	return nil
}
