package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/platform/db"
	"route-sequencing-service/internal/ports"
)

// InitSchema creates the model and observation tables for the given dialect.
func InitSchema(conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}
	if !dialect.Valid() {
		return fmt.Errorf("init schema: unknown dialect %q", dialect)
	}

	idColumn, realType := "INTEGER PRIMARY KEY AUTOINCREMENT", "REAL"
	if dialect == db.Postgres {
		idColumn, realType = "BIGSERIAL PRIMARY KEY", "DOUBLE PRECISION"
	}

	createModelsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS travel_time_models (
		id %s,
		version TEXT NOT NULL UNIQUE,
		trained_at TEXT NOT NULL,
		payload TEXT NOT NULL
	);
	`, idColumn)

	createObservationsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS trip_observations (
		id %[1]s,
		origin_lat %[2]s NOT NULL,
		origin_lng %[2]s NOT NULL,
		dest_lat %[2]s NOT NULL,
		dest_lng %[2]s NOT NULL,
		departed_at TEXT NOT NULL,
		traffic_level %[2]s NOT NULL,
		minutes %[2]s NOT NULL
	);
	`, idColumn, realType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_trip_observations_departed_at
	ON trip_observations(departed_at);
	`

	statements := []string{
		createModelsQuery,
		createObservationsQuery,
		createIndexQuery,
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ObservationSeed struct {
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	DepartedAt   time.Time `json:"departed_at"`
	TrafficLevel float64   `json:"traffic_level"`
	Minutes      float64   `json:"minutes"`
}

// SeedObservationsFromJSON loads recorded trips from a JSON array file. The
// whole file is validated before anything is written.
func SeedObservationsFromJSON(ctx context.Context, repo ports.ObservationRepository, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed observations: read %q: %w", jsonPath, err)
	}

	var data []ObservationSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed observations: parse json: %w", err)
	}

	rows := make([]ports.TripObservation, 0, len(data))
	for i, item := range data {
		origin, err := domain.ParseLocation(item.Origin)
		if err != nil {
			return 0, fmt.Errorf("seed observations: origin at index %d: %w", i+1, err)
		}
		dest, err := domain.ParseLocation(item.Destination)
		if err != nil {
			return 0, fmt.Errorf("seed observations: destination at index %d: %w", i+1, err)
		}
		if item.DepartedAt.IsZero() {
			return 0, fmt.Errorf("seed observations: departed_at at index %d is required", i+1)
		}

		rows = append(rows, ports.TripObservation{
			Origin:      origin,
			Destination: dest,
			DepartedAt:  item.DepartedAt,
			Traffic:     item.TrafficLevel,
			Minutes:     item.Minutes,
		})
	}

	for i, o := range rows {
		if err := repo.AddObservation(ctx, o); err != nil {
			return i, fmt.Errorf("seed observations: row %d: %w", i+1, err)
		}
	}

	return len(rows), nil
}
