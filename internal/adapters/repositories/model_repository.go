package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"route-sequencing-service/internal/platform/db"
	"route-sequencing-service/internal/platform/obs"
	"route-sequencing-service/internal/predictor"
)

// SQLModelRepository stores fitted predictor state in travel_time_models.
// The newest row wins; saving an existing version replaces it and makes it newest.
type SQLModelRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLModelRepository(conn *sql.DB, dialect db.Dialect) *SQLModelRepository {
	return &SQLModelRepository{DB: conn, Dialect: dialect}
}

func (r *SQLModelRepository) SaveModel(ctx context.Context, t predictor.Trained) (err error) {
	defer obs.Time(ctx, "models.repo.SaveModel")(&err)

	if r.DB == nil {
		return errors.New("model repository: DB is nil")
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if t.Version == "" {
		return errors.New("save model: version is required")
	}

	payload, err := predictor.Encode(t)
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save model: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := r.Dialect.Placeholder
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM travel_time_models WHERE version = `+p(1), t.Version); err != nil {
		return fmt.Errorf("save model version=%s: delete previous: %w", t.Version, err)
	}

	query := fmt.Sprintf(`
	INSERT INTO travel_time_models (version, trained_at, payload)
	VALUES (%s, %s, %s);
	`, p(1), p(2), p(3))
	trainedAt := t.TrainedAt.UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, query, t.Version, trainedAt, string(payload)); err != nil {
		return fmt.Errorf("save model version=%s: insert: %w", t.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save model version=%s: commit tx: %w", t.Version, err)
	}
	return nil
}

// LoadLatest returns predictor.Unavailable when the table is empty or the
// newest payload is malformed. Only I/O failures are errors.
func (r *SQLModelRepository) LoadLatest(ctx context.Context) (_ predictor.State, err error) {
	defer obs.Time(ctx, "models.repo.LoadLatest")(&err)

	if r.DB == nil {
		return nil, errors.New("model repository: DB is nil")
	}

	query := `
	SELECT version, payload
	FROM travel_time_models
	ORDER BY id DESC
	LIMIT 1;
	`
	var version, payload string
	err = r.DB.QueryRowContext(ctx, query).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return predictor.Unavailable{Reason: "no stored model"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest model: query: %w", err)
	}

	state := predictor.Decode([]byte(payload))
	if u, ok := state.(predictor.Unavailable); ok {
		return predictor.Unavailable{Reason: fmt.Sprintf("stored model version=%s: %s", version, u.Reason)}, nil
	}
	return state, nil
}
