package repository

import (
	"context"
	"database/sql"

	"spelling-service/internal/models"
)

// ResultRepository is the append-only results store. Rows are never updated
// or deleted once written.
type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) InsertResult(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (id, participant_id, class_id, school_id, score, total, mode, time_taken_seconds, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		result.ID,
		result.ParticipantID,
		result.ClassID,
		nullable(result.SchoolID),
		result.Score,
		result.Total,
		result.Mode,
		result.TimeTakenSecs,
		result.RecordedAt,
	)
	return err
}

func (r *ResultRepository) ListResults(ctx context.Context) ([]models.Result, error) {
	query := `
		SELECT id, participant_id, class_id, COALESCE(school_id, ''), score, total, mode, time_taken_seconds, recorded_at
		FROM results
		ORDER BY recorded_at ASC
	`
	return r.queryResults(ctx, query)
}

func (r *ResultRepository) ListResultsByClass(ctx context.Context, classID string) ([]models.Result, error) {
	query := `
		SELECT id, participant_id, class_id, COALESCE(school_id, ''), score, total, mode, time_taken_seconds, recorded_at
		FROM results
		WHERE class_id = $1
		ORDER BY recorded_at ASC
	`
	return r.queryResults(ctx, query, classID)
}

func (r *ResultRepository) ListResultsBySchool(ctx context.Context, schoolID string) ([]models.Result, error) {
	query := `
		SELECT id, participant_id, class_id, COALESCE(school_id, ''), score, total, mode, time_taken_seconds, recorded_at
		FROM results
		WHERE school_id = $1
		ORDER BY recorded_at ASC
	`
	return r.queryResults(ctx, query, schoolID)
}

func (r *ResultRepository) queryResults(ctx context.Context, query string, args ...any) ([]models.Result, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		var result models.Result
		err := rows.Scan(
			&result.ID,
			&result.ParticipantID,
			&result.ClassID,
			&result.SchoolID,
			&result.Score,
			&result.Total,
			&result.Mode,
			&result.TimeTakenSecs,
			&result.RecordedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
