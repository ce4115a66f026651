package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// GradeSnapshotRepository stores grade snapshots in PostgreSQL, one row per subject.
type GradeSnapshotRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewGradeSnapshotRepository constructs the repository.
func NewGradeSnapshotRepository(db *sqlx.DB) *GradeSnapshotRepository {
	return &GradeSnapshotRepository{db: db, now: time.Now}
}

// Get returns the saved snapshot of a subject, or an empty one.
func (r *GradeSnapshotRepository) Get(ctx context.Context, subjectID string) (models.GradeSnapshot, error) {
	const query = `SELECT payload FROM grade_snapshots WHERE subject_id = $1`
	var snapshot models.GradeSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.GradeSnapshot{}, nil
		}
		return nil, fmt.Errorf("get grade snapshot %s: %w", subjectID, err)
	}
	if snapshot == nil {
		snapshot = models.GradeSnapshot{}
	}
	return snapshot, nil
}

// Put replaces the snapshot of a subject.
func (r *GradeSnapshotRepository) Put(ctx context.Context, subjectID string, snapshot models.GradeSnapshot) error {
	const query = `INSERT INTO grade_snapshots (subject_id, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (subject_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, subjectID, snapshot, r.now().UTC()); err != nil {
		return fmt.Errorf("put grade snapshot %s: %w", subjectID, err)
	}
	return nil
}

// All returns every saved snapshot keyed by subject.
func (r *GradeSnapshotRepository) All(ctx context.Context) (models.GradeRegistry, error) {
	const query = `SELECT subject_id, payload, updated_at FROM grade_snapshots ORDER BY subject_id`
	var rows []models.GradeSnapshotRecord
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list grade snapshots: %w", err)
	}
	registry := make(models.GradeRegistry, len(rows))
	for _, row := range rows {
		registry[row.SubjectID] = row.Payload
	}
	return registry, nil
}
