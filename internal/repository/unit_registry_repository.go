package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

const unitColumns = `id, remote_id, subject_id, course_id, sequence_number, name, description, activities, created_at`

// UnitRegistryRepository keeps the local record of units created through the gateway.
type UnitRegistryRepository struct {
	db *sqlx.DB
}

// NewUnitRegistryRepository constructs the repository.
func NewUnitRegistryRepository(db *sqlx.DB) *UnitRegistryRepository {
	return &UnitRegistryRepository{db: db}
}

// Create inserts a unit, generating its id when empty.
func (r *UnitRegistryRepository) Create(ctx context.Context, unit *models.Unit) error {
	if unit.ID == "" {
		unit.ID = uuid.NewString()
	}
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = time.Now().UTC()
	}
	if unit.Activities == nil {
		unit.Activities = models.Activities{}
	}
	const query = `INSERT INTO registered_units (id, remote_id, subject_id, course_id, sequence_number, name, description, activities, created_at)
VALUES (:id, :remote_id, :subject_id, :course_id, :sequence_number, :name, :description, :activities, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, unit); err != nil {
		return fmt.Errorf("create registered unit: %w", err)
	}
	return nil
}

// ListBySubject returns units of a subject ordered by sequence.
func (r *UnitRegistryRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM registered_units WHERE subject_id = $1 ORDER BY sequence_number, created_at`
	var units []models.Unit
	if err := r.db.SelectContext(ctx, &units, query, subjectID); err != nil {
		return nil, fmt.Errorf("list units by subject: %w", err)
	}
	return units, nil
}

// ListByCourse returns units of a course ordered by sequence.
func (r *UnitRegistryRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM registered_units WHERE course_id = $1 ORDER BY sequence_number, created_at`
	var units []models.Unit
	if err := r.db.SelectContext(ctx, &units, query, courseID); err != nil {
		return nil, fmt.Errorf("list units by course: %w", err)
	}
	return units, nil
}

// Delete removes a unit from the registry.
func (r *UnitRegistryRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registered_units WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete registered unit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete registered unit rows: %w", err)
	}
	return affected > 0, nil
}

// Stats counts units and activities, grouped by subject.
func (r *UnitRegistryRepository) Stats(ctx context.Context) (*models.UnitStats, error) {
	const query = `SELECT subject_id, COUNT(*) AS units, COALESCE(SUM(jsonb_array_length(activities)), 0) AS activities
FROM registered_units GROUP BY subject_id`
	var rows []struct {
		SubjectID  string `db:"subject_id"`
		Units      int    `db:"units"`
		Activities int    `db:"activities"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("unit registry stats: %w", err)
	}
	stats := &models.UnitStats{BySubject: make(map[string]int, len(rows))}
	for _, row := range rows {
		stats.TotalUnits += row.Units
		stats.TotalActivities += row.Activities
		stats.BySubject[row.SubjectID] = row.Units
	}
	return stats, nil
}
