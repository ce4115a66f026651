package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

var unitRowColumns = []string{"id", "remote_id", "subject_id", "course_id", "sequence_number", "name", "description", "activities", "created_at"}

func TestUnitRegistryRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitRegistryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registered_units")).
		WithArgs(sqlmock.AnyArg(), nil, "mat-101", "c-1", 1, "Algebra", "Linear equations", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	unit := &models.Unit{
		SubjectID:      "mat-101",
		CourseID:       "c-1",
		SequenceNumber: 1,
		Name:           "Algebra",
		Description:    "Linear equations",
		Activities:     models.Activities{{Name: "Exam", Weight: 1}},
	}
	require.NoError(t, repo.Create(context.Background(), unit))
	assert.NotEmpty(t, unit.ID)
	assert.False(t, unit.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRegistryRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitRegistryRepository(db)

	rows := sqlmock.NewRows(unitRowColumns).
		AddRow("u1", "42", "mat-101", "c-1", 1, "Algebra", "Linear equations", `[{"name":"Exam","description":"","weight":0.4},{"name":"Project","description":"","weight":0.6}]`, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM registered_units WHERE course_id = $1 ORDER BY sequence_number")).
		WithArgs("c-1").
		WillReturnRows(rows)

	units, err := repo.ListByCourse(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.NotNil(t, units[0].RemoteID)
	assert.Equal(t, "42", *units[0].RemoteID)
	require.Len(t, units[0].Activities, 2)
	assert.True(t, units[0].WeightsBalanced())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRegistryRepositoryListBySubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitRegistryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM registered_units WHERE subject_id = $1")).
		WithArgs("mat-101").
		WillReturnRows(sqlmock.NewRows(unitRowColumns))

	units, err := repo.ListBySubject(context.Background(), "mat-101")
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestUnitRegistryRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitRegistryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM registered_units WHERE id = $1")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM registered_units WHERE id = $1")).
		WithArgs("u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUnitRegistryRepositoryStats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitRegistryRepository(db)

	rows := sqlmock.NewRows([]string{"subject_id", "units", "activities"}).
		AddRow("mat-101", 2, 5).
		AddRow("mat-202", 1, 3)
	mock.ExpectQuery(regexp.QuoteMeta("FROM registered_units GROUP BY subject_id")).WillReturnRows(rows)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUnits)
	assert.Equal(t, 8, stats.TotalActivities)
	assert.Equal(t, 2, stats.BySubject["mat-101"])
}
