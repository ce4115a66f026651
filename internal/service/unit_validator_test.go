package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

func validDraft() dto.UnitDraft {
	return dto.UnitDraft{
		SubjectID:      "sub-1",
		CourseID:       "course-1",
		SequenceNumber: 1,
		Name:           "Unit One",
		Description:    "Introduction to algebra",
		Activities: []dto.ActivityDraft{
			{Name: "Exam", Description: "Written exam", WeightPercent: 40},
			{Name: "Project", Description: "Group project", WeightPercent: 60},
		},
	}
}

func TestValidateUnitAcceptsBalancedWeights(t *testing.T) {
	result := ValidateUnit(validDraft())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateUnitRejectsUnbalancedWeights(t *testing.T) {
	draft := validDraft()
	draft.Activities[1].WeightPercent = 59

	result := ValidateUnit(draft)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "current total 99%")

	err := unitValidationError(result)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidWeights))
}

func TestValidateUnitToleratesRoundingDrift(t *testing.T) {
	draft := validDraft()
	draft.Activities = []dto.ActivityDraft{
		{Name: "Quiz A", WeightPercent: 33.33},
		{Name: "Quiz B", WeightPercent: 33.33},
		{Name: "Quiz C", WeightPercent: 33.34},
	}
	assert.True(t, ValidateUnit(draft).Valid)

	draft.Activities[2].WeightPercent = 33.32
	assert.False(t, ValidateUnit(draft).Valid)
}

func TestValidateUnitCollectsEveryError(t *testing.T) {
	draft := dto.UnitDraft{
		Name:        " ab ",
		Description: "short",
		Activities: []dto.ActivityDraft{
			{Name: "Exam", WeightPercent: 0},
			{Name: " exam ", WeightPercent: 120},
		},
	}

	result := ValidateUnit(draft)
	require.False(t, result.Valid)
	assert.Equal(t, []string{
		"unit name must be at least 3 characters",
		"unit description must be at least 10 characters",
		"unit number must be 1 or greater",
		"course is required",
		"activity 1: weight must be greater than 0 and at most 100",
		`activity 2: name "exam" duplicates activity 1`,
		"activity 2: weight must be greater than 0 and at most 100",
		"activity weights must sum to 100% (current total 120%)",
	}, result.Errors)

	err := unitValidationError(result)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, "unit name must be at least 3 characters", appErrors.FromError(err).Message)
	assert.Len(t, appErrors.FromError(err).Details, 8)
}

func TestValidateUnitRequiresActivities(t *testing.T) {
	draft := validDraft()
	draft.Activities = nil

	result := ValidateUnit(draft)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"unit must have at least one activity"}, result.Errors)
}

func TestValidateUnitLengthLimits(t *testing.T) {
	draft := validDraft()
	long := make([]rune, 101)
	for i := range long {
		long[i] = 'a'
	}
	draft.Name = string(long)

	result := ValidateUnit(draft)
	assert.Equal(t, []string{"unit name must be at most 100 characters"}, result.Errors)
}
