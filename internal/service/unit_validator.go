package service

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

const (
	minUnitNameLength        = 3
	maxUnitNameLength        = 100
	minUnitDescriptionLength = 10
	maxUnitDescriptionLength = 500
	minActivityNameLength    = 3
	percentTotal             = 100.0
	percentTolerance         = 0.01
)

// ValidateUnit checks a unit draft before it is sent to the backend. Weights
// are read as percentages. Every problem is reported, in field order.
func ValidateUnit(draft dto.UnitDraft) dto.ValidationResult {
	errs := make([]string, 0)
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	name := strings.TrimSpace(draft.Name)
	switch n := utf8.RuneCountInString(name); {
	case n < minUnitNameLength:
		add("unit name must be at least %d characters", minUnitNameLength)
	case n > maxUnitNameLength:
		add("unit name must be at most %d characters", maxUnitNameLength)
	}

	description := strings.TrimSpace(draft.Description)
	switch n := utf8.RuneCountInString(description); {
	case n < minUnitDescriptionLength:
		add("unit description must be at least %d characters", minUnitDescriptionLength)
	case n > maxUnitDescriptionLength:
		add("unit description must be at most %d characters", maxUnitDescriptionLength)
	}

	if draft.SequenceNumber < 1 {
		add("unit number must be 1 or greater")
	}
	if strings.TrimSpace(draft.CourseID) == "" {
		add("course is required")
	}

	if len(draft.Activities) == 0 {
		add("unit must have at least one activity")
		return dto.ValidationResult{Valid: false, Errors: errs}
	}

	seen := make(map[string]int, len(draft.Activities))
	var total float64
	for i, activity := range draft.Activities {
		pos := i + 1
		activityName := strings.TrimSpace(activity.Name)
		if utf8.RuneCountInString(activityName) < minActivityNameLength {
			add("activity %d: name must be at least %d characters", pos, minActivityNameLength)
		}
		key := strings.ToLower(activityName)
		if first, dup := seen[key]; dup && key != "" {
			add("activity %d: name %q duplicates activity %d", pos, activityName, first)
		} else if !dup {
			seen[key] = pos
		}
		if activity.WeightPercent <= 0 || activity.WeightPercent > percentTotal || math.IsNaN(activity.WeightPercent) {
			add("activity %d: weight must be greater than 0 and at most 100", pos)
		}
		total += activity.WeightPercent
	}
	if math.Abs(total-percentTotal) > percentTolerance {
		add("activity weights must sum to 100%% (current total %s%%)", formatPercent(total))
	}

	return dto.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// unitValidationError turns a failed validation into an application error.
// Weight problems alone map to ErrInvalidWeights.
func unitValidationError(result dto.ValidationResult) error {
	if result.Valid {
		return nil
	}
	base := appErrors.ErrValidation
	if len(result.Errors) == 1 && strings.Contains(result.Errors[0], "weights must sum") {
		base = appErrors.ErrInvalidWeights
	}
	return appErrors.WithDetails(base, "", result.Errors)
}

func formatPercent(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
