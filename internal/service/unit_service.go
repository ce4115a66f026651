package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

type unitsBackend interface {
	UnitsByCourse(ctx context.Context, courseID string) ([]models.Unit, error)
	CreateUnit(ctx context.Context, unit models.Unit) (string, error)
	CreateActivity(ctx context.Context, unitID string, activity models.Activity) (string, error)
}

type unitRegistry interface {
	Create(ctx context.Context, unit *models.Unit) error
	ListBySubject(ctx context.Context, subjectID string) ([]models.Unit, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Unit, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (*models.UnitStats, error)
}

// UnitService validates and registers units with their weighted activities.
type UnitService struct {
	backend  unitsBackend
	registry unitRegistry
	logger   *zap.Logger
}

// NewUnitService constructs a UnitService.
func NewUnitService(backend unitsBackend, registry unitRegistry, logger *zap.Logger) *UnitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitService{backend: backend, registry: registry, logger: logger}
}

// Validate runs the draft checks without side effects.
func (s *UnitService) Validate(draft dto.UnitDraft) dto.ValidationResult {
	return ValidateUnit(draft)
}

// Register validates a draft, creates the unit and its activities remotely and
// records it locally. A failing activity does not stop the others.
func (s *UnitService) Register(ctx context.Context, draft dto.UnitDraft) (*models.UnitRegistration, error) {
	if err := unitValidationError(ValidateUnit(draft)); err != nil {
		return nil, err
	}

	unit := draftToUnit(draft)
	remoteID, err := s.backend.CreateUnit(ctx, unit)
	if err != nil {
		s.logger.Error("failed to create unit", zap.String("course_id", unit.CourseID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create unit")
	}
	// grades are keyed by unit id, so the local copy reuses the remote one
	unit.ID = remoteID
	unit.RemoteID = &remoteID

	result := &models.UnitRegistration{
		Activities: make([]models.ActivityRegistration, 0, len(unit.Activities)),
		Total:      len(unit.Activities),
	}
	created := make(models.Activities, 0, len(unit.Activities))
	for _, activity := range unit.Activities {
		entry := models.ActivityRegistration{Activity: activity}
		id, err := s.backend.CreateActivity(ctx, remoteID, activity)
		if err != nil {
			s.logger.Warn("failed to create activity",
				zap.String("unit_id", remoteID),
				zap.String("activity", activity.Name),
				zap.Error(err),
			)
			entry.Error = err.Error()
			result.Failed++
		} else {
			entry.ID = id
			activity.ID = id
			result.Succeeded++
		}
		created = append(created, activity)
		result.Activities = append(result.Activities, entry)
	}
	unit.Activities = created

	if s.registry != nil {
		if err := s.registry.Create(ctx, &unit); err != nil {
			// the remote unit exists already, so the registration still succeeds
			s.logger.Error("failed to record unit locally", zap.String("unit_id", remoteID), zap.Error(err))
		}
	}
	result.Unit = unit

	s.logger.Sugar().Infow("unit registered",
		"unit_id", remoteID,
		"course_id", unit.CourseID,
		"activities", result.Total,
		"failed", result.Failed,
	)
	return result, nil
}

// ListByCourse returns the units of a course, preferring the backend and
// falling back to the local registry when it fails or has none.
func (s *UnitService) ListByCourse(ctx context.Context, courseID string) ([]models.Unit, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	units, err := s.backend.UnitsByCourse(ctx, courseID)
	if err != nil {
		s.logger.Warn("units backend unavailable, using local registry", zap.String("course_id", courseID), zap.Error(err))
	}
	if err == nil && len(units) > 0 {
		return units, nil
	}
	if s.registry == nil {
		return []models.Unit{}, nil
	}
	local, regErr := s.registry.ListByCourse(ctx, courseID)
	if regErr != nil {
		return nil, appErrors.Wrap(regErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list units")
	}
	if local == nil {
		local = []models.Unit{}
	}
	return local, nil
}

// ListBySubject returns locally registered units of a subject.
func (s *UnitService) ListBySubject(ctx context.Context, subjectID string) ([]models.Unit, error) {
	units, err := s.registry.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list units")
	}
	if units == nil {
		units = []models.Unit{}
	}
	return units, nil
}

// Delete removes a unit from the local registry.
func (s *UnitService) Delete(ctx context.Context, id string) error {
	deleted, err := s.registry.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete unit")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "unit not found")
	}
	return nil
}

// Stats summarises the local registry.
func (s *UnitService) Stats(ctx context.Context) (*models.UnitStats, error) {
	stats, err := s.registry.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit stats")
	}
	return stats, nil
}

// draftToUnit is the single place where percentages become fractions.
func draftToUnit(draft dto.UnitDraft) models.Unit {
	activities := make(models.Activities, 0, len(draft.Activities))
	for _, a := range draft.Activities {
		activities = append(activities, models.Activity{
			Name:        strings.TrimSpace(a.Name),
			Description: strings.TrimSpace(a.Description),
			Weight:      models.PercentToFraction(a.WeightPercent),
		})
	}
	subjectID := draft.SubjectID
	if subjectID == "" {
		subjectID = draft.CourseID
	}
	return models.Unit{
		SubjectID:      subjectID,
		CourseID:       strings.TrimSpace(draft.CourseID),
		SequenceNumber: draft.SequenceNumber,
		Name:           strings.TrimSpace(draft.Name),
		Description:    strings.TrimSpace(draft.Description),
		Activities:     activities,
	}
}

type studentsDirectory interface {
	Basic(ctx context.Context) ([]models.Student, error)
}

// GradingSourceService feeds gradebooks with units and the student directory.
type GradingSourceService struct {
	units    *UnitService
	students studentsDirectory
}

// NewGradingSourceService constructs the gradebook source.
func NewGradingSourceService(units *UnitService, students studentsDirectory) *GradingSourceService {
	return &GradingSourceService{units: units, students: students}
}

// Units implements GradingSource.
func (g *GradingSourceService) Units(ctx context.Context, courseID string) ([]models.Unit, error) {
	return g.units.ListByCourse(ctx, courseID)
}

// Students implements GradingSource. The directory is not scoped by subject.
func (g *GradingSourceService) Students(ctx context.Context, _ string) ([]models.Student, error) {
	return g.students.Basic(ctx)
}
