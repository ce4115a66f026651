package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/upstream"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

const minIncidentDescriptionLength = 10

type incidentsBackend interface {
	ByTutor(ctx context.Context, tutorID string) ([]models.Incident, error)
	Create(ctx context.Context, incident upstream.NewIncident) (*models.Incident, error)
}

type directoryBackend interface {
	Basic(ctx context.Context) ([]models.Student, error)
	Subjects(ctx context.Context) ([]models.Subject, error)
}

// IncidentService records tutoring interventions and lists them with names.
type IncidentService struct {
	incidents incidentsBackend
	directory directoryBackend
	logger    *zap.Logger
}

// NewIncidentService constructs an IncidentService.
func NewIncidentService(incidents incidentsBackend, directory directoryBackend, logger *zap.Logger) *IncidentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{incidents: incidents, directory: directory, logger: logger}
}

// ValidateIncident returns every problem of a new intervention.
func ValidateIncident(req dto.CreateIncidentRequest) []string {
	errs := make([]string, 0)
	if strings.TrimSpace(req.Matricula) == "" {
		errs = append(errs, "student matricula is required")
	}
	if strings.TrimSpace(req.SubjectID) == "" {
		errs = append(errs, "subject is required")
	}
	if strings.TrimSpace(req.TutorID) == "" {
		errs = append(errs, "tutor is required")
	}
	switch req.Type {
	case "":
		errs = append(errs, "intervention type is required")
	case models.InterventionAcademic, models.InterventionPersonal, models.InterventionHealth:
	default:
		errs = append(errs, "intervention type must be one of "+strings.Join(models.InterventionTypes, ", "))
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Description)) < minIncidentDescriptionLength {
		errs = append(errs, "description must be at least 10 characters")
	}
	return errs
}

// Create validates and records an intervention.
func (s *IncidentService) Create(ctx context.Context, req dto.CreateIncidentRequest) (*models.Incident, error) {
	if errs := ValidateIncident(req); len(errs) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "", errs)
	}
	incident, err := s.incidents.Create(ctx, upstream.NewIncident{
		Matricula:   strings.TrimSpace(req.Matricula),
		SubjectID:   strings.TrimSpace(req.SubjectID),
		TutorID:     strings.TrimSpace(req.TutorID),
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		s.logger.Error("failed to create incident", zap.String("tutor_id", req.TutorID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create incident")
	}
	return incident, nil
}

// ListByTutor returns a tutor's incidents with student and subject names.
// Name lookups that fail leave the names empty.
func (s *IncidentService) ListByTutor(ctx context.Context, tutorID string) ([]models.Incident, error) {
	if strings.TrimSpace(tutorID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tutor id is required")
	}
	var (
		incidents   []models.Incident
		incidentErr error
		students    = []models.Student{}
		subjects    = []models.Subject{}
	)
	fanOut(ctx, s.logger,
		branch{name: "incidents", run: func(ctx context.Context) error {
			incidents, incidentErr = s.incidents.ByTutor(ctx, tutorID)
			return incidentErr
		}},
		branch{name: "students", run: func(ctx context.Context) error {
			list, err := s.directory.Basic(ctx)
			if err == nil {
				students = list
			}
			return err
		}},
		branch{name: "subjects", run: func(ctx context.Context) error {
			list, err := s.directory.Subjects(ctx)
			if err == nil {
				subjects = list
			}
			return err
		}},
	)
	if incidentErr != nil {
		return nil, appErrors.Wrap(incidentErr, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load incidents")
	}
	return enrichIncidents(incidents, students, subjects), nil
}

func enrichIncidents(incidents []models.Incident, students []models.Student, subjects []models.Subject) []models.Incident {
	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.Matricula] = st.Name
	}
	subjectNames := make(map[string]string, len(subjects))
	for _, sub := range subjects {
		subjectNames[sub.ID] = sub.Name
	}
	out := make([]models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc.StudentName == "" {
			inc.StudentName = names[inc.Matricula]
		}
		if inc.SubjectName == "" {
			inc.SubjectName = subjectNames[inc.SubjectID]
		}
		out = append(out, inc)
	}
	return out
}
