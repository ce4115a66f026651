package upstream

import (
	"context"
	"net/url"
	"time"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// IncidentsClient talks to the interventions service.
type IncidentsClient struct {
	c *Client
}

// NewIncidentsClient wraps a backend client.
func NewIncidentsClient(c *Client) *IncidentsClient {
	return &IncidentsClient{c: c}
}

type interventionRow struct {
	ID                  flexString `json:"id"`
	MatriculaEstudiante flexString `json:"matriculaEstudiante"`
	MateriaID           flexString `json:"materiaId"`
	TipoDeIntervencion  string     `json:"tipoDeIntervencion"`
	Descripcion         string     `json:"descripcion"`
	Estado              string     `json:"estado"`
	FechaCreacion       string     `json:"fechaCreacion"`
}

func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ByTutor lists the interventions recorded by a tutor.
func (s *IncidentsClient) ByTutor(ctx context.Context, tutorID string) ([]models.Incident, error) {
	var rows []interventionRow
	if err := s.c.GetList(ctx, "/api/intervenciones/tutor/"+url.PathEscape(tutorID), &rows, "intervenciones"); err != nil {
		return nil, err
	}
	incidents := make([]models.Incident, 0, len(rows))
	for _, row := range rows {
		incidents = append(incidents, models.Incident{
			ID:          row.ID.String(),
			Matricula:   row.MatriculaEstudiante.String(),
			SubjectID:   row.MateriaID.String(),
			Type:        row.TipoDeIntervencion,
			Description: row.Descripcion,
			Status:      row.Estado,
			CreatedAt:   parseTimestamp(row.FechaCreacion),
		})
	}
	return incidents, nil
}

// NewIncident is the payload accepted by the interventions service.
type NewIncident struct {
	Matricula   string `json:"matricula_estudiante"`
	SubjectID   string `json:"materia_id"`
	TutorID     string `json:"tutor_id"`
	Type        string `json:"tipoDeIntervencion"`
	Description string `json:"descripcion"`
}

// Create records an intervention and returns the stored incident.
func (s *IncidentsClient) Create(ctx context.Context, incident NewIncident) (*models.Incident, error) {
	raw, err := s.c.PostJSON(ctx, "/api/intervenciones", incident)
	if err != nil {
		return nil, err
	}
	var row interventionRow
	if err := DecodeData(raw, &row); err != nil {
		return nil, err
	}
	status := row.Estado
	if status == "" {
		status = models.IncidentStatusPending
	}
	return &models.Incident{
		ID:          row.ID.String(),
		Matricula:   incident.Matricula,
		SubjectID:   incident.SubjectID,
		Type:        incident.Type,
		Description: incident.Description,
		Status:      status,
		CreatedAt:   parseTimestamp(row.FechaCreacion),
	}, nil
}
