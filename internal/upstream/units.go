package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// UnitsClient talks to the units/activities/courses service.
type UnitsClient struct {
	c *Client
}

// NewUnitsClient wraps a backend client.
func NewUnitsClient(c *Client) *UnitsClient {
	return &UnitsClient{c: c}
}

type remoteActivity struct {
	ID              flexString `json:"id"`
	NombreActividad string     `json:"nombre_actividad"`
	Nombre          string     `json:"nombre"`
	Descripcion     string     `json:"descripcion"`
	Ponderacion     flexFloat  `json:"ponderacion"`
}

type remoteUnit struct {
	ID           flexString       `json:"id"`
	CursoID      flexString       `json:"curso_id"`
	NumeroUnidad flexFloat        `json:"numero_unidad"`
	NombreUnidad string           `json:"nombre_unidad"`
	Descripcion  string           `json:"descripcion"`
	Actividades  []remoteActivity `json:"actividades"`
}

// NormalizeWeight returns a fraction. Values above one are taken as
// percentages and divided once. Exactly 1 stays 1.0 (100%), so a legacy
// weight of 1% cannot be told apart; UnitsByCourse logs units whose
// normalized weights do not add up to one.
func NormalizeWeight(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

func (u remoteUnit) toModel(courseID string) models.Unit {
	activities := make(models.Activities, 0, len(u.Actividades))
	for _, a := range u.Actividades {
		name := a.NombreActividad
		if name == "" {
			name = a.Nombre
		}
		activities = append(activities, models.Activity{
			ID:          a.ID.String(),
			Name:        name,
			Description: a.Descripcion,
			Weight:      NormalizeWeight(float64(a.Ponderacion)),
		})
	}
	if c := u.CursoID.String(); c != "" {
		courseID = c
	}
	remoteID := u.ID.String()
	return models.Unit{
		ID:             remoteID,
		RemoteID:       &remoteID,
		CourseID:       courseID,
		SequenceNumber: int(u.NumeroUnidad),
		Name:           u.NombreUnidad,
		Description:    u.Descripcion,
		Activities:     activities,
	}
}

// UnitsByCourse returns a course's units with their activities.
func (s *UnitsClient) UnitsByCourse(ctx context.Context, courseID string) ([]models.Unit, error) {
	var rows []remoteUnit
	path := fmt.Sprintf("/unidades/unidades/curso/%s/con-actividades", url.PathEscape(courseID))
	if err := s.c.GetList(ctx, path, &rows); err != nil {
		return nil, err
	}
	units := make([]models.Unit, 0, len(rows))
	for _, row := range rows {
		unit := row.toModel(courseID)
		if len(unit.Activities) > 0 && !unit.WeightsBalanced() {
			s.c.logger.Warn("unit weights do not sum to 1 after normalization",
				zap.String("unit_id", unit.ID),
				zap.String("course_id", unit.CourseID),
				zap.Float64("weight_sum", unit.WeightSum()))
		}
		units = append(units, unit)
	}
	return units, nil
}

type createUnitPayload struct {
	CursoID      string `json:"curso_id"`
	NumeroUnidad int    `json:"numero_unidad"`
	NombreUnidad string `json:"nombre_unidad"`
	Descripcion  string `json:"descripcion"`
}

type createActivityPayload struct {
	UnidadID        string  `json:"unidad_id"`
	NombreActividad string  `json:"nombre_actividad"`
	Descripcion     string  `json:"descripcion"`
	Ponderacion     float64 `json:"ponderacion"`
}

type createdID struct {
	ID   flexString      `json:"id"`
	Data json.RawMessage `json:"data"`
}

func decodeCreatedID(raw []byte) (string, error) {
	var body createdID
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode created resource: %w", err)
	}
	if present(body.Data) {
		var nested createdID
		if err := json.Unmarshal(body.Data, &nested); err == nil && nested.ID != "" {
			return nested.ID.String(), nil
		}
	}
	if body.ID == "" {
		return "", fmt.Errorf("created resource without id")
	}
	return body.ID.String(), nil
}

// CreateUnit creates a unit and returns its remote id.
func (s *UnitsClient) CreateUnit(ctx context.Context, unit models.Unit) (string, error) {
	raw, err := s.c.PostJSON(ctx, "/unidades/unidades", createUnitPayload{
		CursoID:      unit.CourseID,
		NumeroUnidad: unit.SequenceNumber,
		NombreUnidad: unit.Name,
		Descripcion:  unit.Description,
	})
	if err != nil {
		return "", err
	}
	return decodeCreatedID(raw)
}

// CreateActivity attaches an activity to a remote unit. Weight is a fraction.
func (s *UnitsClient) CreateActivity(ctx context.Context, unitID string, activity models.Activity) (string, error) {
	raw, err := s.c.PostJSON(ctx, "/actividades/actividades", createActivityPayload{
		UnidadID:        unitID,
		NombreActividad: activity.Name,
		Descripcion:     activity.Description,
		Ponderacion:     activity.Weight,
	})
	if err != nil {
		return "", err
	}
	return decodeCreatedID(raw)
}

type courseRow struct {
	ID           flexString `json:"id"`
	AsignaturaID flexString `json:"asignatura_id"`
	Nombre       string     `json:"nombre"`
	GrupoID      flexString `json:"grupo_id"`
	ProfesorID   flexString `json:"profesor_id"`
}

// CoursesByTeacher lists the courses assigned to a teacher.
func (s *UnitsClient) CoursesByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	var rows []courseRow
	if err := s.c.GetList(ctx, "/curso/cursos/profesor/"+url.PathEscape(teacherID), &rows); err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		teacher := row.ProfesorID.String()
		if teacher == "" {
			teacher = teacherID
		}
		courses = append(courses, models.Course{
			ID:        row.ID.String(),
			SubjectID: row.AsignaturaID.String(),
			Name:      row.Nombre,
			GroupID:   row.GrupoID.String(),
			TeacherID: teacher,
		})
	}
	return courses, nil
}
