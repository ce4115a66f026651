package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// EnrollmentCSVFilename is the part name used when re-serialised rows are sent.
const EnrollmentCSVFilename = "lista-alumnos.csv"

// StudentsClient talks to the students/subjects service.
type StudentsClient struct {
	c *Client
}

// NewStudentsClient wraps a backend client.
func NewStudentsClient(c *Client) *StudentsClient {
	return &StudentsClient{c: c}
}

type studentRecordRow struct {
	Matricula          flexString `json:"matricula"`
	Nombre             flexString `json:"nombre"`
	Carrera            flexString `json:"carrera"`
	EstatusAlumno      flexString `json:"estatusAlumno"`
	CuatrimestreActual flexString `json:"cuatrimestreActual"`
	GrupoActual        flexString `json:"grupoActual"`
	Materia            flexString `json:"materia"`
	Periodo            flexString `json:"periodo"`
	EstatusMateria     flexString `json:"estatusMateria"`
	Final              flexString `json:"final"`
	Extra              flexString `json:"extra"`
	EstatusCardex      flexString `json:"estatusCardex"`
	PeriodoCursado     flexString `json:"periodoCursado"`
	PlanEstudiosClave  flexString `json:"planEstudiosClave"`
	Creditos           flexString `json:"creditos"`
	TutorAcademico     flexString `json:"tutorAcademico"`
}

// Records returns the full kardex listing, one row per student and subject.
func (s *StudentsClient) Records(ctx context.Context) ([]models.StudentRecord, error) {
	var rows []studentRecordRow
	if err := s.c.GetList(ctx, "/alumnos/listar", &rows); err != nil {
		return nil, err
	}
	records := make([]models.StudentRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.StudentRecord{
			Matricula:          r.Matricula.String(),
			Nombre:             r.Nombre.String(),
			Carrera:            r.Carrera.String(),
			EstatusAlumno:      r.EstatusAlumno.String(),
			CuatrimestreActual: r.CuatrimestreActual.String(),
			GrupoActual:        r.GrupoActual.String(),
			Materia:            r.Materia.String(),
			Periodo:            r.Periodo.String(),
			EstatusMateria:     r.EstatusMateria.String(),
			Final:              r.Final.String(),
			Extra:              r.Extra.String(),
			EstatusCardex:      r.EstatusCardex.String(),
			PeriodoCursado:     r.PeriodoCursado.String(),
			PlanEstudiosClave:  r.PlanEstudiosClave.String(),
			Creditos:           r.Creditos.String(),
			TutorAcademico:     r.TutorAcademico.String(),
		})
	}
	return records, nil
}

type basicStudent struct {
	ID        flexString `json:"id"`
	Matricula flexString `json:"matricula"`
	Nombre    string     `json:"nombre"`
	Grupo     flexString `json:"grupo"`
}

// Basic returns registered students with only identity fields.
func (s *StudentsClient) Basic(ctx context.Context) ([]models.Student, error) {
	var rows []basicStudent
	if err := s.c.GetList(ctx, "/alumnos/estudiantes-basica", &rows); err != nil {
		return nil, err
	}
	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		id := row.ID.String()
		if id == "" {
			id = row.Matricula.String()
		}
		students = append(students, models.Student{ID: id, Matricula: row.Matricula.String(), Name: row.Nombre, GroupID: row.Grupo.String()})
	}
	return students, nil
}

type subjectRow struct {
	ID     flexString `json:"id"`
	Nombre string     `json:"nombre"`
	Clave  string     `json:"clave"`
}

// Subjects lists every subject.
func (s *StudentsClient) Subjects(ctx context.Context) ([]models.Subject, error) {
	var rows []subjectRow
	if err := s.c.GetList(ctx, "/api/materias/listar", &rows); err != nil {
		return nil, err
	}
	subjects := make([]models.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, models.Subject{ID: row.ID.String(), Name: row.Nombre, Code: row.Clave})
	}
	return subjects, nil
}

// UploadStudents forwards a roster file to the bulk loader under field archivo.
func (s *StudentsClient) UploadStudents(ctx context.Context, filename string, data []byte) (*models.UploadReport, error) {
	raw, err := s.c.PostMultipart(ctx, "/alumnos/cargar-csv", nil, FilePart{Field: "archivo", Filename: filename, ContentType: "text/csv", Data: data})
	if err != nil {
		return nil, err
	}
	return decodeReport(raw)
}

// UploadEnrollment registers a tutor/group list.
func (s *StudentsClient) UploadEnrollment(ctx context.Context, tutorID, groupID, filename string, data []byte) (*models.UploadReport, error) {
	if filename == "" {
		filename = EnrollmentCSVFilename
	}
	fields := map[string]string{"tutor_id": tutorID, "grupo_id": groupID}
	raw, err := s.c.PostMultipart(ctx, "/api/inscripciones/", fields, FilePart{Field: "csv", Filename: filename, ContentType: "text/csv", Data: data})
	if err != nil {
		return nil, err
	}
	return decodeReport(raw)
}

type enrollmentRow struct {
	ID               flexString `json:"id"`
	AsignaturaNombre string     `json:"asignatura_nombre"`
	Asignatura       string     `json:"asignatura"`
	GrupoNumero      flexString `json:"grupo_numero"`
	Grupo            flexString `json:"grupo"`
	TutorNombre      string     `json:"tutor_nombre"`
	Profesor         string     `json:"profesor"`
	TutorID          flexString `json:"tutor_id"`
}

// EnrollmentLists returns registered lists without their students.
func (s *StudentsClient) EnrollmentLists(ctx context.Context) ([]models.EnrollmentList, error) {
	var rows []enrollmentRow
	if err := s.c.GetList(ctx, "/api/inscripciones/", &rows); err != nil {
		return nil, err
	}
	lists := make([]models.EnrollmentList, 0, len(rows))
	for _, row := range rows {
		lists = append(lists, models.EnrollmentList{
			ID:        row.ID.String(),
			Subject:   firstNonEmpty(row.AsignaturaNombre, row.Asignatura, "Asignatura no disponible"),
			Group:     firstNonEmpty(row.GrupoNumero.String(), row.Grupo.String()),
			Professor: firstNonEmpty(row.TutorNombre, row.Profesor, "Profesor no disponible"),
			TutorID:   row.TutorID.String(),
		})
	}
	return lists, nil
}

// decodeReport reads the ingestion summary, which may be bare or under data.
func decodeReport(raw []byte) (*models.UploadReport, error) {
	var report models.UploadReport
	if err := DecodeData(raw, &report); err != nil {
		return nil, fmt.Errorf("decode upload report: %w", err)
	}
	if report.Errors == nil {
		report.Errors = []json.RawMessage{}
	}
	return &report, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
