package models

import "time"

// Intervention kinds accepted by the incidents service.
const (
	InterventionAcademic = "IntervencionesPorProblemasAcademicosPorMateria"
	InterventionPersonal = "IntervencionesPorProblemasPersonales"
	InterventionHealth   = "IntervencionesPorProblemasDeSalud"
)

// InterventionTypes lists the valid intervention kinds.
var InterventionTypes = []string{InterventionAcademic, InterventionPersonal, InterventionHealth}

// IncidentStatusPending marks incidents that still need follow-up.
const IncidentStatusPending = "PENDIENTE"

// Incident is a tutoring intervention recorded against a student.
type Incident struct {
	ID          string    `json:"id"`
	Matricula   string    `json:"matricula"`
	StudentName string    `json:"student_name"`
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
