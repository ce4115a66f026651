package dto

// CreateIncidentRequest records an intervention.
type CreateIncidentRequest struct {
	Matricula   string `json:"matricula_estudiante"`
	SubjectID   string `json:"materia_id"`
	TutorID     string `json:"tutor_id"`
	Type        string `json:"tipoDeIntervencion"`
	Description string `json:"descripcion"`
}
