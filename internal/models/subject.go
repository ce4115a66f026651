package models

// Subject is an academic subject ("materia").
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Course is a subject offering taught by a teacher ("curso").
type Course struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Name      string `json:"name"`
	GroupID   string `json:"group_id,omitempty"`
	TeacherID string `json:"teacher_id,omitempty"`
}
