package dto

// CreateExportRequest queues an asynchronous export.
type CreateExportRequest struct {
	Type      string `json:"type" validate:"required,oneof=grades students attendance"`
	Format    string `json:"format" validate:"required,oneof=csv xlsx pdf"`
	SubjectID string `json:"subject_id"`
	TutorID   string `json:"tutor_id"`
	Limit     int    `json:"limit" validate:"omitempty,min=1,max=500"`
}

// ExportJobResponse describes a queued export.
type ExportJobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
