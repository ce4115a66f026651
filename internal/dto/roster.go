package dto

import "github.com/noah-isme/school-portal-gateway/internal/models"

// ValidateRosterRequest asks for a batch check without uploading.
type ValidateRosterRequest struct {
	Destination models.UploadDestination `json:"destination"`
	TutorID     string                   `json:"tutor_id"`
	GroupID     string                   `json:"group_id"`
	Students    []models.RosterEntry     `json:"students"`
}

// ExportRosterRequest serialises an in-memory list.
type ExportRosterRequest struct {
	Filename string               `json:"filename"`
	Students []models.RosterEntry `json:"students" validate:"required,min=1,dive"`
}
