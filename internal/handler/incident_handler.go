package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type incidentService interface {
	Create(ctx context.Context, req dto.CreateIncidentRequest) (*models.Incident, error)
	ListByTutor(ctx context.Context, tutorID string) ([]models.Incident, error)
}

// IncidentHandler exposes tutoring interventions.
type IncidentHandler struct {
	incidents incidentService
}

// NewIncidentHandler constructs handler.
func NewIncidentHandler(incidents incidentService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

// List godoc
// @Summary Interventions recorded by the current user
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /incidents [get]
func (h *IncidentHandler) List(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.incidents.ListByTutor(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, map[string]interface{}{"total": len(list)})
}

// Create godoc
// @Summary Record an intervention
// @Description tutor_id defaults to the current user
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateIncidentRequest true "Intervention"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /incidents [post]
func (h *IncidentHandler) Create(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateIncidentRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.TutorID) == "" {
		req.TutorID = claims.UserID
	}
	incident, err := h.incidents.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, incident)
}
