package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type unitService interface {
	Validate(draft dto.UnitDraft) dto.ValidationResult
	Register(ctx context.Context, draft dto.UnitDraft) (*models.UnitRegistration, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Unit, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.Unit, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*models.UnitStats, error)
}

// UnitHandler exposes unit authoring endpoints.
type UnitHandler struct {
	units unitService
}

// NewUnitHandler constructs handler.
func NewUnitHandler(units unitService) *UnitHandler {
	return &UnitHandler{units: units}
}

// Validate godoc
// @Summary Check a unit draft without creating it
// @Tags Units
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UnitDraft true "Unit draft, weights in percent"
// @Success 200 {object} response.Envelope
// @Router /units/validate [post]
func (h *UnitHandler) Validate(c *gin.Context) {
	var draft dto.UnitDraft
	if !bindJSON(c, &draft) {
		return
	}
	response.JSON(c, http.StatusOK, h.units.Validate(draft))
}

// Register godoc
// @Summary Create a unit with its activities
// @Tags Units
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UnitDraft true "Unit draft, weights in percent"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /units [post]
func (h *UnitHandler) Register(c *gin.Context) {
	var draft dto.UnitDraft
	if !bindJSON(c, &draft) {
		return
	}
	result, err := h.units.Register(c.Request.Context(), draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ByCourse godoc
// @Summary Units of a course
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /units/course/{courseId} [get]
func (h *UnitHandler) ByCourse(c *gin.Context) {
	units, err := h.units.ListByCourse(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, units, map[string]interface{}{"total": len(units)})
}

// BySubject godoc
// @Summary Registered units of a subject
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /units/subject/{subjectId} [get]
func (h *UnitHandler) BySubject(c *gin.Context) {
	units, err := h.units.ListBySubject(c.Request.Context(), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, units, map[string]interface{}{"total": len(units)})
}

// Delete godoc
// @Summary Remove a registered unit
// @Tags Units
// @Security BearerAuth
// @Param id path string true "Unit ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /units/{id} [delete]
func (h *UnitHandler) Delete(c *gin.Context) {
	if err := h.units.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Registered unit statistics
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /units/stats [get]
func (h *UnitHandler) Stats(c *gin.Context) {
	stats, err := h.units.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
