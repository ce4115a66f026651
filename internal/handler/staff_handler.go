package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type staffService interface {
	List(ctx context.Context, staffType string) ([]models.StaffMember, error)
}

// StaffHandler exposes the personnel listing.
type StaffHandler struct {
	staff staffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff staffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// List godoc
// @Summary List school staff
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param tipo query string false "Staff type filter"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	members, err := h.staff.List(c.Request.Context(), c.Query("tipo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, map[string]interface{}{"total": len(members)})
}
