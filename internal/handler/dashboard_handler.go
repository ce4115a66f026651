package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type dashboardService interface {
	Director(ctx context.Context, userID string) (*models.DirectorDashboard, bool, error)
	Tutor(ctx context.Context, tutorID string) (*models.TutorDashboard, bool, error)
	Teacher(ctx context.Context, teacherID string) (*models.TeacherDashboard, bool, error)
	Invalidate(ctx context.Context, role models.UserRole) error
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func dashboardMeta(hit bool, degraded []string, start time.Time) map[string]interface{} {
	meta := map[string]interface{}{
		"cache_hit":          hit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
	if len(degraded) > 0 {
		meta["degraded"] = degraded
	}
	return meta
}

// Director godoc
// @Summary Director dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboards/director [get]
func (h *DashboardHandler) Director(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	start := time.Now()
	dash, hit, err := h.service.Director(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, dashboardMeta(hit, dash.Degraded, start))
}

// Tutor godoc
// @Summary Tutor dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboards/tutor [get]
func (h *DashboardHandler) Tutor(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	start := time.Now()
	dash, hit, err := h.service.Tutor(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, dashboardMeta(hit, dash.Degraded, start))
}

// Teacher godoc
// @Summary Docente dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboards/docente [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	start := time.Now()
	dash, hit, err := h.service.Teacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, dashboardMeta(hit, dash.Degraded, start))
}

// Invalidate godoc
// @Summary Drop cached dashboards
// @Tags Dashboard
// @Security BearerAuth
// @Param role query string false "director, tutor or docente; all when empty"
// @Success 204
// @Router /dashboards/cache [delete]
func (h *DashboardHandler) Invalidate(c *gin.Context) {
	role := models.UserRole(c.Query("role"))
	switch role {
	case "", models.RoleDirector, models.RoleTutor, models.RoleTeacher:
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown role"))
		return
	}
	if err := h.service.Invalidate(c.Request.Context(), role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
