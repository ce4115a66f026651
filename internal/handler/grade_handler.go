package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type gradeService interface {
	Gradebook(ctx context.Context, subjectID, courseID string) (*models.GradebookView, error)
	SetScore(ctx context.Context, subjectID string, req dto.SetScoreRequest) (*models.ScoreCell, error)
	CommitScore(ctx context.Context, subjectID string, req dto.CommitScoreRequest) (*models.ScoreCell, error)
	Save(ctx context.Context, subjectID string) (*models.GradebookView, error)
	Discard(subjectID string)
	AllGrades(ctx context.Context) (models.GradeRegistry, error)
}

// GradeHandler exposes the grading grid.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// All godoc
// @Summary All saved grades keyed by subject
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) All(c *gin.Context) {
	registry, err := h.grades.AllGrades(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registry)
}

// Gradebook godoc
// @Summary Gradebook of a subject
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Param course_id query string false "Course whose units are graded, defaults to the loaded draft, then the subject"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grades/{subjectId} [get]
func (h *GradeHandler) Gradebook(c *gin.Context) {
	view, err := h.grades.Gradebook(c.Request.Context(), c.Param("subjectId"), c.Query("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// SetScore godoc
// @Summary Store the raw text of a score cell
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Param payload body dto.SetScoreRequest true "Cell payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grades/{subjectId}/scores [put]
func (h *GradeHandler) SetScore(c *gin.Context) {
	var req dto.SetScoreRequest
	if !bindJSON(c, &req) {
		return
	}
	cell, err := h.grades.SetScore(c.Request.Context(), c.Param("subjectId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cell)
}

// CommitScore godoc
// @Summary Sanitise a score cell
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Param payload body dto.CommitScoreRequest true "Cell payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grades/{subjectId}/scores/commit [post]
func (h *GradeHandler) CommitScore(c *gin.Context) {
	var req dto.CommitScoreRequest
	if !bindJSON(c, &req) {
		return
	}
	cell, err := h.grades.CommitScore(c.Request.Context(), c.Param("subjectId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cell)
}

// Save godoc
// @Summary Persist the working gradebook
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{subjectId}/save [post]
func (h *GradeHandler) Save(c *gin.Context) {
	view, err := h.grades.Save(c.Request.Context(), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Discard godoc
// @Summary Drop unsaved edits
// @Tags Grades
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Success 204
// @Router /grades/{subjectId}/draft [delete]
func (h *GradeHandler) Discard(c *gin.Context) {
	h.grades.Discard(c.Param("subjectId"))
	response.NoContent(c)
}
