package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

const defaultHistoryLimit = 30

type attendanceService interface {
	GetRoll(ctx context.Context, tutorID, date string) (*models.AttendanceRoll, error)
	SubmitRoll(ctx context.Context, tutorID string, req dto.SubmitAttendanceRequest) (json.RawMessage, error)
	ImportRoll(ctx context.Context, tutorID, date string, file service.RosterFile) (*models.AttendanceImport, error)
	History(ctx context.Context, tutorID string, limit int) ([]models.AttendanceHistoryEntry, error)
	ExportRoll(ctx context.Context, tutorID, date string) (*service.Download, error)
}

// AttendanceHandler exposes the tutor's daily roll. The tutor is always the
// authenticated user.
type AttendanceHandler struct {
	attendance attendanceService
	uploads    uploadChecker
}

// NewAttendanceHandler constructs handler. uploads bounds imported files.
func NewAttendanceHandler(attendance attendanceService, uploads uploadChecker) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, uploads: uploads}
}

// Roll godoc
// @Summary Attendance roll of a date
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Roll(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	roll, err := h.attendance.GetRoll(c.Request.Context(), claims.UserID, c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roll, map[string]interface{}{"counts": roll.Counts()})
}

// Submit godoc
// @Summary Submit a full roll
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SubmitAttendanceRequest true "Roll"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.SubmitAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.attendance.SubmitRoll(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Import godoc
// @Summary Submit a roll from a spreadsheet
// @Tags Attendance
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "matricula,estado[,observaciones] sheet"
// @Param date formData string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance/import [post]
func (h *AttendanceHandler) Import(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	file, ok := readUpload(c, h.uploads)
	if !ok {
		return
	}
	result, err := h.attendance.ImportRoll(c.Request.Context(), claims.UserID, c.PostForm("date"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// History godoc
// @Summary Recent attendance rows
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Row limit" default(30)
// @Success 200 {object} response.Envelope
// @Router /attendance/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	history, err := h.attendance.History(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history)
}

// Export godoc
// @Summary Download a roll as CSV
// @Tags Attendance
// @Produce text/csv
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {file} file
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	download, err := h.attendance.ExportRoll(c.Request.Context(), claims.UserID, c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDownload(c, download)
}
