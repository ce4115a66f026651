package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type rosterService interface {
	uploadChecker
	Parse(file service.RosterFile) (*models.ParseResult, error)
	Validate(req dto.ValidateRosterRequest) dto.ValidationResult
	Upload(ctx context.Context, dest models.UploadDestination, meta models.UploadMeta, file service.RosterFile) (*models.UploadResult, error)
	Students(ctx context.Context) ([]models.StudentRecord, error)
	ExportStudents(ctx context.Context) (*service.Download, error)
	Template() (*service.Download, error)
	ExportRoster(req dto.ExportRosterRequest) (*service.Download, error)
	EnrollmentLists(ctx context.Context) ([]models.EnrollmentList, error)
}

// RosterHandler exposes student import and export endpoints.
type RosterHandler struct {
	rosters rosterService
}

// NewRosterHandler constructs handler.
func NewRosterHandler(rosters rosterService) *RosterHandler {
	return &RosterHandler{rosters: rosters}
}

// Parse godoc
// @Summary Preview a roster file
// @Description Parses a .csv or .xlsx roster and reports accepted and rejected rows
// @Tags Rosters
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Roster file"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /rosters/parse [post]
func (h *RosterHandler) Parse(c *gin.Context) {
	file, ok := readUpload(c, h.rosters)
	if !ok {
		return
	}
	result, err := h.rosters.Parse(file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Validate godoc
// @Summary Check a roster batch before upload
// @Tags Rosters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ValidateRosterRequest true "Batch"
// @Success 200 {object} response.Envelope
// @Router /rosters/validate [post]
func (h *RosterHandler) Validate(c *gin.Context) {
	var req dto.ValidateRosterRequest
	if !bindJSON(c, &req) {
		return
	}
	response.JSON(c, http.StatusOK, h.rosters.Validate(req))
}

// Upload godoc
// @Summary Upload a roster to the students service
// @Tags Rosters
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Roster file"
// @Param destination formData string false "students or enrollment" default(students)
// @Param tutor_id formData string false "Tutor, required for enrollment lists"
// @Param group_id formData string false "Group, required for enrollment lists"
// @Param forward_original formData bool false "Forward the file as uploaded"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /rosters/upload [post]
func (h *RosterHandler) Upload(c *gin.Context) {
	file, ok := readUpload(c, h.rosters)
	if !ok {
		return
	}
	dest := models.UploadDestination(strings.TrimSpace(c.PostForm("destination")))
	if dest == "" {
		dest = models.DestinationStudents
	}
	forward, _ := strconv.ParseBool(c.PostForm("forward_original"))
	meta := models.UploadMeta{
		TutorID:         strings.TrimSpace(c.PostForm("tutor_id")),
		GroupID:         strings.TrimSpace(c.PostForm("group_id")),
		ForwardOriginal: forward,
	}
	result, err := h.rosters.Upload(c.Request.Context(), dest, meta, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Students godoc
// @Summary List student records
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *RosterHandler) Students(c *gin.Context) {
	records, err := h.rosters.Students(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"total": len(records)})
}

// ExportStudents godoc
// @Summary Download every student record as CSV
// @Tags Students
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /students/export [get]
func (h *RosterHandler) ExportStudents(c *gin.Context) {
	download, err := h.rosters.ExportStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDownload(c, download)
}

// Template godoc
// @Summary Download the empty upload template
// @Tags Students
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /students/template [get]
func (h *RosterHandler) Template(c *gin.Context) {
	download, err := h.rosters.Template()
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDownload(c, download)
}

// ExportRoster godoc
// @Summary Serialise a roster as Matricula,Nombre CSV
// @Tags Rosters
// @Accept json
// @Produce text/csv
// @Security BearerAuth
// @Param payload body dto.ExportRosterRequest true "Roster"
// @Success 200 {file} file
// @Router /rosters/export [post]
func (h *RosterHandler) ExportRoster(c *gin.Context) {
	var req dto.ExportRosterRequest
	if !bindJSON(c, &req) {
		return
	}
	download, err := h.rosters.ExportRoster(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDownload(c, download)
}

// EnrollmentLists godoc
// @Summary Registered enrollment lists with tutorados
// @Tags Rosters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *RosterHandler) EnrollmentLists(c *gin.Context) {
	lists, err := h.rosters.EnrollmentLists(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lists)
}
