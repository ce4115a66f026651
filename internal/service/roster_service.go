package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/export"
)

const defaultMaxUploadBytes int64 = 10 << 20

type rosterBackend interface {
	Records(ctx context.Context) ([]models.StudentRecord, error)
	UploadStudents(ctx context.Context, filename string, data []byte) (*models.UploadReport, error)
	UploadEnrollment(ctx context.Context, tutorID, groupID, filename string, data []byte) (*models.UploadReport, error)
	EnrollmentLists(ctx context.Context) ([]models.EnrollmentList, error)
}

type tutoradosReader interface {
	Tutorados(ctx context.Context, tutorID string) ([]models.Tutorado, error)
}

// RosterFile is an uploaded roster as received over HTTP.
type RosterFile struct {
	Filename string
	Data     []byte
}

// RosterServiceParams groups RosterService dependencies.
type RosterServiceParams struct {
	Backend        rosterBackend
	Tutorados      tutoradosReader
	Validator      *validator.Validate
	Logger         *zap.Logger
	MaxUploadBytes int64
	Now            func() time.Time
}

// RosterService parses, checks and forwards student rosters, and renders
// roster downloads.
type RosterService struct {
	backend   rosterBackend
	tutorados tutoradosReader
	validator *validator.Validate
	logger    *zap.Logger
	maxBytes  int64
	csv       export.Renderer
	plainCSV  export.Renderer
	now       func() time.Time
}

// NewRosterService constructs a RosterService.
func NewRosterService(params RosterServiceParams) *RosterService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.MaxUploadBytes <= 0 {
		params.MaxUploadBytes = defaultMaxUploadBytes
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &RosterService{
		backend:   params.Backend,
		tutorados: params.Tutorados,
		validator: params.Validator,
		logger:    params.Logger,
		maxBytes:  params.MaxUploadBytes,
		csv:       export.NewQuotedCSVExporter(),
		plainCSV:  export.NewCSVExporter(),
		now:       params.Now,
	}
}

// MaxUploadBytes is the accepted roster size.
func (s *RosterService) MaxUploadBytes() int64 { return s.maxBytes }

// CheckFile rejects oversized or unsupported files before parsing.
func (s *RosterService) CheckFile(filename string, size int64) (RosterFileKind, error) {
	kind, err := DetectRosterKind(filename)
	if err != nil {
		return "", err
	}
	if size > s.maxBytes {
		return "", appErrors.Clone(appErrors.ErrFileTooLarge,
			fmt.Sprintf("file exceeds the maximum upload size of %d MB", s.maxBytes>>20))
	}
	if size == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	return kind, nil
}

// Parse reads a student roster without uploading it.
func (s *RosterService) Parse(file RosterFile) (*models.ParseResult, error) {
	if _, err := s.CheckFile(file.Filename, int64(len(file.Data))); err != nil {
		return nil, err
	}
	return ParseRoster(file.Filename, file.Data, models.StudentRosterSchema)
}

// ValidateBeforeUpload returns every problem that blocks an upload. Values
// with commas are refused because the enrollment service splits lines naively.
func ValidateBeforeUpload(entries []models.RosterEntry, dest models.UploadDestination, meta models.UploadMeta) []string {
	errs := destinationErrors(dest, meta)
	if len(entries) == 0 {
		return append(errs, "no valid students to upload")
	}

	counts := make(map[string]int, len(entries))
	order := make([]string, 0)
	for i, entry := range entries {
		row := i + 1
		matricula := strings.TrimSpace(entry.Matricula)
		nombre := strings.TrimSpace(entry.Nombre)
		if matricula == "" || nombre == "" {
			errs = append(errs, fmt.Sprintf("row %d: matricula and nombre are required", row))
		}
		if strings.Contains(entry.Matricula, ",") || strings.Contains(entry.Nombre, ",") {
			errs = append(errs, fmt.Sprintf("row %d: values must not contain commas", row))
		}
		if matricula == "" {
			continue
		}
		if counts[matricula] == 1 {
			order = append(order, matricula)
		}
		counts[matricula]++
	}
	if len(order) > 0 {
		errs = append(errs, "duplicate matriculas: "+strings.Join(order, ", "))
	}
	return errs
}

func destinationErrors(dest models.UploadDestination, meta models.UploadMeta) []string {
	errs := make([]string, 0)
	if dest != models.DestinationEnrollment {
		return errs
	}
	if strings.TrimSpace(meta.TutorID) == "" {
		errs = append(errs, "tutor is required for enrollment lists")
	}
	if strings.TrimSpace(meta.GroupID) == "" {
		errs = append(errs, "group is required for enrollment lists")
	}
	return errs
}

// Validate checks an in-memory batch.
func (s *RosterService) Validate(req dto.ValidateRosterRequest) dto.ValidationResult {
	dest := req.Destination
	if dest == "" {
		dest = models.DestinationStudents
	}
	errs := ValidateBeforeUpload(req.Students, dest, models.UploadMeta{TutorID: req.TutorID, GroupID: req.GroupID})
	return dto.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Upload parses and checks a roster, then forwards it. The backend's report is
// returned unchanged and never retried.
func (s *RosterService) Upload(ctx context.Context, dest models.UploadDestination, meta models.UploadMeta, file RosterFile) (*models.UploadResult, error) {
	if dest != models.DestinationStudents && dest != models.DestinationEnrollment {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown upload destination")
	}
	kind, err := s.CheckFile(file.Filename, int64(len(file.Data)))
	if err != nil {
		return nil, err
	}

	result := &models.UploadResult{Destination: dest, Rejected: []models.RejectedRow{}}
	payload := file.Data
	filename := file.Filename
	if kind == RosterLegacyXLS {
		if dest == models.DestinationEnrollment && !meta.ForwardOriginal {
			return nil, appErrors.Clone(appErrors.ErrUnsupportedFile, "legacy .xls enrollment lists must be forwarded as original files")
		}
		if errs := destinationErrors(dest, meta); len(errs) > 0 {
			return nil, appErrors.WithDetails(appErrors.ErrValidation, "", errs)
		}
		s.logger.Info("forwarding legacy workbook without local checks", zap.String("filename", filename))
	} else {
		parsed, err := ParseRoster(file.Filename, file.Data, models.StudentRosterSchema)
		if err != nil {
			return nil, err
		}
		result.Rejected = parsed.Rejected
		entries := parsed.Entries()
		if errs := ValidateBeforeUpload(entries, dest, meta); len(errs) > 0 {
			return nil, appErrors.WithDetails(appErrors.ErrValidation, "", errs)
		}
		if dest == models.DestinationEnrollment && !meta.ForwardOriginal {
			payload, err = s.plainCSV.Render(rosterDataset(entries, []string{"matricula", "nombre"}))
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode roster")
			}
			filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".csv"
		}
	}

	var report *models.UploadReport
	switch dest {
	case models.DestinationStudents:
		report, err = s.backend.UploadStudents(ctx, filename, payload)
	default:
		report, err = s.backend.UploadEnrollment(ctx, meta.TutorID, meta.GroupID, filename, payload)
	}
	if err != nil {
		s.logger.Error("roster upload failed", zap.String("destination", string(dest)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to upload roster")
	}
	result.Report = *report
	s.logger.Sugar().Infow("roster uploaded",
		"destination", dest,
		"total_rows", report.TotalRows,
		"processed", report.SuccessfullyProcessed,
		"rejected_locally", len(result.Rejected),
	)
	return result, nil
}

func rosterDataset(entries []models.RosterEntry, headers []string) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]string{headers[0]: e.Matricula, headers[1]: e.Nombre})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// Download is a rendered file ready to be served as an attachment.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (s *RosterService) csvDownload(filename string, data export.Dataset) (*Download, error) {
	body, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV")
	}
	return &Download{Filename: filename, ContentType: export.FormatCSV.ContentType(), Data: body}, nil
}

// StudentsDataset renders student records in the fixed export column order.
func StudentsDataset(records []models.StudentRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Columns())
	}
	return export.Dataset{Title: "Alumnos", Headers: models.StudentExportHeaders, Rows: rows}
}

// ExportStudents downloads every student record.
func (s *RosterService) ExportStudents(ctx context.Context) (*Download, error) {
	records, err := s.Students(ctx)
	if err != nil {
		return nil, err
	}
	return s.csvDownload(fmt.Sprintf("alumnos_%s.csv", s.now().Format("2006-01-02")), StudentsDataset(records))
}

// Students lists student records from the backend.
func (s *RosterService) Students(ctx context.Context) ([]models.StudentRecord, error) {
	records, err := s.backend.Records(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load students")
	}
	return records, nil
}

// Template downloads the empty student upload template.
func (s *RosterService) Template() (*Download, error) {
	return s.csvDownload("plantilla_alumnos.csv", export.Dataset{Headers: models.StudentExportHeaders})
}

// ExportRoster serialises an in-memory list as Matricula,Nombre.
func (s *RosterService) ExportRoster(req dto.ExportRosterRequest) (*Download, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster payload")
	}
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "lista_alumnos"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		filename += ".csv"
	}
	return s.csvDownload(filename, rosterDataset(req.Students, []string{"Matricula", "Nombre"}))
}

// EnrollmentLists returns registered lists with each tutor's tutorados. A
// tutor whose students cannot be loaded gets an empty list.
func (s *RosterService) EnrollmentLists(ctx context.Context) ([]models.EnrollmentList, error) {
	lists, err := s.backend.EnrollmentLists(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load enrollment lists")
	}
	byTutor := make(map[string][]models.Student)
	for i := range lists {
		lists[i].Students = []models.Student{}
		tutorID := lists[i].TutorID
		if tutorID == "" || s.tutorados == nil {
			continue
		}
		students, ok := byTutor[tutorID]
		if !ok {
			students = s.tutorStudents(ctx, tutorID)
			byTutor[tutorID] = students
		}
		lists[i].Students = students
	}
	sort.SliceStable(lists, func(i, j int) bool { return lists[i].Subject < lists[j].Subject })
	return lists, nil
}

func (s *RosterService) tutorStudents(ctx context.Context, tutorID string) []models.Student {
	tutorados, err := s.tutorados.Tutorados(ctx, tutorID)
	if err != nil {
		s.logger.Warn("failed to load tutorados", zap.String("tutor_id", tutorID), zap.Error(err))
		return []models.Student{}
	}
	students := make([]models.Student, 0, len(tutorados))
	for _, t := range tutorados {
		students = append(students, models.Student{ID: t.Matricula, Matricula: t.Matricula, Name: t.Nombre, GroupID: t.Grupo})
	}
	return students
}
