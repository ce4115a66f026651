package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/pkg/export"
	"github.com/noah-isme/school-portal-gateway/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type gradesSource interface {
	AllGrades(ctx context.Context) (models.GradeRegistry, error)
}

type studentsSource interface {
	Students(ctx context.Context) ([]models.StudentRecord, error)
}

type attendanceHistorySource interface {
	History(ctx context.Context, tutorID string, limit int) ([]models.AttendanceHistoryEntry, error)
}

// ExportSources groups the datasets an export can be built from.
type ExportSources struct {
	Grades     gradesSource
	Students   studentsSource
	Attendance attendanceHistorySource
}

// ExportConfig controls export file generation.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult describes a stored export file.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       export.Format
	ExpiresAt    time.Time
}

// ExportService renders datasets to files and signs their download links.
type ExportService struct {
	sources   ExportSources
	storage   fileStorage
	signer    *storage.SignedURLSigner
	renderers export.Renderers
	cfg       ExportConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. A nil renderer set uses the
// built-in CSV, XLSX and PDF renderers.
func NewExportService(sources ExportSources, store fileStorage, signer *storage.SignedURLSigner, renderers export.Renderers, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderers == nil {
		renderers = export.DefaultRenderers()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		sources:   sources,
		storage:   store,
		signer:    signer,
		renderers: renderers,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate builds the job dataset, stores the rendered file and returns its
// signed download link.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	format := export.Format(job.Params.Format)
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported export format %q", job.Params.Format)
	}
	dataset, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}
	body, err := s.renderers.Render(format, dataset)
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", format, err)
	}
	relPath, err := s.storage.Save(s.buildFilename(job), body)
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("export generated", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(body)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates a download token.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.Token, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to a stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, or the configured result TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	scope := job.Params.SubjectID
	if scope == "" {
		scope = job.Params.TutorID
	}
	return fmt.Sprintf("%s_%s_%s.%s",
		strings.ToLower(string(job.Type)),
		sanitizeFilename(scope),
		s.now().UTC().Format("20060102_150405"),
		job.Params.Format,
	)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, error) {
	switch job.Type {
	case models.ExportTypeGrades:
		registry, err := s.sources.Grades.AllGrades(ctx)
		if err != nil {
			return export.Dataset{}, err
		}
		return GradesDataset(registry, job.Params.SubjectID), nil
	case models.ExportTypeStudents:
		records, err := s.sources.Students.Students(ctx)
		if err != nil {
			return export.Dataset{}, err
		}
		if job.Params.Limit > 0 && len(records) > job.Params.Limit {
			records = records[:job.Params.Limit]
		}
		return StudentsDataset(records), nil
	case models.ExportTypeAttendance:
		if job.Params.TutorID == "" {
			return export.Dataset{}, fmt.Errorf("attendance export requires a tutor")
		}
		history, err := s.sources.Attendance.History(ctx, job.Params.TutorID, job.Params.Limit)
		if err != nil {
			return export.Dataset{}, err
		}
		return HistoryDataset(history), nil
	default:
		return export.Dataset{}, fmt.Errorf("unsupported export type %s", job.Type)
	}
}

// GradeExportHeaders is the column order of grade exports.
var GradeExportHeaders = []string{"Materia", "Alumno", "Unidad", "Actividad", "Calificacion"}

// GradesDataset flattens the grade registry into one row per score. An empty
// subjectID exports every subject.
func GradesDataset(registry models.GradeRegistry, subjectID string) export.Dataset {
	rows := make([]map[string]string, 0)
	for _, subject := range sortedKeys(registry) {
		if subjectID != "" && subject != subjectID {
			continue
		}
		snapshot := registry[subject]
		for _, student := range sortedKeys(snapshot) {
			units := snapshot[student]
			for _, unit := range sortedKeys(units) {
				activities := units[unit]
				for _, activity := range sortedKeys(activities) {
					rows = append(rows, map[string]string{
						"Materia":      subject,
						"Alumno":       student,
						"Unidad":       unit,
						"Actividad":    activity,
						"Calificacion": activities[activity],
					})
				}
			}
		}
	}
	return export.Dataset{Title: "Calificaciones", Headers: GradeExportHeaders, Rows: rows}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
