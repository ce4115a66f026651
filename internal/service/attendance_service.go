package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/upstream"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/export"
)

const dateLayout = "2006-01-02"

type attendanceBackend interface {
	DayList(ctx context.Context, tutorID, date string) (*upstream.DaySheet, error)
	SubmitRoll(ctx context.Context, tutorID string, roll models.AttendanceRoll) (json.RawMessage, error)
	History(ctx context.Context, tutorID string, limit int) ([]models.AttendanceHistoryEntry, error)
}

// AttendanceService takes and reports tutor attendance lists.
type AttendanceService struct {
	backend attendanceBackend
	csv     export.Renderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(backend attendanceBackend, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{backend: backend, csv: export.NewQuotedCSVExporter(), logger: logger, now: time.Now}
}

func (s *AttendanceService) resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return s.now().Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}
	return date, nil
}

// GetRoll merges a tutor's tutorados with the records already taken on date.
// Students without a record default to present.
func (s *AttendanceService) GetRoll(ctx context.Context, tutorID, date string) (*models.AttendanceRoll, error) {
	if strings.TrimSpace(tutorID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tutor id is required")
	}
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	sheet, err := s.backend.DayList(ctx, tutorID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load attendance list")
	}

	existing := make(map[string]models.AttendanceRecord, len(sheet.Existing))
	for _, rec := range sheet.Existing {
		existing[rec.Matricula] = rec
	}
	roll := &models.AttendanceRoll{TutorID: tutorID, Date: date, Records: make([]models.AttendanceRecord, 0, len(sheet.Tutorados))}
	listed := make(map[string]struct{}, len(sheet.Tutorados))
	for _, t := range sheet.Tutorados {
		listed[t.Matricula] = struct{}{}
		rec := models.AttendanceRecord{
			Date:      date,
			Matricula: t.Matricula,
			Name:      t.Nombre,
			Career:    t.Carrera,
			Term:      t.Cuatrimestre,
			Group:     t.Grupo,
			State:     models.AttendancePresent,
		}
		if prev, ok := existing[t.Matricula]; ok {
			rec.State = prev.State
			rec.Notes = prev.Notes
		}
		roll.Records = append(roll.Records, rec)
	}
	// records of students no longer tutored are kept so nothing is lost on resubmit
	for _, rec := range sheet.Existing {
		if _, ok := listed[rec.Matricula]; !ok {
			rec.Date = date
			roll.Records = append(roll.Records, rec)
		}
	}
	return roll, nil
}

// SubmitRoll validates and posts a full roll.
func (s *AttendanceService) SubmitRoll(ctx context.Context, tutorID string, req dto.SubmitAttendanceRequest) (json.RawMessage, error) {
	roll, errs := s.buildRoll(tutorID, req)
	if len(errs) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "", errs)
	}
	resp, err := s.backend.SubmitRoll(ctx, tutorID, roll)
	if err != nil {
		s.logger.Error("attendance submit failed", zap.String("tutor_id", tutorID), zap.String("date", roll.Date), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to submit attendance")
	}
	counts := roll.Counts()
	s.logger.Sugar().Infow("attendance submitted",
		"tutor_id", tutorID,
		"date", roll.Date,
		"present", counts[models.AttendancePresent],
		"absent", counts[models.AttendanceAbsent],
	)
	return resp, nil
}

func (s *AttendanceService) buildRoll(tutorID string, req dto.SubmitAttendanceRequest) (models.AttendanceRoll, []string) {
	errs := make([]string, 0)
	if strings.TrimSpace(tutorID) == "" {
		errs = append(errs, "tutor id is required")
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		errs = append(errs, "date is required")
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		errs = append(errs, "date must use YYYY-MM-DD")
	}
	if len(req.Records) == 0 {
		errs = append(errs, "at least one attendance record is required")
	}
	roll := models.AttendanceRoll{TutorID: tutorID, Date: date, Records: make([]models.AttendanceRecord, 0, len(req.Records))}
	for i, entry := range req.Records {
		matricula := strings.TrimSpace(entry.Matricula)
		if matricula == "" {
			errs = append(errs, fmt.Sprintf("record %d: matricula is required", i+1))
		}
		state, ok := models.ParseAttendanceState(entry.State)
		if !ok {
			errs = append(errs, fmt.Sprintf("record %d: invalid state %q", i+1, entry.State))
		}
		roll.Records = append(roll.Records, models.AttendanceRecord{
			Date:      date,
			Matricula: matricula,
			State:     state,
			Notes:     strings.TrimSpace(entry.Notes),
		})
	}
	return roll, errs
}

// ImportRoll reads a matricula/estado sheet and submits it. Rows with an
// unknown state are rejected individually.
func (s *AttendanceService) ImportRoll(ctx context.Context, tutorID, date string, file RosterFile) (*models.AttendanceImport, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseRoster(file.Filename, file.Data, models.AttendanceRosterSchema)
	if err != nil {
		return nil, err
	}
	result := &models.AttendanceImport{Date: date, Rejected: parsed.Rejected}
	req := dto.SubmitAttendanceRequest{Date: date, Records: make([]dto.AttendanceEntry, 0, len(parsed.Accepted))}
	for _, row := range parsed.Accepted {
		if _, ok := models.ParseAttendanceState(row.Get("estado")); !ok {
			result.Rejected = append(result.Rejected, models.RejectedRow{
				RowNumber: row.RowNumber,
				Reason:    fmt.Sprintf("invalid estado %q", row.Get("estado")),
			})
			continue
		}
		req.Records = append(req.Records, dto.AttendanceEntry{
			Matricula: row.Get("matricula"),
			State:     row.Get("estado"),
			Notes:     row.Get("observaciones"),
		})
	}
	resp, err := s.SubmitRoll(ctx, tutorID, req)
	if err != nil {
		return nil, err
	}
	result.Submitted = len(req.Records)
	result.Response = resp
	return result, nil
}

// History returns recent attendance rows of a tutor.
func (s *AttendanceService) History(ctx context.Context, tutorID string, limit int) ([]models.AttendanceHistoryEntry, error) {
	history, err := s.backend.History(ctx, tutorID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load attendance history")
	}
	return history, nil
}

// AttendanceHeaders is the column order of attendance exports.
var AttendanceHeaders = []string{"Matrícula", "Nombre", "Carrera", "Cuatrimestre", "Grupo", "Estado", "Observaciones"}

// RollDataset renders a roll with a statistics preamble.
func RollDataset(roll models.AttendanceRoll, generatedAt time.Time) export.Dataset {
	counts := roll.Counts()
	day := roll.Date
	if t, err := time.Parse(dateLayout, roll.Date); err == nil {
		day = t.Format("02/01/2006")
	}
	rows := make([]map[string]string, 0, len(roll.Records))
	for _, rec := range roll.Records {
		rows = append(rows, map[string]string{
			"Matrícula":     rec.Matricula,
			"Nombre":        rec.Name,
			"Carrera":       rec.Career,
			"Cuatrimestre":  rec.Term,
			"Grupo":         rec.Group,
			"Estado":        rec.State.Label(),
			"Observaciones": rec.Notes,
		})
	}
	return export.Dataset{
		Title: "Lista de asistencia " + day,
		Comments: []string{
			"LISTA DE ASISTENCIA - " + day,
			"Tutorados",
			"Generada: " + generatedAt.Format("02/01/2006 15:04:05"),
			fmt.Sprintf("Total estudiantes: %d", len(roll.Records)),
			fmt.Sprintf("Asistencias: %d", counts[models.AttendancePresent]),
			fmt.Sprintf("Retardos: %d", counts[models.AttendanceLate]),
			fmt.Sprintf("Faltas: %d", counts[models.AttendanceAbsent]),
			fmt.Sprintf("Permisos: %d", counts[models.AttendanceExcused]),
		},
		Headers: AttendanceHeaders,
		Rows:    rows,
	}
}

// HistoryDataset renders attendance history rows.
func HistoryDataset(history []models.AttendanceHistoryEntry) export.Dataset {
	rows := make([]map[string]string, 0, len(history))
	for _, h := range history {
		rows = append(rows, map[string]string{
			"Fecha":         h.Date,
			"Matrícula":     h.Matricula,
			"Nombre":        h.Name,
			"Estado":        h.State.Label(),
			"Observaciones": h.Notes,
		})
	}
	return export.Dataset{
		Title:   "Historial de asistencia",
		Headers: []string{"Fecha", "Matrícula", "Nombre", "Estado", "Observaciones"},
		Rows:    rows,
	}
}

// ExportRoll downloads the roll of a date as CSV.
func (s *AttendanceService) ExportRoll(ctx context.Context, tutorID, date string) (*Download, error) {
	roll, err := s.GetRoll(ctx, tutorID, date)
	if err != nil {
		return nil, err
	}
	body, err := s.csv.Render(RollDataset(*roll, s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance")
	}
	return &Download{
		Filename:    fmt.Sprintf("asistencia_%s_Tutorados.csv", roll.Date),
		ContentType: export.FormatCSV.ContentType(),
		Data:        body,
	}, nil
}
