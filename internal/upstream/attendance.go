package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// AttendanceClient talks to the tutor attendance service.
type AttendanceClient struct {
	c *Client
}

// NewAttendanceClient wraps a backend client.
func NewAttendanceClient(c *Client) *AttendanceClient {
	return &AttendanceClient{c: c}
}

func tutorPath(tutorID, suffix string) string {
	return "/api/asistencia-tutorado/tutor/" + url.PathEscape(tutorID) + suffix
}

type tutoradoRow struct {
	Matricula    flexString `json:"matricula"`
	Nombre       string     `json:"nombre"`
	Carrera      string     `json:"carrera"`
	Cuatrimestre flexString `json:"cuatrimestre"`
	Grupo        flexString `json:"grupo"`
}

func (r tutoradoRow) toModel() models.Tutorado {
	return models.Tutorado{
		Matricula:    r.Matricula.String(),
		Nombre:       r.Nombre,
		Carrera:      r.Carrera,
		Cuatrimestre: r.Cuatrimestre.String(),
		Grupo:        r.Grupo.String(),
	}
}

func tutorados(rows []tutoradoRow) []models.Tutorado {
	out := make([]models.Tutorado, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

// Tutorados lists the students supervised by a tutor.
func (s *AttendanceClient) Tutorados(ctx context.Context, tutorID string) ([]models.Tutorado, error) {
	var rows []tutoradoRow
	if err := s.c.GetList(ctx, tutorPath(tutorID, "/tutorados"), &rows, "tutorados"); err != nil {
		return nil, err
	}
	return tutorados(rows), nil
}

type attendanceRow struct {
	Fecha         string     `json:"fecha"`
	Matricula     flexString `json:"matricula"`
	Nombre        string     `json:"nombre"`
	Estado        string     `json:"estado"`
	Observaciones string     `json:"observaciones"`
}

// DaySheet is the remote attendance list of one date.
type DaySheet struct {
	Date      string
	Tutorados []models.Tutorado
	Existing  []models.AttendanceRecord
}

// DayList returns the tutorados and any attendance already taken on date.
func (s *AttendanceClient) DayList(ctx context.Context, tutorID, date string) (*DaySheet, error) {
	path := tutorPath(tutorID, "/lista-asistencia")
	if date != "" {
		path += "?fecha=" + url.QueryEscape(date)
	}
	raw, err := s.c.Get(ctx, path)
	if err != nil {
		if IsNotFound(err) {
			return &DaySheet{Date: date}, nil
		}
		return nil, err
	}
	var body struct {
		Fecha     string          `json:"fecha"`
		Tutorados []tutoradoRow   `json:"tutorados"`
		Existing  []attendanceRow `json:"asistencias_existentes"`
	}
	if err := DecodeData(raw, &body); err != nil {
		return nil, err
	}
	sheet := &DaySheet{Date: body.Fecha, Tutorados: tutorados(body.Tutorados)}
	if sheet.Date == "" {
		sheet.Date = date
	}
	for _, row := range body.Existing {
		sheet.Existing = append(sheet.Existing, models.AttendanceRecord{
			Date:      sheet.Date,
			Matricula: row.Matricula.String(),
			Name:      row.Nombre,
			State:     models.StateFromBackend(row.Estado),
			Notes:     row.Observaciones,
		})
	}
	return sheet, nil
}

type rollEntry struct {
	Matricula     string `json:"matricula"`
	Estado        string `json:"estado"`
	Observaciones string `json:"observaciones"`
}

type rollPayload struct {
	Fecha       string      `json:"fecha"`
	Asistencias []rollEntry `json:"asistencias"`
}

// SubmitRoll posts a full attendance list for a date.
func (s *AttendanceClient) SubmitRoll(ctx context.Context, tutorID string, roll models.AttendanceRoll) (json.RawMessage, error) {
	payload := rollPayload{Fecha: roll.Date, Asistencias: make([]rollEntry, 0, len(roll.Records))}
	for _, rec := range roll.Records {
		payload.Asistencias = append(payload.Asistencias, rollEntry{
			Matricula:     rec.Matricula,
			Estado:        rec.State.Backend(),
			Observaciones: rec.Notes,
		})
	}
	raw, err := s.c.PostJSON(ctx, tutorPath(tutorID, "/pasar-lista"), payload)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("pasar-lista returned invalid JSON")
	}
	return raw, nil
}

// History returns the latest attendance rows of a tutor.
func (s *AttendanceClient) History(ctx context.Context, tutorID string, limit int) ([]models.AttendanceHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []attendanceRow
	if err := s.c.GetList(ctx, tutorPath(tutorID, "/historial?limit="+strconv.Itoa(limit)), &rows, "historial"); err != nil {
		return nil, err
	}
	history := make([]models.AttendanceHistoryEntry, 0, len(rows))
	for _, row := range rows {
		history = append(history, models.AttendanceHistoryEntry{
			Date:      row.Fecha,
			Matricula: row.Matricula.String(),
			Name:      row.Nombre,
			State:     models.StateFromBackend(row.Estado),
			Notes:     row.Observaciones,
		})
	}
	return history, nil
}
