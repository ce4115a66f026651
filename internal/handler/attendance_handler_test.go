package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
)

type fakeAttendanceSrv struct {
	tutor  string
	limit  int
	date   string
	upload service.RosterFile
}

func (f *fakeAttendanceSrv) GetRoll(_ context.Context, tutorID, date string) (*models.AttendanceRoll, error) {
	f.tutor = tutorID
	return &models.AttendanceRoll{TutorID: tutorID, Date: "2024-03-01", Records: []models.AttendanceRecord{
		{Matricula: "A1", State: models.AttendancePresent},
		{Matricula: "A2", State: models.AttendanceAbsent},
		{Matricula: "A3", State: models.AttendancePresent},
	}}, nil
}

func (f *fakeAttendanceSrv) SubmitRoll(_ context.Context, tutorID string, req dto.SubmitAttendanceRequest) (json.RawMessage, error) {
	f.tutor = tutorID
	f.date = req.Date
	return json.RawMessage(`{"ok":true}`), nil
}

func (f *fakeAttendanceSrv) ImportRoll(_ context.Context, tutorID, date string, file service.RosterFile) (*models.AttendanceImport, error) {
	f.tutor = tutorID
	f.date = date
	f.upload = file
	return &models.AttendanceImport{Date: date, Submitted: 1}, nil
}

func (f *fakeAttendanceSrv) History(_ context.Context, tutorID string, limit int) ([]models.AttendanceHistoryEntry, error) {
	f.tutor = tutorID
	f.limit = limit
	return []models.AttendanceHistoryEntry{}, nil
}

func (f *fakeAttendanceSrv) ExportRoll(_ context.Context, tutorID, date string) (*service.Download, error) {
	return &service.Download{Filename: "asistencia_2024-03-01.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("matricula,estado\nA1,present\n")}, nil
}

type fakeUploadLimits struct{}

func (fakeUploadLimits) CheckFile(filename string, _ int64) (service.RosterFileKind, error) {
	return service.DetectRosterKind(filename)
}

func (fakeUploadLimits) MaxUploadBytes() int64 { return 1 << 20 }

func TestAttendanceHandlerRollCounts(t *testing.T) {
	srv := &fakeAttendanceSrv{}
	handler := NewAttendanceHandler(srv, fakeUploadLimits{})

	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/attendance", nil), tutorClaims())
	handler.Roll(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", srv.tutor)
	counts, ok := decodeEnvelope(t, rec).Meta["counts"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, counts["present"])
	assert.EqualValues(t, 1, counts["absent"])
	assert.EqualValues(t, 0, counts["late"])
}

func TestAttendanceHandlerRequiresClaims(t *testing.T) {
	handler := NewAttendanceHandler(&fakeAttendanceSrv{}, fakeUploadLimits{})
	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/attendance", nil), nil)
	handler.Roll(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAttendanceHandlerHistoryLimit(t *testing.T) {
	srv := &fakeAttendanceSrv{}
	handler := NewAttendanceHandler(srv, fakeUploadLimits{})

	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/attendance/history", nil), tutorClaims())
	handler.History(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, srv.limit)

	c, rec = newTestContext(httptest.NewRequest(http.MethodGet, "/attendance/history?limit=-4", nil), tutorClaims())
	handler.History(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandlerImportAndExport(t *testing.T) {
	srv := &fakeAttendanceSrv{}
	handler := NewAttendanceHandler(srv, fakeUploadLimits{})

	req := multipartRequest(t, "/attendance/import", "roll.csv", []byte("matricula,estado\nA1,presente\n"), map[string]string{"date": "2024-03-01"})
	c, rec := newTestContext(req, tutorClaims())
	handler.Import(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-03-01", srv.date)
	assert.Equal(t, "roll.csv", srv.upload.Filename)

	c, rec = newTestContext(httptest.NewRequest(http.MethodGet, "/attendance/export", nil), tutorClaims())
	handler.Export(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "asistencia_2024-03-01.csv")
	assert.Contains(t, rec.Body.String(), "A1,present")
}
