package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/upstream"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

type fakeAttendanceBackend struct {
	sheet      *upstream.DaySheet
	sheetErr   error
	submitted  []models.AttendanceRoll
	submitErr  error
	history    []models.AttendanceHistoryEntry
	askedDates []string
}

func (f *fakeAttendanceBackend) DayList(_ context.Context, _ string, date string) (*upstream.DaySheet, error) {
	f.askedDates = append(f.askedDates, date)
	if f.sheetErr != nil {
		return nil, f.sheetErr
	}
	return f.sheet, nil
}

func (f *fakeAttendanceBackend) SubmitRoll(_ context.Context, _ string, roll models.AttendanceRoll) (json.RawMessage, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, roll)
	return json.RawMessage(`{"success":true}`), nil
}

func (f *fakeAttendanceBackend) History(context.Context, string, int) ([]models.AttendanceHistoryEntry, error) {
	return f.history, nil
}

func newTestAttendanceService(backend *fakeAttendanceBackend) *AttendanceService {
	svc := NewAttendanceService(backend, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestAttendanceGetRollDefaultsToPresent(t *testing.T) {
	backend := &fakeAttendanceBackend{sheet: &upstream.DaySheet{
		Tutorados: []models.Tutorado{
			{Matricula: "A1", Nombre: "Ana", Grupo: "3A"},
			{Matricula: "A2", Nombre: "Luis", Grupo: "3A"},
		},
		Existing: []models.AttendanceRecord{
			{Matricula: "A2", State: models.AttendanceLate, Notes: "bus"},
			{Matricula: "Z9", Name: "Former", State: models.AttendanceAbsent},
		},
	}}
	svc := newTestAttendanceService(backend)

	roll, err := svc.GetRoll(context.Background(), "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06", roll.Date)
	assert.Equal(t, []string{"2024-05-06"}, backend.askedDates)
	require.Len(t, roll.Records, 3)
	assert.Equal(t, models.AttendancePresent, roll.Records[0].State)
	assert.Equal(t, models.AttendanceLate, roll.Records[1].State)
	assert.Equal(t, "bus", roll.Records[1].Notes)
	assert.Equal(t, "Z9", roll.Records[2].Matricula)
}

func TestAttendanceGetRollValidation(t *testing.T) {
	svc := newTestAttendanceService(&fakeAttendanceBackend{sheetErr: errors.New("down")})

	_, err := svc.GetRoll(context.Background(), "", "2024-05-06")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.GetRoll(context.Background(), "t1", "06/05/2024")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.GetRoll(context.Background(), "t1", "2024-05-06")
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
}

func TestAttendanceSubmitRollValidatesEverything(t *testing.T) {
	backend := &fakeAttendanceBackend{}
	svc := newTestAttendanceService(backend)

	_, err := svc.SubmitRoll(context.Background(), "t1", dto.SubmitAttendanceRequest{
		Date: "2024-05-06",
		Records: []dto.AttendanceEntry{
			{Matricula: "A1", State: "present"},
			{Matricula: "", State: "late"},
			{Matricula: "A3", State: "sleeping"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, []string{
		"record 2: matricula is required",
		`record 3: invalid state "sleeping"`,
	}, appErrors.FromError(err).Details)
	assert.Empty(t, backend.submitted)

	_, err = svc.SubmitRoll(context.Background(), "t1", dto.SubmitAttendanceRequest{})
	assert.Equal(t, []string{"date is required", "at least one attendance record is required"}, appErrors.FromError(err).Details)
}

func TestAttendanceSubmitRoll(t *testing.T) {
	backend := &fakeAttendanceBackend{}
	svc := newTestAttendanceService(backend)

	resp, err := svc.SubmitRoll(context.Background(), "t1", dto.SubmitAttendanceRequest{
		Date:    "2024-05-06",
		Records: []dto.AttendanceEntry{{Matricula: "A1", State: "excuse", Notes: " doctor "}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(resp))
	require.Len(t, backend.submitted, 1)
	assert.Equal(t, models.AttendanceExcused, backend.submitted[0].Records[0].State)
	assert.Equal(t, "doctor", backend.submitted[0].Records[0].Notes)
}

func TestAttendanceImportRoll(t *testing.T) {
	backend := &fakeAttendanceBackend{}
	svc := newTestAttendanceService(backend)
	data := []byte("matricula,estado,observaciones\nA1,Presente,\nA2,ausente,enfermo\nA3,???,\nA4,\n")

	result, err := svc.ImportRoll(context.Background(), "t1", "2024-05-07", RosterFile{Filename: "lista.csv", Data: data})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Submitted)
	assert.Equal(t, []models.RejectedRow{
		{RowNumber: 5, Reason: "missing estado"},
		{RowNumber: 4, Reason: `invalid estado "???"`},
	}, result.Rejected)
	require.Len(t, backend.submitted, 1)
	assert.Equal(t, "2024-05-07", backend.submitted[0].Date)
	assert.Equal(t, models.AttendanceAbsent, backend.submitted[0].Records[1].State)
}

func TestAttendanceExportRoll(t *testing.T) {
	backend := &fakeAttendanceBackend{sheet: &upstream.DaySheet{
		Tutorados: []models.Tutorado{{Matricula: "A1", Nombre: "Ana", Carrera: "ISC", Cuatrimestre: "3", Grupo: "3A"}},
		Existing:  []models.AttendanceRecord{{Matricula: "A1", State: models.AttendanceAbsent}},
	}}
	svc := newTestAttendanceService(backend)

	download, err := svc.ExportRoll(context.Background(), "t1", "2024-05-06")
	require.NoError(t, err)
	assert.Equal(t, "asistencia_2024-05-06_Tutorados.csv", download.Filename)

	body := string(download.Data)
	assert.True(t, strings.HasPrefix(body, "# LISTA DE ASISTENCIA - 06/05/2024\n"))
	assert.Contains(t, body, "# Generada: 06/05/2024 09:30:00\n")
	assert.Contains(t, body, "# Faltas: 1\n")
	assert.Contains(t, body, `"Matrícula","Nombre","Carrera","Cuatrimestre","Grupo","Estado","Observaciones"`)
	assert.Contains(t, body, `"A1","Ana","ISC","3","3A","Ausente",""`)
}
