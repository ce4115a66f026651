package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
)

type fakeRosterSrv struct {
	maxBytes   int64
	parsed     []service.RosterFile
	uploadDest models.UploadDestination
	uploadMeta models.UploadMeta
}

func (f *fakeRosterSrv) CheckFile(filename string, size int64) (service.RosterFileKind, error) {
	kind, err := service.DetectRosterKind(filename)
	if err != nil {
		return "", err
	}
	return kind, nil
}

func (f *fakeRosterSrv) MaxUploadBytes() int64 { return f.maxBytes }

func (f *fakeRosterSrv) Parse(file service.RosterFile) (*models.ParseResult, error) {
	f.parsed = append(f.parsed, file)
	return &models.ParseResult{Headers: []string{"matricula", "nombre"}}, nil
}

func (f *fakeRosterSrv) Validate(req dto.ValidateRosterRequest) dto.ValidationResult {
	errs := service.ValidateBeforeUpload(req.Students, req.Destination, models.UploadMeta{TutorID: req.TutorID, GroupID: req.GroupID})
	return dto.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func (f *fakeRosterSrv) Upload(_ context.Context, dest models.UploadDestination, meta models.UploadMeta, _ service.RosterFile) (*models.UploadResult, error) {
	f.uploadDest = dest
	f.uploadMeta = meta
	return &models.UploadResult{Destination: dest}, nil
}

func (f *fakeRosterSrv) Students(context.Context) ([]models.StudentRecord, error) {
	return []models.StudentRecord{{Matricula: "A1"}}, nil
}

func (f *fakeRosterSrv) ExportStudents(context.Context) (*service.Download, error) {
	return &service.Download{Filename: "alumnos_2024-03-01.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("\"Matricula\"\n")}, nil
}

func (f *fakeRosterSrv) Template() (*service.Download, error) {
	return &service.Download{Filename: "plantilla_alumnos.csv", ContentType: "text/csv; charset=utf-8"}, nil
}

func (f *fakeRosterSrv) ExportRoster(req dto.ExportRosterRequest) (*service.Download, error) {
	return &service.Download{Filename: req.Filename, ContentType: "text/csv; charset=utf-8", Data: []byte("Matricula,Nombre\n")}, nil
}

func (f *fakeRosterSrv) EnrollmentLists(context.Context) ([]models.EnrollmentList, error) {
	return []models.EnrollmentList{}, nil
}

func TestRosterHandlerParseReadsMultipartFile(t *testing.T) {
	srv := &fakeRosterSrv{maxBytes: 1 << 20}
	handler := NewRosterHandler(srv)

	c, rec := newTestContext(multipartRequest(t, "/rosters/parse", "alumnos.csv", []byte("matricula,nombre\nA1,Ana\n"), nil), nil)
	handler.Parse(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, srv.parsed, 1)
	assert.Equal(t, "alumnos.csv", srv.parsed[0].Filename)
	assert.Equal(t, "matricula,nombre\nA1,Ana\n", string(srv.parsed[0].Data))
}

func TestRosterHandlerRejectsBadUploads(t *testing.T) {
	srv := &fakeRosterSrv{maxBytes: 8}
	handler := NewRosterHandler(srv)

	c, rec := newTestContext(multipartRequest(t, "/rosters/parse", "", nil, nil), nil)
	handler.Parse(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(multipartRequest(t, "/rosters/parse", "notes.txt", []byte("x"), nil), nil)
	handler.Parse(c)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	c, rec = newTestContext(multipartRequest(t, "/rosters/parse", "big.csv", []byte("matricula,nombre\n"), nil), nil)
	handler.Parse(c)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, srv.parsed)
}

func TestRosterHandlerUploadReadsFormFields(t *testing.T) {
	srv := &fakeRosterSrv{maxBytes: 1 << 20}
	handler := NewRosterHandler(srv)

	req := multipartRequest(t, "/rosters/upload", "lista.csv", []byte("matricula,nombre\nA1,Ana\n"), map[string]string{
		"destination":      "enrollment",
		"tutor_id":         " t1 ",
		"group_id":         "g1",
		"forward_original": "true",
	})
	c, rec := newTestContext(req, nil)
	handler.Upload(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DestinationEnrollment, srv.uploadDest)
	assert.Equal(t, models.UploadMeta{TutorID: "t1", GroupID: "g1", ForwardOriginal: true}, srv.uploadMeta)
}

func TestRosterHandlerValidateReturnsEveryError(t *testing.T) {
	handler := NewRosterHandler(&fakeRosterSrv{})
	body := dto.ValidateRosterRequest{
		Destination: models.DestinationStudents,
		Students:    []models.RosterEntry{{Matricula: "A1", Nombre: "Ana"}, {Matricula: "A1", Nombre: "Ana, B"}},
	}
	c, rec := newTestContext(jsonRequest(t, http.MethodPost, "/rosters/validate", body), nil)
	handler.Validate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Contains(t, string(envelope.Data), `"valid":false`)
	assert.Contains(t, string(envelope.Data), "duplicate matriculas: A1")
}

func TestRosterHandlerExportIsAttachment(t *testing.T) {
	handler := NewRosterHandler(&fakeRosterSrv{})
	c, rec := newTestContext(jsonRequest(t, http.MethodGet, "/students/export", nil), nil)
	handler.ExportStudents(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "alumnos_2024-03-01.csv")
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
}
