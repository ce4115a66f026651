package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

type fakeUnitSrv struct {
	registered []dto.UnitDraft
	deleted    []string
}

func (f *fakeUnitSrv) Validate(draft dto.UnitDraft) dto.ValidationResult {
	if len(draft.Name) < 3 {
		return dto.ValidationResult{Valid: false, Errors: []string{"name must be at least 3 characters"}}
	}
	return dto.ValidationResult{Valid: true, Errors: []string{}}
}

func (f *fakeUnitSrv) Register(_ context.Context, draft dto.UnitDraft) (*models.UnitRegistration, error) {
	f.registered = append(f.registered, draft)
	return &models.UnitRegistration{Unit: models.Unit{ID: "u1", Name: draft.Name}, Total: len(draft.Activities), Succeeded: len(draft.Activities)}, nil
}

func (f *fakeUnitSrv) ListByCourse(_ context.Context, courseID string) ([]models.Unit, error) {
	return []models.Unit{{ID: "u1", CourseID: courseID}}, nil
}

func (f *fakeUnitSrv) ListBySubject(context.Context, string) ([]models.Unit, error) {
	return []models.Unit{}, nil
}

func (f *fakeUnitSrv) Delete(_ context.Context, id string) error {
	if id != "u1" {
		return appErrors.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUnitSrv) Stats(context.Context) (*models.UnitStats, error) {
	return &models.UnitStats{TotalUnits: 1, BySubject: map[string]int{"math": 1}}, nil
}

func TestUnitHandlerValidateReportsErrors(t *testing.T) {
	handler := NewUnitHandler(&fakeUnitSrv{})
	c, rec := newTestContext(jsonRequest(t, http.MethodPost, "/units/validate", dto.UnitDraft{Name: "U"}), tutorClaims())
	handler.Validate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":false,"errors":["name must be at least 3 characters"]}`, string(decodeEnvelope(t, rec).Data))
}

func TestUnitHandlerRegister(t *testing.T) {
	srv := &fakeUnitSrv{}
	handler := NewUnitHandler(srv)
	draft := dto.UnitDraft{
		SubjectID: "math", CourseID: "c1", SequenceNumber: 1, Name: "Algebra",
		Activities: []dto.ActivityDraft{{Name: "Exam", WeightPercent: 60}, {Name: "Tasks", WeightPercent: 40}},
	}
	c, rec := newTestContext(jsonRequest(t, http.MethodPost, "/units", draft), tutorClaims())
	handler.Register(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, srv.registered, 1)
	assert.Equal(t, 60.0, srv.registered[0].Activities[0].WeightPercent)
}

func TestUnitHandlerListAndDelete(t *testing.T) {
	srv := &fakeUnitSrv{}
	handler := NewUnitHandler(srv)

	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/units/course/c1", nil), tutorClaims())
	c.AddParam("courseId", "c1")
	handler.ByCourse(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeEnvelope(t, rec).Meta["total"])

	c, rec = newTestContext(httptest.NewRequest(http.MethodDelete, "/units/zz", nil), tutorClaims())
	c.AddParam("id", "zz")
	handler.Delete(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, srv.deleted)
}
