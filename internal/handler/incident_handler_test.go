package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

type fakeIncidentSrv struct {
	created dto.CreateIncidentRequest
	tutor   string
}

func (f *fakeIncidentSrv) Create(_ context.Context, req dto.CreateIncidentRequest) (*models.Incident, error) {
	if errs := service.ValidateIncident(req); len(errs) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "", errs)
	}
	f.created = req
	return &models.Incident{ID: "1"}, nil
}

func (f *fakeIncidentSrv) ListByTutor(_ context.Context, tutorID string) ([]models.Incident, error) {
	f.tutor = tutorID
	return []models.Incident{{ID: "1"}, {ID: "2"}}, nil
}

func TestIncidentHandlerCreateDefaultsTutor(t *testing.T) {
	srv := &fakeIncidentSrv{}
	handler := NewIncidentHandler(srv)

	body := dto.CreateIncidentRequest{Matricula: "A1", SubjectID: "5", Type: models.InterventionPersonal, Description: "Situación familiar complicada"}
	c, rec := newTestContext(jsonRequest(t, http.MethodPost, "/incidents", body), tutorClaims())
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "t1", srv.created.TutorID)
}

func TestIncidentHandlerCreateReportsDetails(t *testing.T) {
	handler := NewIncidentHandler(&fakeIncidentSrv{})
	c, rec := newTestContext(jsonRequest(t, http.MethodPost, "/incidents", dto.CreateIncidentRequest{Description: "corta"}), tutorClaims())
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	if assert.NotNil(t, envelope.Error) {
		assert.Equal(t, "student matricula is required", envelope.Error.Message)
		assert.Len(t, envelope.Error.Details, 4)
	}
}

func TestIncidentHandlerListUsesCurrentUser(t *testing.T) {
	srv := &fakeIncidentSrv{}
	handler := NewIncidentHandler(srv)
	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/incidents", nil), tutorClaims())
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", srv.tutor)
	assert.EqualValues(t, 2, decodeEnvelope(t, rec).Meta["total"])
}
