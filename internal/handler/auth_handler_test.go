package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

type fakeAuthSrv struct{}

func (fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "secret" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	return &models.LoginResponse{AccessToken: "token", ExpiresIn: 3600, User: models.UserInfo{ID: "t1", Role: models.RoleTutor}}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(fakeAuthSrv{})

	c, rec := newTestContext(jsonRequest(t, http.MethodPost, "/auth/login", models.LoginRequest{Email: "rosa@example.com", Password: "secret"}), nil)
	handler.Login(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"access_token":"token"`)

	c, rec = newTestContext(jsonRequest(t, http.MethodPost, "/auth/login", models.LoginRequest{Email: "rosa@example.com", Password: "nope"}), nil)
	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	handler := NewAuthHandler(fakeAuthSrv{})
	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), tutorClaims())
	handler.Me(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"t1","name":"Rosa","role":"tutor"}`, string(decodeEnvelope(t, rec).Data))
}
