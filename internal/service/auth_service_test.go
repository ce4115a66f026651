package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/upstream"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

type mockStaffAuth struct {
	identity *models.StaffIdentity
	err      error
	calls    int
}

func (m *mockStaffAuth) Login(context.Context, string, string) (*models.StaffIdentity, error) {
	m.calls++
	return m.identity, m.err
}

func newTestAuthService(staff *mockStaffAuth) *AuthService {
	return NewAuthService(staff, nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "gateway"})
}

func TestAuthLoginIssuesToken(t *testing.T) {
	svc := newTestAuthService(&mockStaffAuth{identity: &models.StaffIdentity{ID: "7", Name: "Rosa", Roles: []string{"Tutor Académico", "Docente"}}})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "rosa@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTutor, resp.User.Role)
	assert.EqualValues(t, 3600, resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, "Rosa", claims.Name)
	assert.Equal(t, models.RoleTutor, claims.Role)
	assert.Equal(t, "gateway", claims.Issuer)
}

func TestAuthLoginRejectsUnknownRole(t *testing.T) {
	svc := newTestAuthService(&mockStaffAuth{identity: &models.StaffIdentity{ID: "7", Roles: []string{"Conserje"}}})
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "x@example.com", Password: "pw"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	svc = newTestAuthService(&mockStaffAuth{identity: &models.StaffIdentity{ID: "7"}})
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "x@example.com", Password: "pw"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestAuthLoginMapsBackendErrors(t *testing.T) {
	staff := &mockStaffAuth{err: &upstream.StatusError{Backend: "staff", Status: http.StatusUnauthorized}}
	svc := newTestAuthService(staff)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "x@example.com", Password: "bad"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	staff.err = errors.New("connection refused")
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "x@example.com", Password: "bad"})
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
}

func TestAuthLoginValidatesPayload(t *testing.T) {
	staff := &mockStaffAuth{}
	svc := newTestAuthService(staff)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, staff.calls)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	svc := newTestAuthService(&mockStaffAuth{})
	claims := &models.JWTClaims{UserID: "1", Role: models.RoleDirector, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(foreign)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.generateAccessToken(models.UserInfo{ID: "1", Role: models.RoleDirector})
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.Error(t, err)
}
