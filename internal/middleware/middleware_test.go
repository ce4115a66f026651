package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/logger"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type recordingObserver struct {
	paths    []string
	statuses []int
}

func (r *recordingObserver) ObserveHTTPRequest(_, path string, status int, _ time.Duration) {
	r.paths = append(r.paths, path)
	r.statuses = append(r.statuses, status)
}

func newRouter(observer RequestObserver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator := stubValidator{
		"director-token": {UserID: "1", Role: models.RoleDirector},
		"tutor-token":    {UserID: "2", Role: models.RoleTutor},
	}
	router := gin.New()
	router.Use(Metrics(observer))
	group := router.Group("/api", JWT(validator))
	group.GET("/director", RequireRoles(models.RoleDirector), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logger.ContextRoleKey)+":"+Claims(c).UserID)
	})
	return router
}

func TestJWTAndRequireRoles(t *testing.T) {
	router := newRouter(nil)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic director-token", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer tutor-token", http.StatusForbidden},
		{"allowed", "Bearer director-token", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/director", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "director:1", rec.Body.String())
			}
		})
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	observer := &recordingObserver{}
	router := newRouter(observer)

	req := httptest.NewRequest(http.MethodGet, "/api/director", nil)
	req.Header.Set("Authorization", "Bearer director-token")
	router.ServeHTTP(httptest.NewRecorder(), req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, []string{"/api/director", "unmatched"}, observer.paths)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, observer.statuses)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", RequireRoles(models.RoleTutor), func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
