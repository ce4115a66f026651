package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "http://localhost:3003", cfg.Backends.UnitsURL)
	assert.Equal(t, GradeStorePostgres, cfg.Grading.Store)
	assert.Equal(t, int64(10*1024*1024), cfg.Uploads.MaxFileSizeBytes)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Backends.Timeout)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("GRADE_STORE", " Redis ")
	v.Set("STUDENTS_SERVICE_URL", "http://students.internal/ ")
	v.Set("BACKEND_TIMEOUT", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)

	assert.Equal(t, GradeStoreRedis, cfg.Grading.Store)
	assert.Equal(t, "http://students.internal", cfg.Backends.StudentsURL)
	assert.Equal(t, 10*time.Second, cfg.Backends.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
