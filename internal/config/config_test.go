package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/hrx?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 0.6, cfg.Face.MatchThreshold)
	assert.Equal(t, 8.0, cfg.Attendance.ExpectedDailyHours)
	assert.Equal(t, time.Minute, cfg.Cache.JanitorInterval)
	assert.Equal(t, "postgres://u:p@localhost:5432/hrx?sslmode=disable", cfg.DatabaseURL())
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.OAuth2Google.Enabled())
}

func TestLoad_DiscreteDatabaseFields(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "hrx_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://postgres:pw@db:5432/hrx_test?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET_KEY": "", "DATABASE_URL": "postgres://x"}},
		{"bad port", map[string]string{"APP_PORT": "eighty"}},
		{"s3 without bucket", map[string]string{"STORAGE_DRIVER": "s3"}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "ftp"}},
		{"threshold out of range", map[string]string{"FACE_MATCH_THRESHOLD": "1.5"}},
		{"bad janitor interval", map[string]string{"CACHE_JANITOR_INTERVAL": "soon"}},
		{"unknown timezone", map[string]string{"APP_TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "secret")
			t.Setenv("DATABASE_URL", "postgres://x")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvSlice(t *testing.T) {
	t.Setenv("HRX_TEST_SLICE", " a, b ,,c ")
	assert.Equal(t, []string{"a", "b", "c"}, getEnvSlice("HRX_TEST_SLICE", nil))
	assert.Equal(t, []string{"x"}, getEnvSlice("HRX_TEST_MISSING", []string{"x"}))
}
