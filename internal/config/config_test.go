package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 2025, cfg.CurrentAcademicYear)
	require.Equal(t, 10, cfg.PageSize)
	require.Equal(t, 16*1024*1024, cfg.MaxUploadBytes())
	require.Equal(t, 10*time.Minute, cfg.FlashTTL)
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, 120, cfg.FormRateLimit)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CAMPUS_ACADEMIC_CURRENT_YEAR", "2031")
	t.Setenv("CAMPUS_APP_PORT", ":9090")
	t.Setenv("CAMPUS_LISTING_PAGE_SIZE", "-3")
	t.Setenv("CAMPUS_UPLOAD_DIR", "/tmp/photos")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 2031, cfg.CurrentAcademicYear)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 10, cfg.PageSize)
	require.Equal(t, "/tmp/photos", cfg.UploadDir)
}

func TestLoadRejectsInvalidTTL(t *testing.T) {
	t.Setenv("CAMPUS_FLASH_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}
