package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "MAX_FILE_SIZE_MB", "EMBEDDING_DIM", "MATCH_THRESHOLD",
		"MATCH_WORKERS", "MATCH_IMAGE_TIMEOUT", "DRIVE_RATE_LIMIT", "GOOGLEDRIVE_BASE_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.MaxFileSizeMB)
	assert.Equal(t, int64(5*1024*1024), cfg.Server.MaxFileSizeBytes())
	assert.Equal(t, 128, cfg.Face.Dim)
	assert.InDelta(t, 0.6, cfg.Match.Threshold, 1e-9)
	assert.Equal(t, 8, cfg.Match.Workers)
	assert.Equal(t, 30*time.Second, cfg.Match.ImageTimeout)
	assert.InDelta(t, 10.0, cfg.GoogleDrive.RateLimit, 1e-9)
	assert.Equal(t, "https://www.googleapis.com/drive/v3", cfg.GoogleDrive.BaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "0.75")
	t.Setenv("MATCH_WORKERS", "3")
	t.Setenv("MATCH_IMAGE_TIMEOUT", "5")
	t.Setenv("EMBEDDING_DIM", "512")
	t.Setenv("UPLOAD_SELFIES", "true")

	cfg := Load()

	assert.InDelta(t, 0.75, cfg.Match.Threshold, 1e-9)
	assert.Equal(t, 3, cfg.Match.Workers)
	assert.Equal(t, 5*time.Second, cfg.Match.ImageTimeout)
	assert.Equal(t, 512, cfg.Face.Dim)
	assert.True(t, cfg.Server.UploadSelfies)
}

func TestEnvHelpers_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_INT", "-4")
	t.Setenv("TEST_FLOAT", "abc")
	t.Setenv("TEST_DURATION", "soon")
	t.Setenv("TEST_BOOL", "maybe")

	assert.Equal(t, 7, envInt("TEST_INT", 7))
	assert.InDelta(t, 1.5, envFloat("TEST_FLOAT", 1.5), 1e-9)
	assert.Equal(t, time.Minute, envDuration("TEST_DURATION", time.Minute))
	assert.True(t, envBool("TEST_BOOL", true))
}

func TestValidate(t *testing.T) {
	cfg := &Config{Match: MatchConfig{Threshold: 0.6}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLEDRIVE_ACCESS_TOKEN")
	assert.Contains(t, err.Error(), "FACE_SERVICE_URL")

	cfg.GoogleDrive.AccessToken = "token"
	cfg.Face.ServiceURL = "http://face:8000"
	assert.NoError(t, cfg.Validate())
}
