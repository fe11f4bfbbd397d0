package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdrill/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                   ":8080",
		DBPath:                 "test.db",
		LogLevel:               "INFO",
		ImportWorkerCount:      2,
		ImportQueueSize:        32,
		DefaultGroup:           "Default",
		StudyTimeoutSeconds:    15,
		StudyWarnSeconds:       5,
		StudyWrongDelaySeconds: 3,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = "  "

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_LogLevel(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"DEBUG", true},
		{"INFO", true},
		{"WARN", true},
		{"ERROR", true},
		{"debug", true},
		{"INVALID", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "LOG_LEVEL")
			}
		})
	}
}

func TestValidate_InvalidImportPool(t *testing.T) {
	tests := []struct {
		name          string
		workers       int
		queue         int
		expectedError string
	}{
		{"zero workers", 0, 32, "IMPORT_WORKER_COUNT"},
		{"negative workers", -1, 32, "IMPORT_WORKER_COUNT"},
		{"zero queue", 2, 0, "IMPORT_QUEUE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ImportWorkerCount = tt.workers
			cfg.ImportQueueSize = tt.queue

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_StudyTimingsBelowFloorAreAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.StudyTimeoutSeconds = 1
	cfg.StudyWarnSeconds = 0

	assert.NoError(t, cfg.Validate())
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{
		LogLevel:               "INVALID",
		StudyWrongDelaySeconds: -1,
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "IMPORT_WORKER_COUNT")
	assert.Contains(t, errStr, "IMPORT_QUEUE_SIZE")
	assert.Contains(t, errStr, "DEFAULT_GROUP")
	assert.Contains(t, errStr, "STUDY_WRONG_DELAY_SECONDS")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("STUDY_TIMEOUT_SECONDS", "30")
	t.Setenv("SOUND_ENABLED", "false")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 30, cfg.StudyTimeoutSeconds)
	assert.False(t, cfg.SoundEnabled)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("STUDY_WARN_SECONDS", "soon")
	t.Setenv("TTS_ANSWER", "maybe")

	cfg := config.Load()

	assert.Equal(t, 5, cfg.StudyWarnSeconds)
	assert.True(t, cfg.TTSAnswer)
}

func TestStudy_CarriesFeedbackSettings(t *testing.T) {
	cfg := validConfig()
	cfg.SoundEnabled = true
	cfg.TTSEnabled = true
	cfg.TTSAnswer = true

	s := cfg.Study()

	assert.Equal(t, 15, s.TimeoutSeconds)
	assert.Equal(t, 5, s.WarnSeconds)
	assert.Equal(t, 3, s.WrongDelaySeconds)
	assert.True(t, s.SoundEnabled)
	assert.True(t, s.Speech.Enabled)
	assert.False(t, s.Speech.Question)
	assert.True(t, s.Speech.Answer)
}
