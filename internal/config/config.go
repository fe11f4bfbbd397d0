package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/study"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	ImportWorkerCount int
	ImportQueueSize   int
	DefaultGroup      string

	StudyTimeoutSeconds    int
	StudyWarnSeconds       int
	StudyWrongDelaySeconds int

	SoundEnabled bool
	TTSEnabled   bool
	TTSQuestion  bool
	TTSAnswer    bool
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:flashdrill.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		ImportWorkerCount: envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:   envIntOr("IMPORT_QUEUE_SIZE", 32),
		DefaultGroup:      envOr("DEFAULT_GROUP", "Default"),

		StudyTimeoutSeconds:    envIntOr("STUDY_TIMEOUT_SECONDS", 15),
		StudyWarnSeconds:       envIntOr("STUDY_WARN_SECONDS", 5),
		StudyWrongDelaySeconds: envIntOr("STUDY_WRONG_DELAY_SECONDS", 3),

		SoundEnabled: envBoolOr("SOUND_ENABLED", true),
		TTSEnabled:   envBoolOr("TTS_ENABLED", true),
		TTSQuestion:  envBoolOr("TTS_QUESTION", true),
		TTSAnswer:    envBoolOr("TTS_ANSWER", true),
	}
}

// Validate reports every invalid setting at once. Study timings are not
// checked here: sessions clamp them to their floors when they start.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.ImportWorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_WORKER_COUNT must be positive (got %d)", c.ImportWorkerCount))
	}
	if c.ImportQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_QUEUE_SIZE must be positive (got %d)", c.ImportQueueSize))
	}
	if strings.TrimSpace(c.DefaultGroup) == "" {
		errs = append(errs, errors.New("DEFAULT_GROUP cannot be empty"))
	}
	if c.StudyWrongDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("STUDY_WRONG_DELAY_SECONDS cannot be negative (got %d)", c.StudyWrongDelaySeconds))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

// Study returns the default study settings sessions start from.
func (c Config) Study() study.Config {
	return study.Config{
		TimeoutSeconds:    c.StudyTimeoutSeconds,
		WarnSeconds:       c.StudyWarnSeconds,
		WrongDelaySeconds: c.StudyWrongDelaySeconds,
		SoundEnabled:      c.SoundEnabled,
		Speech: study.SpeechSettings{
			Enabled:  c.TTSEnabled,
			Question: c.TTSQuestion,
			Answer:   c.TTSAnswer,
		},
	}
}
