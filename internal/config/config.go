package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// Input
	InputPath   string
	MasterPath  string
	ProfilePath string

	// Dataset output
	Backend   string
	OutputDir string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string
	GoogleMasterSheet     string

	// Run history; empty disables it
	SQLiteDBPath string

	// AMQP; empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel      string
	ExportTimeout time.Duration

	Profile Profile
}

// Load reads GENKA_* environment variables and the profile they point to.
// A missing profile path yields the built-in profile.
func Load() (*Config, error) {
	cfg := &Config{
		InputPath:   getEnv("GENKA_INPUT", "./data/final_output.json"),
		MasterPath:  getEnv("GENKA_MASTER_CSV", ""),
		ProfilePath: getEnv("GENKA_PROFILE", ""),

		Backend:   getEnv("GENKA_BACKEND", BackendTSV),
		OutputDir: getEnv("GENKA_OUTPUT_DIR", "./output"),

		GoogleSpreadsheetID:   getEnv("GENKA_GOOGLE_SPREADSHEET_ID", ""),
		GoogleCredentialsJSON: getEnv("GENKA_GOOGLE_CREDENTIALS_JSON", ""),
		GoogleCredentialsFile: getEnv("GENKA_GOOGLE_CREDENTIALS_FILE", ""),
		GoogleMasterSheet:     getEnv("GENKA_GOOGLE_MASTER_SHEET", ""),

		SQLiteDBPath: getEnv("GENKA_SQLITE_DB_PATH", ""),

		AMQPURL:      getEnv("GENKA_AMQP_URL", ""),
		AMQPExchange: getEnv("GENKA_AMQP_EXCHANGE", "genka"),
		AMQPQueue:    getEnv("GENKA_AMQP_QUEUE", "run_completed"),

		LogLevel:      getEnv("GENKA_LOG_LEVEL", "info"),
		ExportTimeout: getEnvDuration("GENKA_EXPORT_TIMEOUT", 60*time.Second),
	}

	cfg.Profile = DefaultProfile()
	if cfg.ProfilePath != "" {
		p, err := LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, err
		}
		cfg.Profile = p
	}
	return cfg, nil
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendTSV    = "tsv"
	BackendSheets = "sheets"
)

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{BackendMemory, BackendTSV, BackendSheets}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.Backend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend, validBackends))
	}

	if c.Backend == BackendTSV && strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, "output directory cannot be empty when using tsv backend")
	}

	if c.Backend == BackendSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleCredentialsJSON == "" && c.GoogleCredentialsFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "either GENKA_GOOGLE_CREDENTIALS_FILE or GENKA_GOOGLE_CREDENTIALS_JSON must be provided for sheets backend")
		}
		if c.GoogleCredentialsFile != "" {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if c.MasterPath != "" {
		if _, err := os.Stat(c.MasterPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("master file does not exist: %s", c.MasterPath))
		}
	}

	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if c.ExportTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export timeout %v: must be at least 1 second", c.ExportTimeout))
	}

	for _, msg := range c.Profile.problems() {
		errors = append(errors, msg)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be debug, info, warn or error", s)
	}
	return l, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
