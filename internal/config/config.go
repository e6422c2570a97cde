package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Generation modes
const (
	ModeCombined   = "combined"
	ModePerSection = "per_section"
)

// Output formats
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatBoth = "both"
)

// AI backends
const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// AI Configuration
	AIApiKey     string        `json:"-"`
	AIModel      string        `json:"ai_model" validate:"required"`
	AIBackend    string        `json:"ai_backend" validate:"oneof=rest sdk"`
	AITimeout    time.Duration `json:"ai_timeout" validate:"gt=0"`
	EnableSearch bool          `json:"enable_search"`

	// Generation
	Mode         string        `json:"mode" validate:"oneof=combined per_section"`
	MaxAttempts  int           `json:"max_attempts" validate:"min=1,max=10"`
	RetryDelay   time.Duration `json:"retry_delay" validate:"gte=0"`
	SectionDelay time.Duration `json:"section_delay" validate:"gte=0"`
	PadMissing   bool          `json:"pad_missing"`
	CheckImages  bool          `json:"check_images"`
	BrandName    string        `json:"brand_name" validate:"required"`

	// Artifacts
	OutputFormat string `json:"output_format" validate:"oneof=html json both"`
	PagePath     string `json:"page_path" validate:"required_unless=OutputFormat json"`
	JSONPath     string `json:"json_path" validate:"required_unless=OutputFormat html"`

	// Redis configuration, empty URL disables the published-story history
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	HistoryTTL  time.Duration `json:"history_ttl"`

	// CloudFlare R2 Configuration, empty bucket disables the mirror
	R2Endpoint  string `json:"r2_endpoint" validate:"required_with=R2Bucket"`
	R2AccessKey string `json:"-" validate:"required_with=R2Bucket"`
	R2SecretKey string `json:"-" validate:"required_with=R2Bucket"`
	R2Bucket    string `json:"r2_bucket"`
	R2ObjectKey string `json:"r2_object_key"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"-"`
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// AI Configuration
		AIApiKey:     getEnv("GEMINI_API_KEY", ""),
		AIModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AIBackend:    strings.ToLower(getEnv("AI_BACKEND", BackendREST)),
		AITimeout:    getEnvAsDuration("AI_TIMEOUT", 120*time.Second),
		EnableSearch: getEnvAsBool("AI_ENABLE_SEARCH", true),

		// Generation
		Mode:         strings.ToLower(getEnv("GENERATION_MODE", ModeCombined)),
		MaxAttempts:  getEnvAsInt("MAX_ATTEMPTS", 3),
		RetryDelay:   getEnvAsDuration("RETRY_DELAY", 5*time.Second),
		SectionDelay: getEnvAsDuration("SECTION_DELAY", 2*time.Second),
		PadMissing:   getEnvAsBool("PAD_MISSING", true),
		CheckImages:  getEnvAsBool("CHECK_IMAGES", false),
		BrandName:    getEnv("BRAND_NAME", "设计周刊"),

		// Artifacts
		OutputFormat: strings.ToLower(getEnv("OUTPUT_FORMAT", FormatHTML)),
		PagePath:     getEnv("PAGE_PATH", "index.html"),
		JSONPath:     getEnv("JSON_PATH", "data/news.json"),

		// Redis configuration
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "weekly-issue:"),
		HistoryTTL:  getEnvAsDuration("HISTORY_TTL", 8*7*24*time.Hour), // 8 weeks

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", ""),
		R2ObjectKey: getEnv("R2_OBJECT_KEY", "weekly/news.json"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	return cfg, cfg.Validate()
}

var validate = validator.New()

// Validate checks the configuration values. A missing API key is not an
// error here; the generator reports it as a fatal run outcome.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ConfigError{
				Field:   verrs[0].Field(),
				Message: "failed on the '" + verrs[0].Tag() + "' rule",
			}
		}
		return &ConfigError{Field: "config", Message: err.Error()}
	}
	return nil
}

// HasAPIKey reports whether a Gemini credential is configured
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.AIApiKey) != ""
}

// WritesHTML reports whether the page artifact is produced
func (c *Config) WritesHTML() bool {
	return c.OutputFormat == FormatHTML || c.OutputFormat == FormatBoth
}

// WritesJSON reports whether the JSON artifact is produced
func (c *Config) WritesJSON() bool {
	return c.OutputFormat == FormatJSON || c.OutputFormat == FormatBoth
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
