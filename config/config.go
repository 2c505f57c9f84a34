package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/marcelsud/n8n-gateway/internal/validator"
	"github.com/spf13/viper"
)

/* Config is the process configuration
 * Sources in order of precedence: environment, .env, gateway.yaml, defaults
 */

type Config struct {
	Port string `mapstructure:"PORT" validate:"required,numeric"`

	WebhooksFile       string `mapstructure:"WEBHOOKS_FILE"`
	N8NWebhookURL      string `mapstructure:"N8N_WEBHOOK_URL" validate:"omitempty,url"`
	N8NWebhookTestURL  string `mapstructure:"N8N_WEBHOOK_TEST_URL" validate:"omitempty,url"`
	EnableDemoFallback bool   `mapstructure:"ENABLE_DEMO_FALLBACK"`

	ProbeEndpoint       string `mapstructure:"PROBE_ENDPOINT" validate:"required"`
	ProbeTimeoutSeconds int    `mapstructure:"PROBE_TIMEOUT_SECONDS" validate:"gt=0"`

	ImagesDir                 string `mapstructure:"IMAGES_DIR" validate:"required"`
	ImageRetentionHours       int    `mapstructure:"IMAGE_RETENTION_HOURS" validate:"gte=0"`
	ImageSweepIntervalMinutes int    `mapstructure:"IMAGE_SWEEP_INTERVAL_MINUTES" validate:"gt=0"`
	MaxUploadBytes            int64  `mapstructure:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	PublicBaseURL             string `mapstructure:"PUBLIC_BASE_URL" validate:"omitempty,url"`

	RedisAddr          string `mapstructure:"REDIS_ADDR" validate:"required"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB" validate:"gte=0"`
	PreferenceTTLHours int    `mapstructure:"PREFERENCE_TTL_HOURS" validate:"gt=0"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	LogLevel string `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	LogJSON  bool   `mapstructure:"LOG_JSON"`
}

var defaults = map[string]any{
	"PORT":                         "8080",
	"WEBHOOKS_FILE":                "webhooks.yaml",
	"N8N_WEBHOOK_URL":              "",
	"N8N_WEBHOOK_TEST_URL":         "",
	"ENABLE_DEMO_FALLBACK":         false,
	"PROBE_ENDPOINT":               "product_image",
	"PROBE_TIMEOUT_SECONDS":        10,
	"IMAGES_DIR":                   "public/generated-images",
	"IMAGE_RETENTION_HOURS":        0,
	"IMAGE_SWEEP_INTERVAL_MINUTES": 60,
	"MAX_UPLOAD_BYTES":             10 << 20,
	"PUBLIC_BASE_URL":              "",
	"REDIS_ADDR":                   "localhost:6379",
	"REDIS_PASSWORD":               "",
	"REDIS_DB":                     0,
	"PREFERENCE_TTL_HOURS":         720,
	"CORS_ALLOWED_ORIGINS":         []string{"*"},
	"LOG_LEVEL":                    "info",
	"LOG_JSON":                     true,
}

// GetConfig loads .env into the environment when present, then reads
// gateway.yaml from the working directory when present
func GetConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName("gateway")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := validator.Validate(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &config, nil
}

// ProbeTimeout returns the timeout of a single health probe
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// ImageRetention returns how long stored images are kept. Zero keeps them forever.
func (c *Config) ImageRetention() time.Duration {
	return time.Duration(c.ImageRetentionHours) * time.Hour
}

// ImageSweepInterval returns the period of the image retention janitor
func (c *Config) ImageSweepInterval() time.Duration {
	return time.Duration(c.ImageSweepIntervalMinutes) * time.Minute
}

// PreferenceTTL returns how long an untouched currency preference is kept
func (c *Config) PreferenceTTL() time.Duration {
	return time.Duration(c.PreferenceTTLHours) * time.Hour
}
