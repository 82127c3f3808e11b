package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all service settings.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Weather lookups against Open-Meteo.
	WeatherEnabled    bool
	WeatherBaseURL    string
	WeatherTimeout    time.Duration
	WeatherMaxRetries int

	// Empty paths select the data bundled with the binary.
	ReferenceDataPath string
	SchemaDir         string
	ModelDir          string

	// Prediction events. Publishing is disabled when no brokers are set.
	KafkaBrokers          []string
	KafkaPredictionsTopic string
}

// EventsEnabled reports whether prediction events are published to Kafka.
func (c *Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration in order of precedence (high -> low):
//  1. environment variables, including a .env file in the working directory
//  2. the YAML file named by PREDICTOR_CONFIG, keyed by the lower-cased
//     variable name (http_addr, weather_timeout, ...)
//  3. defaults
func Load() (*Config, error) {
	// A missing .env is not an error; existing variables are not overridden.
	_ = godotenv.Load()

	k := koanf.New(".")
	if path := os.Getenv("PREDICTOR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load PREDICTOR_CONFIG %s: %w", path, err)
		}
	}
	get := func(env, def string) string {
		if key := strings.ToLower(env); k.Exists(key) {
			def = k.String(key)
		}
		return sharedcfg.EnvOrDefault(env, def)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	if os.Getenv("SHUTDOWN_TIMEOUT") == "" && k.Exists("shutdown_timeout") {
		if shutdownTimeout, err = parsePositiveDuration("SHUTDOWN_TIMEOUT", k.String("shutdown_timeout")); err != nil {
			return nil, err
		}
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", get("WEATHER_TIMEOUT", "5s"))
	if err != nil {
		return nil, err
	}

	weatherEnabled, err := strconv.ParseBool(get("WEATHER_ENABLED", "true"))
	if err != nil {
		return nil, errors.New("invalid WEATHER_ENABLED")
	}

	retries, err := strconv.Atoi(get("WEATHER_MAX_RETRIES", "1"))
	if err != nil || retries < 0 || retries > 3 {
		return nil, errors.New("invalid WEATHER_MAX_RETRIES: must be between 0 and 3")
	}

	var brokers []string
	if raw := get("KAFKA_BROKERS", ""); strings.TrimSpace(raw) != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		HTTPAddr:        get("HTTP_ADDR", ":8080"),
		LogLevel:        get("LOG_LEVEL", "info"),
		LogFormat:       get("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherEnabled:    weatherEnabled,
		WeatherBaseURL:    get("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		WeatherTimeout:    weatherTimeout,
		WeatherMaxRetries: retries,

		ReferenceDataPath: get("REFERENCE_DATA_PATH", ""),
		SchemaDir:         get("SCHEMA_DIR", ""),
		ModelDir:          get("MODEL_DIR", ""),

		KafkaBrokers:          brokers,
		KafkaPredictionsTopic: get("KAFKA_PREDICTIONS_TOPIC", "attendance-predictions"),
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}
	if cfg.WeatherEnabled && cfg.WeatherBaseURL == "" {
		return nil, errors.New("WEATHER_ENABLED is true but WEATHER_BASE_URL is not set")
	}
	if cfg.EventsEnabled() && cfg.KafkaPredictionsTopic == "" {
		return nil, errors.New("KAFKA_PREDICTIONS_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parsePositiveDuration(name, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", name)
	}
	return d, nil
}
