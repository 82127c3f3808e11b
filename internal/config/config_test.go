package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "predictor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.WeatherEnabled)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.WeatherBaseURL)
	assert.Equal(t, 5*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 1, cfg.WeatherMaxRetries)
	assert.Empty(t, cfg.ReferenceDataPath)
	assert.Empty(t, cfg.SchemaDir)
	assert.Empty(t, cfg.ModelDir)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.EventsEnabled())
	assert.Equal(t, "attendance-predictions", cfg.KafkaPredictionsTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WEATHER_ENABLED", "false")
	t.Setenv("WEATHER_BASE_URL", "http://weather.local/v1/forecast")
	t.Setenv("WEATHER_TIMEOUT", "2s")
	t.Setenv("WEATHER_MAX_RETRIES", "3")
	t.Setenv("REFERENCE_DATA_PATH", "/etc/predictor/reference.yaml")
	t.Setenv("SCHEMA_DIR", "/etc/predictor/schemas")
	t.Setenv("MODEL_DIR", "/etc/predictor/models")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_PREDICTIONS_TOPIC", "custom-predictions")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.WeatherEnabled)
	assert.Equal(t, "http://weather.local/v1/forecast", cfg.WeatherBaseURL)
	assert.Equal(t, 2*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 3, cfg.WeatherMaxRetries)
	assert.Equal(t, "/etc/predictor/reference.yaml", cfg.ReferenceDataPath)
	assert.Equal(t, "/etc/predictor/schemas", cfg.SchemaDir)
	assert.Equal(t, "/etc/predictor/models", cfg.ModelDir)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, "custom-predictions", cfg.KafkaPredictionsTopic)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("PREDICTOR_CONFIG", writeConfigFile(t, `
http_addr: ":7070"
weather_timeout: 3s
weather_max_retries: 2
shutdown_timeout: 20s
model_dir: /srv/models
`))
	t.Setenv("MODEL_DIR", "/override/models")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 2, cfg.WeatherMaxRetries)
	assert.Equal(t, 20*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/override/models", cfg.ModelDir, "environment wins over the file")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("PREDICTOR_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREDICTOR_CONFIG")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidWeatherTimeout(t *testing.T) {
	for _, v := range []string{"bad", "0s", "-1s"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("WEATHER_TIMEOUT", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "WEATHER_TIMEOUT")
		})
	}
}

func TestLoad_InvalidWeatherRetries(t *testing.T) {
	for _, v := range []string{"-1", "4", "many"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("WEATHER_MAX_RETRIES", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "WEATHER_MAX_RETRIES")
		})
	}
}

func TestLoad_InvalidWeatherEnabled(t *testing.T) {
	t.Setenv("WEATHER_ENABLED", "sometimes")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_ENABLED")
}
