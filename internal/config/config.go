package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StaticDir is the absolute path to the directory served at /static/.
	// Set via STATIC_DIR (relative paths are resolved against the process working directory at startup).
	StaticDir string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	WeatherAPIBaseURL string
	WeatherAPIKey     string
	ForecastDays      int
	// ForecastTimeout bounds a live forecast request. Zero means no timeout.
	ForecastTimeout time.Duration
	ForecastRPS     float64
	ForecastBurst   int
	// LiveStamp selects how live forecasts are stamped: "weekday" or "now".
	LiveStamp      string
	CacheResponses bool

	MQTTBroker     string
	MQTTPort       int
	MQTTClientID   string
	WorkerTopicIn  string
	WorkerTopicOut string
	// WorkerEcho starts an in-process worker that answers login toggles.
	WorkerEcho bool
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := ParseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := envOr("HTTP_ADDR", ":8080")

	staticDir := envOr("STATIC_DIR", "static")
	staticDir, err = filepath.Abs(staticDir)
	if err != nil {
		return Config{}, fmt.Errorf("STATIC_DIR %q: %w", staticDir, err)
	}

	driver := envOr("DB_DRIVER", "sqlite3")
	switch driver {
	case "sqlite3", "sqlite":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3, sqlite)", driver)
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := envOr("SQLITE_PATH", "data/weather.db")

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}

	baseURL := strings.TrimRight(envOr("WEATHER_API_BASE_URL", "https://api.weatherapi.com/v1"), "/")
	apiKey := strings.TrimSpace(os.Getenv("WEATHER_API_KEY"))

	days, err := envInt("FORECAST_DAYS", 7)
	if err != nil {
		return Config{}, err
	}
	if days <= 0 {
		return Config{}, fmt.Errorf("FORECAST_DAYS must be positive, got %d", days)
	}
	timeout, err := envDuration("FORECAST_TIMEOUT", 0)
	if err != nil {
		return Config{}, err
	}
	if timeout < 0 {
		return Config{}, fmt.Errorf("FORECAST_TIMEOUT must not be negative, got %v", timeout)
	}

	rpsStr := envOr("FORECAST_RPS", "2")
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid FORECAST_RPS %q: %w", rpsStr, err)
	}
	if rps <= 0 {
		return Config{}, fmt.Errorf("FORECAST_RPS must be positive, got %v", rps)
	}
	burst, err := envInt("FORECAST_BURST", 5)
	if err != nil {
		return Config{}, err
	}
	if burst <= 0 {
		return Config{}, fmt.Errorf("FORECAST_BURST must be positive, got %d", burst)
	}

	liveStamp := strings.ToLower(envOr("LIVE_STAMP", "weekday"))
	switch liveStamp {
	case "weekday", "now":
	default:
		return Config{}, fmt.Errorf("invalid LIVE_STAMP %q (allowed: weekday, now)", liveStamp)
	}

	cacheResponsesStr := envOr("CACHE_RESPONSES", "true")
	cacheResponses, err := strconv.ParseBool(cacheResponsesStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid CACHE_RESPONSES %q: %w", cacheResponsesStr, err)
	}

	mqttBroker := envOr("MQTT_BROKER", "localhost")
	mqttPort, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}
	mqttClientID := envOr("MQTT_CLIENT_ID", "pwa-weather")
	topicIn := envOr("WORKER_TOPIC_IN", "pwa-weather/worker/status")
	topicOut := envOr("WORKER_TOPIC_OUT", "pwa-weather/worker/login")
	workerEchoStr := envOr("WORKER_ECHO", "false")
	workerEcho, err := strconv.ParseBool(workerEchoStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid WORKER_ECHO %q: %w", workerEchoStr, err)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		StaticDir:             staticDir,
		SQLiteDriver:          driver,
		SQLiteDSN:             dsn,
		SQLitePath:            path,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		WeatherAPIBaseURL:     baseURL,
		WeatherAPIKey:         apiKey,
		ForecastDays:          days,
		ForecastTimeout:       timeout,
		ForecastRPS:           rps,
		ForecastBurst:         burst,
		LiveStamp:             liveStamp,
		CacheResponses:        cacheResponses,
		MQTTBroker:            mqttBroker,
		MQTTPort:              mqttPort,
		MQTTClientID:          mqttClientID,
		WorkerTopicIn:         topicIn,
		WorkerTopicOut:        topicOut,
		WorkerEcho:            workerEcho,
	}, nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}
