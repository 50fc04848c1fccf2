package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	LogLevel  string

	// NASA FIRMS
	FIRMSAPIKey  string
	FIRMSSource  string
	FIRMSBaseURL string
	FIRMSCountry string // ISO3; empty means the default bounding box
	IngestCron   string // empty disables scheduled ingestion
	IngestDays   int

	// Detection
	ClusterDistanceKm      float64
	ClusterTimeWindowHours float64
	BurnedAreaMethod       string
	DefaultPredictionHours []float64
	WorkerCount            int

	// HTTP
	RateLimit   int
	RateWindow  time.Duration
	HTTPTimeout time.Duration
}

// Load 加载配置. A .env file in the working directory is read first when present;
// real environment variables take precedence over it.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[Config] Failed to load .env: %v", err)
	}

	cfg := &Config{
		Port:      getString("PORT", ":8080"),
		DBPath:    getString("DB_PATH", "./data/firewatch.db"),
		JWTSecret: getString("JWT_SECRET", defaultJWTSecret),
		LogLevel:  strings.ToLower(getString("LOG_LEVEL", "info")),

		FIRMSAPIKey:  os.Getenv("FIRMS_API_KEY"),
		FIRMSSource:  getString("FIRMS_SOURCE", "VIIRS_NOAA20_NRT"),
		FIRMSBaseURL: getString("FIRMS_BASE_URL", "https://firms.modaps.eosdis.nasa.gov/api"),
		FIRMSCountry: strings.ToUpper(os.Getenv("FIRMS_COUNTRY")),
		IngestCron:   getString("INGEST_CRON", "*/30 * * * *"),
		IngestDays:   getInt("INGEST_DAYS", 1),

		ClusterDistanceKm:      getFloat("CLUSTER_DISTANCE_KM", 5),
		ClusterTimeWindowHours: getFloat("CLUSTER_TIME_WINDOW_HOURS", 0),
		BurnedAreaMethod:       getString("BURNED_AREA_METHOD", "hybrid"),
		DefaultPredictionHours: getFloatList("DEFAULT_PREDICTION_HOURS", []float64{1, 3, 6}),
		WorkerCount:            getInt("WORKER_COUNT", 0),

		RateLimit:   getInt("RATE_LIMIT", 120),
		RateWindow:  getDuration("RATE_WINDOW", time.Minute),
		HTTPTimeout: getDuration("HTTP_TIMEOUT", 30*time.Second),
	}

	if cfg.JWTSecret == defaultJWTSecret {
		log.Printf("[Config] JWT_SECRET not set, using the development default")
	}
	return cfg
}

// IsDebug reports whether verbose logging was requested
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// ClusterTimeWindow converts the configured window to a duration; 0 disables the time gate
func (c *Config) ClusterTimeWindow() time.Duration {
	return time.Duration(c.ClusterTimeWindowHours * float64(time.Hour))
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %g", key, raw, fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return v
}

// getFloatList parses a comma separated list such as "1,3,6"
func getFloatList(key string, fallback []float64) []float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	var out []float64
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			log.Printf("[Config] Invalid %s=%q, using defaults", key, raw)
			return fallback
		}
		out = append(out, v)
	}
	return out
}
