package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the roadkill report service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// Service area bounding box. Reports outside it are rejected.
	ServiceAreaLatMin float64
	ServiceAreaLatMax float64
	ServiceAreaLonMin float64
	ServiceAreaLonMax float64
	// Optional GeoJSON polygon refining the bounding box.
	ServiceAreaGeoJSON string

	// Deduplication parameters
	DedupRadiusMeters float64
	DedupWindow       time.Duration

	// Rate limiting for report submissions
	SubmitRateLimit  int
	SubmitRateWindow time.Duration

	// Pagination
	DefaultPageSize int
	MaxPageSize     int

	// SendGrid configuration
	SendGridAPIKey    string
	SendGridFromName  string
	SendGridFromEmail string
	CityContactName   string
	CityContactEmail  string

	// Auth configuration
	JWTSecret string
}

// Load loads configuration from environment variables with defaults
// matching the Oak Ridge deployment.
func Load() *Config {
	godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "roadkill"),

		Port: getEnv("PORT", "8080"),

		ServiceAreaLatMin:  getFloatEnv("SERVICE_AREA_LAT_MIN", 35.95),
		ServiceAreaLatMax:  getFloatEnv("SERVICE_AREA_LAT_MAX", 36.05),
		ServiceAreaLonMin:  getFloatEnv("SERVICE_AREA_LON_MIN", -84.35),
		ServiceAreaLonMax:  getFloatEnv("SERVICE_AREA_LON_MAX", -84.25),
		ServiceAreaGeoJSON: getEnv("SERVICE_AREA_GEOJSON", ""),

		DedupRadiusMeters: getFloatEnv("DEDUP_RADIUS_METERS", 100),
		DedupWindow:       getDurationEnv("DEDUP_WINDOW", time.Hour),

		SubmitRateLimit:  getIntEnv("SUBMIT_RATE_LIMIT", 5),
		SubmitRateWindow: getDurationEnv("SUBMIT_RATE_WINDOW", time.Hour),

		DefaultPageSize: getIntEnv("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     getIntEnv("MAX_PAGE_SIZE", 100),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Roadkill Reporter"),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "reports@roadkillreporter.org"),
		CityContactName:   getEnv("CITY_CONTACT_NAME", "Oak Ridge Public Works"),
		CityContactEmail:  getEnv("CITY_CONTACT_EMAIL", "publicworks@oakridgetn.gov"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
