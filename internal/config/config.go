package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the navigation service.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// External geocoding/directions provider
	GoogleMapsAPIKey string
	GoogleMapsURL    string
	ProviderTimeout  time.Duration

	// Planner tunables
	PlanDeadline      time.Duration
	SegmentHopBound   int
	MaxRoutesReturned int
	ResponseCacheTTL  time.Duration

	// Distance heuristics
	WalkingSpeedKmh    float64
	DrivingSpeedKmh    float64
	TrafficFactor      float64
	WalkableDistanceKm float64

	// Confidence thresholds
	MinRecentReports    int
	ReportRecencyWindow time.Duration
	FeedbackWindowSize  int

	// Location resolution
	CoordinateToleranceMeters float64
}

// Load reads configuration from the environment, falling back to defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", ":8080"),
		DBPath:    getEnv("DB_PATH", "./data/avigate.db"),
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		GoogleMapsURL:    getEnv("GOOGLE_MAPS_URL", "https://maps.googleapis.com/maps/api"),
		ProviderTimeout:  getEnvDuration("PROVIDER_TIMEOUT", 5*time.Second),

		PlanDeadline:      getEnvDuration("PLAN_DEADLINE", 10*time.Second),
		SegmentHopBound:   getEnvInt("SEGMENT_HOP_BOUND", 3),
		MaxRoutesReturned: getEnvInt("MAX_ROUTES_RETURNED", 3),
		ResponseCacheTTL:  getEnvDuration("RESPONSE_CACHE_TTL", 30*time.Minute),

		WalkingSpeedKmh:    getEnvFloat("WALKING_SPEED_KMH", 5.0),
		DrivingSpeedKmh:    getEnvFloat("DRIVING_SPEED_KMH", 30.0),
		TrafficFactor:      getEnvFloat("TRAFFIC_FACTOR", 1.3),
		WalkableDistanceKm: getEnvFloat("WALKABLE_DISTANCE_KM", 2.0),

		MinRecentReports:    getEnvInt("MIN_RECENT_REPORTS", 3),
		ReportRecencyWindow: getEnvDuration("REPORT_RECENCY_WINDOW", 90*24*time.Hour),
		FeedbackWindowSize:  getEnvInt("FEEDBACK_WINDOW_SIZE", 50),

		CoordinateToleranceMeters: getEnvFloat("COORDINATE_TOLERANCE_METERS", 100),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
