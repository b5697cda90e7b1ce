package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	CORSOrigins string
	// Firebase Authentication
	FirebaseProjectID string
	FirebaseJWKSURL   string // Constructed from the securetoken JWKS endpoint
	// Vertex AI Configuration
	GoogleCloudProject string
	VertexAILocation   string
	GeminiModel        string
	// Google Maps
	GoogleMapsAPIKey string
	// Cloud Storage
	HistoryImageBucket string
	ImageCDNDomain     string
	// Debug flags
	Debug bool // Enables the /debug endpoint and raw error detail in logs
}

// firebaseJWKSEndpoint serves the public keys that sign Firebase ID tokens.
const firebaseJWKSEndpoint = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	firebaseProject := getEnv("FIREBASE_PROJECT_ID", "")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: tablePrefix,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// Firebase Authentication
		FirebaseProjectID: firebaseProject,
		FirebaseJWKSURL:   getEnv("FIREBASE_JWKS_URL", firebaseJWKSEndpoint),
		// Vertex AI Configuration
		GoogleCloudProject: getEnv("GOOGLE_CLOUD_PROJECT", firebaseProject),
		VertexAILocation:   getEnv("VERTEX_AI_LOCATION", "us-central1"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		// Google Maps
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		// Cloud Storage
		HistoryImageBucket: getEnv("HISTORY_IMAGE_BUCKET", ""),
		ImageCDNDomain:     getEnv("IMAGE_CDN_DOMAIN", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// IssuerURL returns the expected issuer claim for Firebase ID tokens.
func (c *Config) IssuerURL() string {
	return fmt.Sprintf("https://securetoken.google.com/%s", c.FirebaseProjectID)
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
