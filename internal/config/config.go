package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	MongoURI    string
	PostgresURI string
	RedisURI    string
	Port        string
	Environment string // ENV: production, development, etc.

	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL; must include the console origin in production
	FrontendURL    string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	AssistantURL    string // upstream LLM gateway for the admin chat assistant
	AssistantAPIKey string

	// DeletionGraceDays is the grace period between a deletion request and
	// the permanent removal of the account.
	DeletionGraceDays int
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		frontend := strings.TrimSpace(getEnv("FRONTEND_URL", "http://localhost:3000"))
		if frontend != "" {
			allowedOrigins = append(allowedOrigins, frontend)
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/taxe")),
		PostgresURI:         getEnv("POSTGRES_URI", "postgres://localhost:5432/taxe?sslmode=disable"),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:                getEnv("PORT", "8080"),
		Environment:         env,
		AllowedOrigins:      allowedOrigins,
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		AssistantURL:        getEnv("ASSISTANT_URL", ""),
		AssistantAPIKey:     getEnv("ASSISTANT_API_KEY", ""),
		DeletionGraceDays:   getEnvInt("DELETION_GRACE_DAYS", 10),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
