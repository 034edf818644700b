// Package config reads server configuration from environment variables.
//
// Every external collaborator is configured here: the document store, the
// identity provider, and the asset directory. main stays a thin composition
// root that calls Load once and passes the struct down.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port int

	// Document store.
	MongoURI string
	MongoDB  string

	// Identity provider.
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// Asset storage. Uploaded files land in UploadDir and are served back
	// under PublicBaseURL + /static/.
	UploadDir     string
	PublicBaseURL string
}

// Load builds a Config from the environment, applying defaults where a
// variable is unset. It only fails on values that cannot be parsed — missing
// optional collaborators (e.g. Google credentials) are the caller's problem
// to warn about.
func Load() (Config, error) {
	cfg := Config{
		Port:               8080,
		MongoURI:           getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getenv("MONGO_DB", "bazaar"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		UploadDir:          getenv("UPLOAD_DIR", "data/uploads"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	cfg.PublicBaseURL = getenv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", cfg.Port))
	if cfg.GoogleCallbackURL == "" {
		cfg.GoogleCallbackURL = cfg.PublicBaseURL + "/auth/google/callback"
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
