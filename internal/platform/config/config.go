package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures everything main needs to wire the service.
type Server struct {
	Addr            string
	JWTSigningKey   string
	UpstreamBaseURL string
	UpstreamAPIKey  string
	UpstreamTimeout time.Duration
	RequestTimeout  time.Duration
	MFATokenTTL     time.Duration
	ResendCooldown  time.Duration
	MaxNominees     int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("FOLIO_ADDR", ":8080"),
		JWTSigningKey:   envOr("FOLIO_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		UpstreamBaseURL: envOr("FOLIO_UPSTREAM_URL", "http://localhost:9090"),
		UpstreamAPIKey:  os.Getenv("FOLIO_UPSTREAM_API_KEY"),
		UpstreamTimeout: envDuration("FOLIO_UPSTREAM_TIMEOUT", 10*time.Second),
		RequestTimeout:  envDuration("FOLIO_REQUEST_TIMEOUT", 30*time.Second),
		MFATokenTTL:     envDuration("FOLIO_MFA_TOKEN_TTL", 5*time.Minute),
		ResendCooldown:  envDuration("FOLIO_MFA_RESEND_COOLDOWN", 30*time.Second),
		MaxNominees:     envInt("FOLIO_MAX_NOMINEES", 3),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
