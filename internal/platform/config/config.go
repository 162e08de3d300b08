package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	Environment   string
	DatabaseURL   string
	JWTSigningKey string
	TokenTTL      time.Duration
	BcryptCost    int
	LogLevel      string
	// TrustedProxies is a comma-separated CIDR list allowed to set forwarding headers.
	TrustedProxies string
}

var TokenTTL = 15 * time.Minute

// Load reads an optional .env file and then builds the config from the environment.
// Variables already present in the environment win over the file.
func Load(files ...string) Server {
	_ = godotenv.Load(files...) //nolint:errcheck // a missing .env is the normal production case
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TENANTRY_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	environment := os.Getenv("TENANTRY_ENV")
	if environment == "" {
		environment = "development"
	}

	tokenTTL := TokenTTL
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil {
			tokenTTL = duration
		}
	}

	cost := bcrypt.DefaultCost
	if raw := os.Getenv("BCRYPT_COST"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			cost = parsed
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return Server{
		Addr:           addr,
		Environment:    environment,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSigningKey:  jwtSigningKey,
		TokenTTL:       tokenTTL,
		BcryptCost:     cost,
		LogLevel:       logLevel,
		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),
	}
}
