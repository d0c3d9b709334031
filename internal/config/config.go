// Package config loads application configuration from the environment.
// A .env file in the working directory is read first when present; real
// environment variables always win over values from the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by BACKEND.
const (
	BackendFirebase = "firebase"
	BackendMySQL    = "mysql"
	BackendMemory   = "memory"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; per-concern settings (rate limiting, previews,
// redis) have their own loaders.
type Config struct {
	Env      string // application environment (dev, test, prod)
	Port     string // HTTP port to listen on
	LogLevel string // debug | info | warn | error
	LogFile  string // optional extra log sink

	Backend string // firebase | mysql | memory

	// mysql backend
	DBUser     string
	DBPass     string
	DBHost     string
	DBPort     string
	DBName     string
	BcryptCost int

	// local object store used by the mysql and memory backends
	MediaDir     string
	MediaBaseURL string

	// firebase backend
	FirebaseProjectID     string
	FirebaseAPIKey        string
	FirebaseStorageBucket string

	SessionSecret string        // HS256 key for the session cookie
	SessionTTL    time.Duration // lifetime of a session cookie
	SecureCookies bool          // set the Secure attribute on cookies

	MapsAPIKey string // optional; enables places autocomplete on the screen form

	AMQPURL  string // optional; enables screen.registered events
	AuditLog string // file the screen.registered consumer appends to
}

// Load reads configuration values from the environment and returns a
// Config. Missing optional values fall back to defaults suitable for local
// development; call Validate before using the result.
func Load() Config {
	// A missing .env file is the normal case in containers.
	_ = godotenv.Load()

	return Config{
		Env:      envStr("APP_ENV", "dev"),
		Port:     envStr("APP_PORT", "8080"),
		LogLevel: strings.ToLower(envStr("LOG_LEVEL", "info")),
		LogFile:  os.Getenv("LOG_FILE"),

		Backend: strings.ToLower(envStr("BACKEND", BackendMemory)),

		DBUser:     os.Getenv("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     envStr("DB_HOST", "127.0.0.1"),
		DBPort:     envStr("DB_PORT", "3306"),
		DBName:     os.Getenv("DB_NAME"),
		BcryptCost: envInt("BCRYPT_COST", 12),

		MediaDir:     envStr("MEDIA_DIR", "data/media"),
		MediaBaseURL: strings.TrimRight(envStr("MEDIA_BASE_URL", "/media"), "/"),

		FirebaseProjectID:     os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseAPIKey:        os.Getenv("FIREBASE_API_KEY"),
		FirebaseStorageBucket: os.Getenv("FIREBASE_STORAGE_BUCKET"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    envDur("SESSION_TTL", 24*time.Hour),
		SecureCookies: envBool("SECURE_COOKIES", false),

		MapsAPIKey: strings.TrimSpace(os.Getenv("MAPS_API_KEY")),

		AMQPURL:  firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
		AuditLog: envStr("SCREEN_AUDIT_LOG", "logs/screens.log"),
	}
}

// Validate reports every missing or inconsistent value at once so a broken
// deployment fails on startup with a complete list.
func (c Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		if c.Env == "prod" {
			errs = append(errs, errors.New("missing required env var: SESSION_SECRET"))
		}
	} else if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}
	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Errorf("SESSION_TTL too short: %s", c.SessionTTL))
	}

	switch c.Backend {
	case BackendFirebase:
		errs = append(errs, required(map[string]string{
			"FIREBASE_PROJECT_ID":     c.FirebaseProjectID,
			"FIREBASE_API_KEY":        c.FirebaseAPIKey,
			"FIREBASE_STORAGE_BUCKET": c.FirebaseStorageBucket,
		})...)
	case BackendMySQL:
		errs = append(errs, required(map[string]string{
			"DB_USER": c.DBUser,
			"DB_NAME": c.DBName,
		})...)
	case BackendMemory:
		if c.Env == "prod" {
			errs = append(errs, errors.New("BACKEND=memory is not allowed when APP_ENV=prod"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BACKEND %q (want firebase, mysql or memory)", c.Backend))
	}
	return errors.Join(errs...)
}

// MapsEnabled is the maps enrichment capability flag. It is resolved from
// configuration once; views never check for the maps library themselves.
func (c Config) MapsEnabled() bool { return c.MapsAPIKey != "" }

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

func required(kv map[string]string) []error {
	var errs []error
	for _, k := range sortedKeys(kv) {
		if kv[k] == "" {
			errs = append(errs, fmt.Errorf("missing required env var: %s", k))
		}
	}
	return errs
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
