package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type HistoryBackend string

const (
	HistoryNone      HistoryBackend = "none"
	HistoryFirestore HistoryBackend = "firestore"
	HistoryPostgres  HistoryBackend = "postgres"
)

type Config struct {
	ListenAddr  string
	MetricsAddr string
	LogLevel    string
	Environment string
	SentryDSN   string

	OSRMURL          string
	OpenCageURL      string
	OpenCageAPIKey   string
	GoogleMapsAPIKey string
	HTTPTimeout      time.Duration

	HistoryBackend HistoryBackend
	HistoryLimit   int
	ProjectID      string
	DatabaseURL    string

	NATSURL         string
	NATSPrefix      string
	LogNATSSubjects bool
	FrameInterval   time.Duration

	AuthDisabled    bool
	CORSOrigin      string
	DefaultLanguage string
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:      getenvDefault("LISTEN_ADDR", ":5000"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		Environment:     getenvDefault("ENVIRONMENT", "development"),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		OSRMURL:         strings.TrimRight(getenvDefault("OSRM_URL", "https://router.project-osrm.org"), "/"),
		OpenCageURL:     strings.TrimRight(getenvDefault("OPENCAGE_URL", "https://api.opencagedata.com"), "/"),
		OpenCageAPIKey:  os.Getenv("OPENCAGE_API_KEY"),
		ProjectID:       firstNonEmpty(os.Getenv("GOOGLE_CLOUD_PROJECT"), os.Getenv("FIREBASE_PROJECT_ID")),
		NATSURL:         os.Getenv("NATS_URL"),
		NATSPrefix:      getenvDefault("NATS_SUBJECT_PREFIX", "marker"),
		LogNATSSubjects: parseBool(os.Getenv("LOG_NATS_SUBJECTS")),
		AuthDisabled:    parseBool(os.Getenv("AUTH_DISABLED")),
		CORSOrigin:      getenvDefault("CORS_ORIGIN", "http://localhost:3000"),
		DefaultLanguage: getenvDefault("DEFAULT_LANGUAGE", "en"),
	}
	cfg.GoogleMapsAPIKey = firstNonEmpty(os.Getenv("GOOGLE_MAPS_API_KEY"), os.Getenv("GOOGLE_API_KEY"))

	// Upstream HTTP timeout (seconds)
	if v := os.Getenv("HTTP_TIMEOUT_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SEC: %q", v)
		}
		cfg.HTTPTimeout = time.Duration(sec) * time.Second
	} else {
		cfg.HTTPTimeout = 10 * time.Second
	}

	// Animation frame interval
	if v := os.Getenv("FRAME_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid FRAME_INTERVAL_MS: %q", v)
		}
		cfg.FrameInterval = time.Duration(ms) * time.Millisecond
	} else {
		cfg.FrameInterval = 16 * time.Millisecond
	}

	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid HISTORY_LIMIT: %q", v)
		}
		cfg.HistoryLimit = n
	} else {
		cfg.HistoryLimit = 10
	}

	switch b := HistoryBackend(strings.ToLower(getenvDefault("HISTORY_BACKEND", string(HistoryNone)))); b {
	case HistoryNone:
		cfg.HistoryBackend = b
	case HistoryFirestore:
		if cfg.ProjectID == "" {
			return nil, errors.New("GOOGLE_CLOUD_PROJECT must be set for HISTORY_BACKEND=firestore")
		}
		cfg.HistoryBackend = b
	case HistoryPostgres:
		dsn, err := databaseURL()
		if err != nil {
			return nil, err
		}
		cfg.HistoryBackend = b
		cfg.DatabaseURL = dsn
	default:
		return nil, fmt.Errorf("invalid HISTORY_BACKEND: %q", b)
	}

	if !cfg.AuthDisabled && cfg.ProjectID == "" {
		return nil, errors.New("GOOGLE_CLOUD_PROJECT must be set unless AUTH_DISABLED=true")
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL / PG_DSN, else builds a DSN from PG* vars.
func databaseURL() (string, error) {
	if dsn := firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN")); dsn != "" {
		return dsn, nil
	}
	host := getenvDefault("PGHOST", "127.0.0.1")
	port := getenvDefault("PGPORT", "5432")
	user := getenvDefault("PGUSER", "postgres")
	pass := os.Getenv("PGPASSWORD")
	db := os.Getenv("PGDATABASE")
	if db == "" {
		return "", errors.New("PGDATABASE or DATABASE_URL must be set for HISTORY_BACKEND=postgres")
	}
	sslmode := getenvDefault("PGSSLMODE", "disable")
	if pass != "" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode), nil
	}
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode), nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
