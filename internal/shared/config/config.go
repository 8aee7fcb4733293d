package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	PublicBaseURL   string
	Env             string

	RecordStoreType string
	DatabaseURL     string
	SQLitePath      string

	BlobStoreType   string
	LocalStoreDir   string
	StorageBucket   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
	SSEKMSKeyID     string
	MaxUploadBytes  int64

	RedisURL            string
	NATSURL             string
	JWTSecret           string
	SessionTTL          time.Duration
	SessionCheckTimeout time.Duration
	LoginRatePerMin     int

	CacheRefreshSchedule string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	recordStore := normalizeRecordStore(getEnv("RECORD_STORE", ""), dbURL)

	if env == "production" && recordStore == "memory" {
		log.Printf("RECORD_STORE=memory is not durable; set DATABASE_URL in production")
	}
	if env == "production" && os.Getenv("JWT_SECRET") == "" {
		log.Printf("JWT_SECRET is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		Env:             env,

		RecordStoreType: recordStore,
		DatabaseURL:     dbURL,
		SQLitePath:      getEnv("SQLITE_PATH", "./data/portfolio.db"),

		BlobStoreType:   normalizeBlobStore(getEnv("BLOB_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data/blobs"),
		StorageBucket:   getEnv("STORAGE_BUCKET", "project_files"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		MaxUploadBytes:  getEnvInt64("MAX_UPLOAD_BYTES", 25<<20),

		RedisURL:            getEnv("REDIS_URL", ""),
		NATSURL:             getEnv("NATS_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		SessionTTL:          getEnvDuration("SESSION_TTL", 12*time.Hour),
		SessionCheckTimeout: getEnvDuration("SESSION_CHECK_TIMEOUT", 2*time.Second),
		LoginRatePerMin:     int(getEnvInt64("LOGIN_RATE_PER_MIN", 10)),

		CacheRefreshSchedule: getEnv("CACHE_REFRESH_SCHEDULE", "@every 5m"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config %s invalid duration: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

// normalizeRecordStore picks postgres when a DATABASE_URL is present and no
// explicit store was requested.
func normalizeRecordStore(raw, dbURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "memory":
		return "memory"
	}
	if strings.TrimSpace(dbURL) != "" {
		return "postgres"
	}
	return "memory"
}

func normalizeBlobStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// IsDevLike reports whether env tolerates in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
