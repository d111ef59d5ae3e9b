package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds runtime configuration resolved from the environment
type Settings struct {
	Port string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	RedisAddr string
	RedisPass string
	RedisDB   int

	StaticDir    string
	DefaultAsset string

	// S3Bucket switches asset resolution to presigned S3 URLs when set
	S3Bucket     string
	S3Prefix     string
	S3Region     string
	S3PresignTTL time.Duration

	PlanWorkers      int
	DurationCacheTTL time.Duration
}

// Load reads .env if present (non-fatal if missing) and then the environment.
func Load() Settings {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds Settings from environment variables, applying defaults.
func FromEnv() Settings {
	s := Settings{
		Port:             ":" + getEnv("PORT", "8082"),
		KafkaBrokers:     strings.Split(getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9093"), ","),
		KafkaTopic:       getEnv("KAFKA_TOPIC_PLAN_REQUESTS", "background-plan-requests"),
		KafkaGroupID:     getEnv("KAFKA_CONSUMER_GROUP_ID", "background-service-consumer-group"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:        os.Getenv("REDIS_PASS"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		StaticDir:        getEnv("STATIC_DIR", StaticDir),
		DefaultAsset:     getEnv("DEFAULT_ASSET", DefaultAsset),
		S3Bucket:         strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:         strings.TrimSpace(os.Getenv("S3_REGION")),
		S3PresignTTL:     getEnvSeconds("S3_PRESIGN_TTL_SECONDS", PresignTTL),
		PlanWorkers:      getEnvInt("PLAN_WORKERS", PlanWorkers),
		DurationCacheTTL: getEnvSeconds("DURATION_CACHE_TTL_SECONDS", DurationCacheTTL),
	}

	if prefix := strings.TrimSpace(os.Getenv("S3_PREFIX")); prefix != "" {
		s.S3Prefix = strings.Trim(prefix, "/") + "/"
	}

	return s
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
