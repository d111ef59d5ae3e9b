package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "KAFKA_BOOTSTRAP_SERVERS", "KAFKA_TOPIC_PLAN_REQUESTS", "KAFKA_CONSUMER_GROUP_ID",
		"REDIS_ADDR", "REDIS_PASS", "REDIS_DB", "STATIC_DIR", "DEFAULT_ASSET",
		"S3_BUCKET", "S3_PREFIX", "S3_REGION", "S3_PRESIGN_TTL_SECONDS",
		"PLAN_WORKERS", "DURATION_CACHE_TTL_SECONDS",
	} {
		t.Setenv(key, "")
	}

	s := FromEnv()
	if s.Port != ":8082" {
		t.Fatalf("Port = %q", s.Port)
	}
	if len(s.KafkaBrokers) != 1 || s.KafkaBrokers[0] != "localhost:9093" {
		t.Fatalf("KafkaBrokers = %v", s.KafkaBrokers)
	}
	if s.KafkaTopic != "background-plan-requests" {
		t.Fatalf("KafkaTopic = %q", s.KafkaTopic)
	}
	if s.DefaultAsset != DefaultAsset || s.StaticDir != StaticDir {
		t.Fatalf("asset defaults = %q in %q", s.DefaultAsset, s.StaticDir)
	}
	if s.S3Bucket != "" || s.S3Prefix != "" {
		t.Fatalf("S3 should be disabled by default: %+v", s)
	}
	if s.PlanWorkers != PlanWorkers || s.DurationCacheTTL != DurationCacheTTL || s.S3PresignTTL != PresignTTL {
		t.Fatalf("numeric defaults not applied: %+v", s)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("S3_BUCKET", " backgrounds ")
	t.Setenv("S3_PREFIX", "/clips/loops/")
	t.Setenv("S3_PRESIGN_TTL_SECONDS", "120")
	t.Setenv("PLAN_WORKERS", "not-a-number")

	s := FromEnv()
	if s.Port != ":9000" {
		t.Fatalf("Port = %q", s.Port)
	}
	if len(s.KafkaBrokers) != 2 || s.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("KafkaBrokers = %v", s.KafkaBrokers)
	}
	if s.RedisDB != 3 {
		t.Fatalf("RedisDB = %d", s.RedisDB)
	}
	if s.S3Bucket != "backgrounds" || s.S3Prefix != "clips/loops/" {
		t.Fatalf("S3 = %q %q", s.S3Bucket, s.S3Prefix)
	}
	if s.S3PresignTTL != 2*time.Minute {
		t.Fatalf("S3PresignTTL = %v", s.S3PresignTTL)
	}
	if s.PlanWorkers != PlanWorkers {
		t.Fatalf("invalid PLAN_WORKERS should fall back, got %d", s.PlanWorkers)
	}
}
