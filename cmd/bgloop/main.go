package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"bgloop/api"
	"bgloop/assets"
	"bgloop/background"
	"bgloop/composite"
	"bgloop/config"
	"bgloop/kafka"
	"bgloop/planner"
	"bgloop/probe"
	"bgloop/services"

	"github.com/redis/go-redis/v9"
)

func main() {
	settings := config.Load()

	kafkaMode := flag.Bool("kafka", false, "Run in Kafka consumer mode (consume plan requests)")
	apiPort := flag.String("port", settings.Port, "API server port (e.g., :8082)")
	trackOut := flag.String("track", "", "Render the background track to this file and exit")
	asset := flag.String("asset", settings.DefaultAsset, "Background clip for -track")
	frames := flag.Int("frames", 0, "Composition length in frames for -track")
	fps := flag.Float64("fps", config.DefaultFPS, "Composition frame rate for -track")
	flag.Parse()

	log.Println("🎬 Background Layer Service - Starting...")

	resolver := newResolver(settings)
	store, cache := newRedisBackends(settings)
	compositor := composite.NewCompositor(composite.DefaultFrame())

	svc := services.NewBackgroundService(services.Options{
		Resolver:     resolver,
		Durations:    probe.NewCachedProber(probe.NewFFProbe(), cache),
		Store:        store,
		Frames:       compositor,
		DefaultAsset: settings.DefaultAsset,
		Workers:      settings.PlanWorkers,
	})

	if *trackOut != "" {
		log.Println("🎞️  Running in TRACK mode")
		src, err := resolver.Resolve(context.Background(), *asset)
		if err != nil {
			log.Fatalf("❌ Failed to resolve asset: %v", err)
		}
		timing := background.TimingConfig{DurationInFrames: *frames, FPS: *fps}
		if err := compositor.RenderTrack(background.Render(0, timing, src), timing, *trackOut); err != nil {
			log.Fatalf("❌ Track rendering failed: %v", err)
		}
		log.Printf("✅ Background track written: %s", *trackOut)
		os.Exit(0)
	}

	if *kafkaMode {
		log.Println("📨 Running in KAFKA consumer mode")
		log.Printf("🔗 Kafka Brokers: %v", settings.KafkaBrokers)
		log.Printf("📋 Topic: %s", settings.KafkaTopic)
		log.Printf("👥 Consumer Group: %s", settings.KafkaGroupID)

		if err := kafka.RunPlanConsumer(settings.KafkaBrokers, settings.KafkaTopic, settings.KafkaGroupID, svc); err != nil {
			log.Fatalf("❌ Kafka consumer failed: %v", err)
		}
		os.Exit(0)
	}

	log.Println("🌐 Running in API mode")
	r := api.NewRouter(svc)

	log.Printf("🚀 API Server listening on %s", *apiPort)
	log.Println("📌 Endpoints:")
	log.Println("   GET  /api/health")
	log.Println("   GET  /api/background/assets")
	log.Println("   POST /api/background/directive")
	log.Println("   POST /api/background/plans")
	log.Println("   GET  /api/background/plans/:uuid")
	log.Println("   GET  /api/background/plans/:uuid/frames/:frame")

	if err := http.ListenAndServe(*apiPort, r); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

// newResolver uses presigned S3 URLs when S3_BUCKET is set, the static directory otherwise
func newResolver(s config.Settings) assets.Resolver {
	if s.S3Bucket == "" {
		log.Printf("📁 Serving backgrounds from %s/", s.StaticDir)
		return assets.NewDirResolver(s.StaticDir)
	}

	r, err := assets.NewS3Resolver(context.Background(), assets.S3Config{Region: s.S3Region}, s.S3Bucket, s.S3Prefix, s.S3PresignTTL)
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (falling back to %s/)", err, s.StaticDir)
		return assets.NewDirResolver(s.StaticDir)
	}
	log.Printf("☁️  Serving backgrounds from s3://%s/%s", s.S3Bucket, s.S3Prefix)
	return r
}

// newRedisBackends returns Redis-backed storage, or in-process fallbacks when Redis is unreachable
func newRedisBackends(s config.Settings) (planner.Store, probe.DurationCache) {
	client := redis.NewClient(&redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPass,
		DB:       s.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis not available at %s: %v", s.RedisAddr, err)
		log.Println("Running with IN-MEMORY plans and no duration cache")
		_ = client.Close()
		return planner.NewMemoryStore(), nil
	}

	log.Printf("Redis connected at %s", s.RedisAddr)
	return planner.NewRedisStore(client, config.PlanTTL), probe.NewRedisCache(client, s.DurationCacheTTL)
}
