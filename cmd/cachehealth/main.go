package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Ahzem/ocr-agent/internal/cache"
)

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Println("ERROR: REDIS_URL env var is required")
		log.Println("  mac/Linux (bash/zsh): export REDIS_URL=redis://localhost:6379/0")
		log.Println("  Windows (PowerShell): $env:REDIS_URL='redis://localhost:6379/0'")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kv, err := cache.NewRedis(redisURL)
	if err != nil {
		log.Fatalf("opening redis: %v", err)
	}
	defer func(kv *cache.RedisKV) {
		if cerr := kv.Close(); cerr != nil {
			log.Printf("ERROR: closing redis client: %v", cerr)
		}
	}(kv)

	// Health check via ping
	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	if err := kv.Ping(pingCtx); err != nil {
		log.Fatalf("cache health: FAIL (%v)", err)
	}
	log.Println("cache health: OK")

	// typed counter reads via the store
	store := cache.NewStore(kv, 24*time.Hour, 1*time.Hour, nil)
	names := []string{
		cache.CounterRequests,
		cache.CounterCacheHits,
		cache.CounterCacheMisses,
		cache.CounterErrors,
	}
	for _, name := range names {
		log.Printf("- %s: %d", name, store.Counter(ctx, name))
	}
}
