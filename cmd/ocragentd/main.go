package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Ahzem/ocr-agent/internal/cache"
	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/extract"
	"github.com/Ahzem/ocr-agent/internal/fetch"
	"github.com/Ahzem/ocr-agent/internal/llm"
	"github.com/Ahzem/ocr-agent/internal/monitor"
	"github.com/Ahzem/ocr-agent/internal/ratelimit"
	"github.com/Ahzem/ocr-agent/internal/scheduler"
	"github.com/Ahzem/ocr-agent/internal/server"
	"github.com/Ahzem/ocr-agent/internal/validate"
)

func main() {
	_ = godotenv.Load()

	// Logger
	zlog, _ := zap.NewProduction()
	defer zlog.Sync()
	log := zlog.Sugar()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(slogger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// KV store; Redis preferred, in-memory fallback keeps the service up.
	var kv cache.KV
	rkv, err := cache.NewRedis(cfg.Redis.URL)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = rkv.Ping(pingCtx)
		cancel()
	}
	if err != nil {
		log.Warnw("redis unavailable, degrading to in-memory cache", "url", cfg.Redis.URL, "error", err)
		kv = cache.NewMemory()
	} else {
		log.Infow("redis connected", "url", cfg.Redis.URL)
		kv = rkv
	}
	store := cache.NewStore(kv, cfg.Redis.ResultTTL, cfg.Redis.StatusTTL, slogger)
	defer store.Close()

	gem, err := llm.NewGemini(ctx, cfg.Inference, slogger)
	if err != nil {
		log.Fatalf("inference client: %v", err)
	}
	defer gem.Close()

	maxBytes := cfg.Extract.MaxFileSizeMB * 1024 * 1024
	adapter := extract.NewAdapter(
		extract.NewPopplerBackend(cfg.Extract.Pdftotext, extract.NewExecRunner(slogger), slogger),
		extract.NewPDFLibBackend(slogger),
		slogger,
	)
	fetcher := fetch.New(cfg.Extract.DownloadDir, maxBytes, cfg.Extract.DownloadTimeout, slogger)
	limiter := ratelimit.NewSlidingWindow(cfg.Inference.RatePerMinute, time.Minute, 100*time.Millisecond)

	queue := scheduler.NewQueue(cfg.Scheduler.QueueCapacity, cfg.Scheduler.EnqueueTimeout)
	stats := scheduler.NewStats(queue)
	mon := monitor.New(monitor.NewHostSampler(), stats, cfg.Scheduler.MaxConcurrent, slogger)

	sched := scheduler.New(scheduler.Deps{
		Config:         cfg.Scheduler,
		MaxSourceBytes: maxBytes,
		Queue:          queue,
		Stats:          stats,
		Prober:         mon,
		Store:          store,
		Fetcher:        fetcher,
		Extractor:      adapter,
		Limiter:        limiter,
		Inference:      gem,
		Validator:      validate.NewPipeline(slogger),
		Log:            slogger,
	})

	schedDone := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(schedDone)
	}()

	srv := server.NewServer(cfg.Server, sched, store, zlog)
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.Start() }()
	log.Infof("serving on %s", cfg.Server.HTTPAddr)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("http serve: %v", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http shutdown", "error", err)
	}

	// Workers observe the signal context; wait for the drain, bounded by
	// the same shutdown budget.
	select {
	case <-schedDone:
	case <-shutdownCtx.Done():
		log.Warn("scheduler drain timed out")
	}
	fmt.Println("stopped.")
}
