package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Ahzem/ocr-agent/internal/cache"
	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/entity"
	"github.com/Ahzem/ocr-agent/internal/extract"
	"github.com/Ahzem/ocr-agent/internal/llm"
	"github.com/Ahzem/ocr-agent/internal/ratelimit"
	"github.com/Ahzem/ocr-agent/internal/scheduler"
	"github.com/Ahzem/ocr-agent/internal/validate"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		inmem = flag.Bool("inmem", false, "use the in-memory cache instead of Redis")
		dir   = flag.String("dir", "", "directory of certificate PDFs to process (required)")
		out   = flag.String("out", "", "output directory for result JSON files (optional, defaults to a sibling of --dir)")
	)
	flag.Parse()

	// Validate required flags
	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	// If output directory not specified, place it next to the input directory
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "extractions")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Pick the cache backend: Redis when reachable, memory otherwise.
	var kv cache.KV
	if *inmem {
		kv = cache.NewMemory()
	} else {
		rkv, err := cache.NewRedis(cfg.Redis.URL)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = rkv.Ping(pingCtx)
			cancel()
		}
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache", "error", err)
			kv = cache.NewMemory()
		} else {
			kv = rkv
		}
	}
	store := cache.NewStore(kv, cfg.Redis.ResultTTL, cfg.Redis.StatusTTL, logger)
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("closing cache", "error", cerr)
		}
	}()

	gem, err := llm.NewGemini(ctx, cfg.Inference, logger)
	if err != nil {
		logger.Error("failed to initialize inference client", "error", err)
		os.Exit(1)
	}
	defer gem.Close()

	adapter := extract.NewAdapter(
		extract.NewPopplerBackend(cfg.Extract.Pdftotext, extract.NewExecRunner(logger), logger),
		extract.NewPDFLibBackend(logger),
		logger,
	)

	sched := scheduler.New(scheduler.Deps{
		Config:    cfg.Scheduler,
		Store:     store,
		Extractor: adapter,
		Limiter:   ratelimit.NewSlidingWindow(cfg.Inference.RatePerMinute, time.Minute, 100*time.Millisecond),
		Inference: gem,
		Validator: validate.NewPipeline(logger),
		Log:       logger,
	})

	// Collect certificate PDFs
	var files []string
	err = filepath.WalkDir(*dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Error("no PDF files found", "dir", *dir)
		os.Exit(1)
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		logger.Error("failed to create output directory", "dir", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("starting batch", "dir", *dir, "files", len(files), "out", *out)

	// Process each certificate
	processed := 0
	failures := 0
	cached := 0

	for _, path := range files {
		logger.Info("processing certificate", "path", path)
		req := entity.ProcessingRequest{
			ID:        entity.NewRequestID(path, time.Now()),
			Source:    path,
			CreatedAt: time.Now(),
		}
		env := sched.Process(ctx, req)
		if env.Success {
			processed++
		} else {
			logger.Error("failed to process certificate", "path", path, "error", env.Error)
			failures++
		}
		if env.Cached {
			cached++
		}

		buf, merr := json.MarshalIndent(env, "", "  ")
		if merr != nil {
			logger.Error("failed to encode result", "path", path, "error", merr)
			os.Exit(1)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".json"
		if werr := os.WriteFile(filepath.Join(*out, name), buf, 0644); werr != nil {
			logger.Error("failed to write result file", "path", path, "error", werr)
			os.Exit(1)
		}
	}

	// Log summary
	logger.Info("batch processing complete",
		"files_found", len(files),
		"succeeded", processed,
		"failures", failures,
		"cache_hits", cached,
		"output_dir", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Certificates found: %d\n", len(files))
	fmt.Printf("- Succeeded: %d\n", processed)
	fmt.Printf("- Failed: %d\n", failures)
	fmt.Printf("- Served from cache: %d\n", cached)
	fmt.Printf("- Output: %s\n", *out)
}
