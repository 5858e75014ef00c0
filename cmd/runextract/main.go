package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Ahzem/ocr-agent/internal/chunk"
	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/extract"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <certificate.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]
	if _, err := os.Stat(path); err != nil {
		logger.Error("cannot read input file", "path", path, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Build both extraction backends and reconcile them through the adapter.
	adapter := extract.NewAdapter(
		extract.NewPopplerBackend(cfg.Extract.Pdftotext, extract.NewExecRunner(logger), logger),
		extract.NewPDFLibBackend(logger),
		logger,
	)

	start := time.Now()
	bundle, err := adapter.Extract(ctx, path)
	dur := time.Since(start)

	if err != nil {
		logger.Error("text extraction failed",
			"path", path, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	optimized := chunk.Optimize(bundle.CombinedText, cfg.Scheduler.ChunkBudget)

	logger.Info("text extraction OK",
		"path", path,
		"method", bundle.Method,
		"text_length", len(bundle.CombinedText),
		"optimized_length", len(optimized),
		"table_count", len(bundle.Tables),
		"degraded_backends", bundle.Degraded,
		"duration_ms", dur.Milliseconds(),
	)
}
