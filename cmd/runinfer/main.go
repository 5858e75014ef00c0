package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Ahzem/ocr-agent/internal/chunk"
	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/extract"
	"github.com/Ahzem/ocr-agent/internal/llm"
	"github.com/Ahzem/ocr-agent/internal/validate"
)

// runinfer replays inference on one certificate to measure how stable the
// model output is. The document is extracted once; only the model call and
// the validation verdict vary between iterations.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: runinfer <certificate.pdf> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	if _, err := os.Stat(path); err != nil {
		logger.Error("cannot read input file", "path", path, "error", err)
		os.Exit(2)
	}
	times := 10
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	if os.Getenv("GEMINI_API_KEY") == "" {
		logger.Error("GEMINI_API_KEY env var is required")
		os.Exit(2)
	}
	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	adapter := extract.NewAdapter(
		extract.NewPopplerBackend(cfg.Extract.Pdftotext, extract.NewExecRunner(logger), logger),
		extract.NewPDFLibBackend(logger),
		logger,
	)
	bundle, err := adapter.Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}
	optimized := chunk.Optimize(bundle.CombinedText, cfg.Scheduler.ChunkBudget)

	gem, err := llm.NewGemini(ctx, cfg.Inference, logger)
	if err != nil {
		logger.Error("failed to initialize inference client", "error", err)
		os.Exit(1)
	}
	defer gem.Close()

	validator := validate.NewPipeline(logger)

	// Loop N times on the SAME extracted text
	base := filepath.Base(path)
	validated := 0
	for i := 1; i <= times; i++ {
		runCtx, cancelRun := context.WithTimeout(context.Background(), 2*time.Minute)
		start := time.Now()
		logger.Info("infer.run.start", "iter", i, "basename", base)

		cand, _, err := gem.ExtractCertificate(runCtx, optimized)
		cancelRun()

		if err != nil {
			logger.Error("infer.run.error", "iter", i, "err", err)
		} else {
			outcome := validator.Validate(cand, validate.Texts{
				Combined: bundle.CombinedText,
				BackendA: bundle.TextA,
				BackendB: bundle.TextB,
			})
			if outcome.Failure == nil {
				validated++
				logger.Info("infer.run.ok",
					"iter", i,
					"elapsed_ms", time.Since(start).Milliseconds(),
					"confidence", outcome.Confidence,
					"needs_review", outcome.NeedsHumanReview,
				)
			} else {
				logger.Warn("infer.run.rejected",
					"iter", i,
					"elapsed_ms", time.Since(start).Milliseconds(),
					"reason", outcome.Failure.String(),
				)
			}
		}

		time.Sleep(750 * time.Millisecond)
	}

	logger.Info("done", "path", path, "times", times, "validated", validated)
}
