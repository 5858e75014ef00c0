package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/entity"
)

// GeminiClient implements Extractor against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	cfg    common.InferenceConfig
	log    *slog.Logger
}

// NewGemini dials the Gemini API. The model name and generation parameters
// come from cfg; an empty model falls back to gemini-1.5-flash.
func NewGemini(ctx context.Context, cfg common.InferenceConfig, log *slog.Logger) (*GeminiClient, error) {
	if log == nil {
		log = slog.Default()
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, common.NewAppError("INFERENCE_INIT_FAILED", "create inference client", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiClient{client: cl, model: model, cfg: cfg, log: log}, nil
}

func (g *GeminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// ExtractCertificate prompts the model with the document text and decodes
// the response into a candidate. Transport failures and empty responses are
// inference errors; undecodable responses are parse errors and return the
// raw text alongside.
func (g *GeminiClient) ExtractCertificate(ctx context.Context, documentText string) (entity.Candidate, string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(g.cfg.Temperature)
	m.SetTopP(g.cfg.TopP)
	m.SetTopK(g.cfg.TopK)
	m.SetMaxOutputTokens(g.cfg.MaxOutputTokens)

	// Correlation id ties the start and outcome log lines of one call
	// together across interleaved workers.
	callID := uuid.NewString()[:8]
	g.log.Debug("llm.generate.start",
		"call_id", callID,
		"model", g.model,
		"prompt_chars", len(documentText),
	)

	start := time.Now()
	resp, err := m.GenerateContent(ctx, genai.Text(BuildPrompt(documentText)))
	if err != nil {
		g.log.Error("llm.generate.fail",
			"call_id", callID,
			"model", g.model,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.Candidate{}, "", fmt.Errorf("%w: %v", common.ErrInference, err)
	}

	text := responseText(resp)
	g.log.Info("llm.generate.ok",
		"call_id", callID,
		"model", g.model,
		"prompt_chars", len(documentText),
		"response_chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if strings.TrimSpace(text) == "" {
		return entity.Candidate{}, "", fmt.Errorf("%w: empty response", common.ErrInference)
	}

	cand, err := ParseCandidate(text, g.log)
	if err != nil {
		return entity.Candidate{}, text, err
	}
	return cand, text, nil
}

// responseText flattens the first candidate's text parts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
