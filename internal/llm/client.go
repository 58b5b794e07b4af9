package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/drbn68/ai-medical-imaging-agent/internal/config"
	"github.com/drbn68/ai-medical-imaging-agent/internal/domain"
)

// Client performs one blocking call to a hosted multimodal model and returns
// the raw generated text. Implementations do not retry or stream.
type Client interface {
	Analyze(ctx context.Context, creds domain.Credentials, req domain.AnalysisRequest) (string, error)
}

type openAIClient struct {
	cfg *config.LLMConfig
	log *zap.Logger
}

// NewClient builds the default completion client on the OpenAI-compatible
// API configured in cfg. The credential is supplied per call, not at
// construction, so the underlying client is created per request.
func NewClient(cfg *config.LLMConfig, log *zap.Logger) Client {
	return &openAIClient{cfg: cfg, log: log}
}

func (c *openAIClient) Analyze(ctx context.Context, creds domain.Credentials, req domain.AnalysisRequest) (string, error) {
	if strings.TrimSpace(creds.APIKey) == "" {
		return "", domain.ErrMissingCredential
	}

	opts := []openai.Option{
		openai.WithToken(creds.APIKey),
		openai.WithModel(c.cfg.Model),
	}
	if c.cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(c.cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return "", &domain.CompletionError{Err: fmt.Errorf("init model client: %w", err)}
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(SystemInstruction)},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(req.Instruction),
				// Low detail keeps token usage down; the model does not need
				// full resolution to describe the study.
				llms.ImageURLWithDetailPart(req.ImageURL, "low"),
			},
		},
	}

	resp, err := model.GenerateContent(ctx, content,
		llms.WithTemperature(c.cfg.Temperature),
		llms.WithMaxTokens(c.cfg.MaxTokens),
	)
	if err != nil {
		return "", &domain.CompletionError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.CompletionError{Err: errors.New("model returned no choices")}
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", &domain.CompletionError{Err: errors.New("model returned empty content")}
	}

	c.log.Info("Completion received",
		zap.String("model", c.cfg.Model),
		zap.Int("length", len(text)))

	return text, nil
}
