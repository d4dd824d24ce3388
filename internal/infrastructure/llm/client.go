package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"careerhub/internal/config"
)

var ErrDisabled = errors.New("language model not configured")

// Attachment is an inline document sent next to the prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

type Client interface {
	// GenerateJSON returns a response validated against schema.
	GenerateJSON(ctx context.Context, schema Schema, prompt string, attachments ...Attachment) (string, error)
	// ExtractText transcribes a binary document into plain text.
	ExtractText(ctx context.Context, doc Attachment) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
	Close() error
}

type GeminiClient struct {
	client     *genai.Client
	model      string
	embedModel string
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewGemini returns ErrDisabled when no API key is configured.
func NewGemini(ctx context.Context, cfg config.LLMConfig, logger *logrus.Logger) (*GeminiClient, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 2
	}
	return &GeminiClient{
		client:     client,
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}, nil
}

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, schema Schema, prompt string, attachments ...Attachment) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	parts := []genai.Part{genai.Text(prompt)}
	for _, a := range attachments {
		parts = append(parts, genai.Blob{MIMEType: a.MIMEType, Data: a.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	text = CleanJSONBlock(text)
	if err := Validate(schema, text); err != nil {
		if c.logger != nil {
			c.logger.WithError(err).WithField("schema", schema).Warn("llm response rejected")
		}
		return "", err
	}
	return text, nil
}

func (c *GeminiClient) ExtractText(ctx context.Context, doc Attachment) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0)

	prompt := "Transcribe the attached document to plain text. Keep headings and bullet points on their own lines. Output only the text."
	resp, err := model.GenerateContent(ctx, genai.Text(prompt), genai.Blob{MIMEType: doc.MIMEType, Data: doc.Data})
	if err != nil {
		return "", fmt.Errorf("extract document text: %w", err)
	}
	return extractText(resp)
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("embed: empty text")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := c.client.EmbeddingModel(c.embedModel).EmbedContent(ctx, genai.Text(truncate(text, 8000)))
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("embed: empty embedding")
	}
	return res.Embedding.Values, nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text parts in response")
	}
	return b.String(), nil
}

// CleanJSONBlock strips markdown fences the model sometimes adds.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if !strings.Contains(first, "{") && !strings.Contains(first, "[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
