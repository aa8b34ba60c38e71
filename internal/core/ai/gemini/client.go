package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client calls the Gemini generateContent API.
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient creates a Gemini client. The API key travels in a header, not
// the URL, so it cannot leak through request logging.
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Gemini.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.Gemini.APIKey).
		SetTimeout(cfg.Gemini.Timeout)

	return &Client{
		config: cfg,
		client: client,
	}
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   provider.Schema `json:"responseSchema,omitempty"`
	MaxOutputTokens  int             `json:"maxOutputTokens,omitempty"`
	Temperature      float64         `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateJSON asks the model for a response constrained to schema.
func (c *Client) GenerateJSON(ctx context.Context, systemInstruction, prompt string, schema provider.Schema) (string, error) {
	return c.generate(ctx, systemInstruction, prompt, &generationConfig{
		ResponseMimeType: "application/json",
		ResponseSchema:   schema,
		MaxOutputTokens:  c.config.Gemini.MaxTokens,
		Temperature:      0.9,
	})
}

// GenerateJSONFromImage asks the model for a schema-constrained response
// to a prompt plus a base64 image payload.
func (c *Client) GenerateJSONFromImage(ctx context.Context, systemInstruction, prompt, imageData string, schema provider.Schema) (string, error) {
	mimeType := "image/jpeg"
	if strings.HasPrefix(imageData, "data:image/") {
		header, payload, found := strings.Cut(imageData, ",")
		if !found {
			return "", fmt.Errorf("invalid image data format")
		}
		mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		imageData = payload
	}

	req := generateRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{InlineData: &inlineData{MimeType: mimeType, Data: imageData}},
					{Text: prompt},
				},
			},
		},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
			MaxOutputTokens:  c.config.Gemini.MaxTokens,
		},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}

	return c.send(ctx, req)
}

// GenerateText asks the model for a short freeform answer.
func (c *Client) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	return c.generate(ctx, systemInstruction, prompt, &generationConfig{
		MaxOutputTokens: c.config.Gemini.MaxTokens,
	})
}

func (c *Client) generate(ctx context.Context, systemInstruction, prompt string, genCfg *generationConfig) (string, error) {
	req := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: genCfg,
	}
	if systemInstruction != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}

	return c.send(ctx, req)
}

func (c *Client) send(ctx context.Context, req generateRequest) (string, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(fmt.Sprintf("/models/%s:generateContent", c.config.Gemini.Model))
	common.LogAICall(time.Since(start), err, "")

	if err != nil {
		return "", fmt.Errorf("failed to send request to Gemini: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		// Provider error bodies can reference prompts and keys; log the
		// status only and keep the body out of the returned error.
		common.LogError("Gemini API returned error",
			zap.Int("status", resp.StatusCode()),
			zap.String("model", c.config.Gemini.Model),
		)
		return "", fmt.Errorf("gemini API returned status %d", resp.StatusCode())
	}

	var result generateResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in Gemini response")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.config.Gemini.Model
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.config.Gemini.Timeout
}
