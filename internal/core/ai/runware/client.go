package runware

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"time"

	_ "image/gif" // GIF support
	_ "image/png" // PNG support

	_ "golang.org/x/image/webp" // WebP support

	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client calls the Runware image inference API and converts the result to
// base64 so callers never deal with remote image URLs.
type Client struct {
	config *config.Config
	client *resty.Client
	// fetcher downloads generated images from whatever host the API
	// returns. It carries no credentials; the API key must never reach
	// the image CDN.
	fetcher *resty.Client
}

// NewClient creates a Runware client.
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Runware.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Runware.APIKey)).
		SetTimeout(cfg.Runware.Timeout)

	fetcher := resty.New().
		SetTimeout(cfg.Runware.Timeout)

	return &Client{
		config:  cfg,
		client:  client,
		fetcher: fetcher,
	}
}

type inferenceTask struct {
	TaskType       string `json:"taskType"`
	TaskUUID       string `json:"taskUUID"`
	PositivePrompt string `json:"positivePrompt"`
	Model          string `json:"model"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	NumberResults  int    `json:"numberResults"`
	OutputType     string `json:"outputType"`
	OutputFormat   string `json:"outputFormat"`
}

type inferenceResponse struct {
	Data []struct {
		TaskUUID string `json:"taskUUID"`
		ImageURL string `json:"imageURL"`
	} `json:"data"`
}

// GenerateImage renders prompt and returns the image as a base64 JPEG
// data URI.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	task := inferenceTask{
		TaskType:       "imageInference",
		TaskUUID:       uuid.New().String(),
		PositivePrompt: prompt,
		Model:          c.config.Runware.Model,
		Width:          512,
		Height:         512,
		NumberResults:  1,
		OutputType:     "URL",
		OutputFormat:   "JPEG",
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody([]inferenceTask{task}).
		Post("")
	common.LogAICall(time.Since(start), err, task.TaskUUID)

	if err != nil {
		return "", fmt.Errorf("failed to send request to Runware: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("Runware API returned error",
			zap.Int("status", resp.StatusCode()),
		)
		return "", fmt.Errorf("runware API returned status %d", resp.StatusCode())
	}

	var result inferenceResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse Runware response: %w", err)
	}

	if len(result.Data) == 0 || result.Data[0].ImageURL == "" {
		return "", fmt.Errorf("no image in Runware response")
	}

	return c.fetchAndEncode(ctx, result.Data[0].ImageURL)
}

// fetchAndEncode downloads the generated image and re-encodes it as a
// base64 JPEG data URI.
func (c *Client) fetchAndEncode(ctx context.Context, imageURL string) (string, error) {
	resp, err := c.fetcher.R().
		SetContext(ctx).
		SetDoNotParseResponse(false).
		Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("failed to download image: status code %d", resp.StatusCode())
	}

	imageBytes := resp.Body()
	if int64(len(imageBytes)) > c.config.Image.MaxSizeBytes {
		return "", fmt.Errorf("image size exceeds maximum limit of %d bytes", c.config.Image.MaxSizeBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if !isSupportedFormat(format) {
		return "", fmt.Errorf("unsupported image format: %s", format)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return fmt.Sprintf("data:image/jpeg;base64,%s", encoded), nil
}

func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"jpg":  true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
