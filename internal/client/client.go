package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TokenSource supplies the caller's access token. Implementations may
// hit the network; failures are absorbed by the anon-key fallback.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// APIError is the normalized shape every request failure reduces to.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

type retryOptKey struct{}

// WithoutRetry marks the request so transient failures are surfaced
// immediately instead of being retried.
func WithoutRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryOptKey{}, true)
}

func retryDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(retryOptKey{}).(bool)
	return v
}

// Client sends authenticated JSON requests to the edge functions.
type Client struct {
	config *config.ClientConfig
	tokens TokenSource
	http   *resty.Client
}

// New builds a Client with the configured timeout and exponential
// retry policy. Client errors (4xx) fail immediately and are never
// retried.
func New(cfg *config.Config, tokens TokenSource) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Client.BaseURL, "/")).
		SetTimeout(cfg.Client.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-App-Version", cfg.Client.AppVersion).
		SetHeader("apikey", cfg.Client.AnonKey).
		SetRetryCount(cfg.Client.MaxRetries).
		SetRetryWaitTime(cfg.Client.RetryWait).
		SetRetryMaxWaitTime(cfg.Client.RetryWait * 8).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r != nil && r.Request != nil && retryDisabled(r.Request.Context()) {
				return false
			}
			if err != nil {
				return !errors.Is(err, context.Canceled)
			}
			// Retrying a malformed request is never productive.
			if r.StatusCode() >= 400 && r.StatusCode() < 500 {
				return false
			}
			return r.StatusCode() >= 500
		})

	return &Client{
		config: &cfg.Client,
		tokens: tokens,
		http:   httpClient,
	}
}

// Post sends body to endpoint and decodes the JSON response into out.
// Absolute endpoints are used as-is; relative ones are joined to the
// configured base URL.
func (c *Client) Post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.resolveToken(ctx)).
		SetBody(body).
		Post(endpoint)

	if err != nil {
		apiErr := normalizeTransportError(ctx, err)
		c.logFailure(endpoint, apiErr)
		return apiErr
	}

	if resp.StatusCode() >= 400 {
		apiErr := normalizeResponseError(resp)
		c.logFailure(endpoint, apiErr)
		return apiErr
	}

	// A 2xx body carrying an error field without a recipes payload is
	// an upstream failure dressed as success.
	if apiErr := detectEmbeddedError(resp); apiErr != nil {
		c.logFailure(endpoint, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		apiErr := &APIError{
			Message: "Invalid response from server",
			Status:  resp.StatusCode(),
			Code:    "INVALID_RESPONSE",
		}
		c.logFailure(endpoint, apiErr)
		return apiErr
	}
	return nil
}

// resolveToken never fails: any token-source problem falls back to the
// anonymous key so the request layer always has a credential.
func (c *Client) resolveToken(ctx context.Context) string {
	if c.tokens == nil {
		return c.config.AnonKey
	}
	token, err := c.tokens.Token(ctx)
	if err != nil || token == "" {
		return c.config.AnonKey
	}
	return token
}

func normalizeTransportError(ctx context.Context, err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &APIError{Message: "Request timeout", Status: 0, Code: "TIMEOUT"}
	}
	if ctx.Err() != nil {
		return &APIError{Message: "Request cancelled", Status: 0, Code: "CANCELLED"}
	}
	return &APIError{
		Message: "Network error. Please check your connection.",
		Status:  0,
		Code:    "NETWORK_ERROR",
	}
}

func isTimeout(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return false
}

func normalizeResponseError(resp *resty.Response) *APIError {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	message := fmt.Sprintf("Request failed with status %d", resp.StatusCode())
	code := "REQUEST_FAILED"
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		if body.Error != "" {
			message = body.Error
		}
		if body.Code != "" {
			code = body.Code
		}
	}
	return &APIError{Message: message, Status: resp.StatusCode(), Code: code}
}

func detectEmbeddedError(resp *resty.Response) *APIError {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &probe); err != nil {
		return nil
	}
	rawErr, hasErr := probe["error"]
	if !hasErr {
		return nil
	}
	if _, hasRecipes := probe["recipes"]; hasRecipes {
		return nil
	}
	var message string
	if err := json.Unmarshal(rawErr, &message); err != nil || message == "" {
		message = "Request failed"
	}
	code := "REQUEST_FAILED"
	if rawCode, ok := probe["code"]; ok {
		_ = json.Unmarshal(rawCode, &code)
	}
	return &APIError{Message: message, Status: resp.StatusCode(), Code: code}
}

// logFailure records the failure with the endpoint path only. The
// query string of absolute endpoints is stripped and payloads are
// never logged.
func (c *Client) logFailure(endpoint string, apiErr *APIError) {
	path := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.IsAbs() {
		u.RawQuery = ""
		path = u.String()
	}
	common.LogWarn("Request failed",
		zap.String("endpoint", path),
		zap.String("message", apiErr.Message),
		zap.Int("status", apiErr.Status),
		zap.String("code", apiErr.Code),
	)
}
