package provider

import (
	"context"
	"time"
)

// Schema is a structured-output JSON schema passed to the model so the
// response conforms to an explicit type/enum shape instead of freeform
// text.
type Schema map[string]interface{}

// TextProvider generates text or schema-constrained JSON.
type TextProvider interface {
	// GenerateJSON produces a JSON document conforming to schema.
	GenerateJSON(ctx context.Context, systemInstruction, prompt string, schema Schema) (string, error)

	// GenerateJSONFromImage produces a JSON document conforming to schema
	// from a prompt and a base64 image payload.
	GenerateJSONFromImage(ctx context.Context, systemInstruction, prompt, imageData string, schema Schema) (string, error)

	// GenerateText produces a short freeform answer.
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)

	// Model returns the model identifier in use.
	Model() string

	// Timeout returns the per-call timeout.
	Timeout() time.Duration
}

// ImageProvider generates an image and returns it base64-encoded, so
// callers never handle remote URLs or provider-specific formats.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
