package recipe

import (
	"context"
	"fmt"
	"strings"

	"pantry-chef/internal/core/ai/provider"
)

// ThumbnailService renders a thumbnail for a recipe through the image
// provider. No text model is involved; the prompt is built
// deterministically from title and description.
type ThumbnailService struct {
	images provider.ImageProvider
}

// NewThumbnailService creates a thumbnail service.
func NewThumbnailService(images provider.ImageProvider) *ThumbnailService {
	return &ThumbnailService{images: images}
}

// BuildThumbnailPrompt produces the photography-style prompt for a recipe.
// Deterministic: the same title and description always yield the same
// prompt, which keeps provider-side caching effective.
func BuildThumbnailPrompt(title, description string) string {
	subject := strings.TrimSpace(title)
	if desc := strings.TrimSpace(description); desc != "" {
		subject = fmt.Sprintf("%s. %s", subject, desc)
	}
	return fmt.Sprintf(
		"Professional food photography of %s, overhead shot on a rustic wooden table, natural soft lighting, shallow depth of field, appetizing, high detail, no text, no people",
		subject,
	)
}

// Generate renders the thumbnail and returns it as a base64 data URI.
func (s *ThumbnailService) Generate(ctx context.Context, title, description string) (string, error) {
	image, err := s.images.GenerateImage(ctx, BuildThumbnailPrompt(title, description))
	if err != nil {
		return "", fmt.Errorf("image provider error: %w", err)
	}
	return image, nil
}
