package recipe

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/core/ai/service"
	"pantry-chef/internal/pkg/common"
)

const (
	// MaxPantryTextLength caps the free-text payload for text parsing.
	MaxPantryTextLength = 5000
	// MaxPantryImageBytes caps the decoded image payload.
	MaxPantryImageBytes = 10 << 20
)

// PantryService turns a photo or a natural-language description into
// structured pantry items.
type PantryService struct {
	aiService *service.Service
}

// NewPantryService creates a pantry parsing service.
func NewPantryService(aiService *service.Service) *PantryService {
	return &PantryService{aiService: aiService}
}

// ParseText extracts pantry items from a natural-language description.
// The text must already be sanitized by the caller.
func (s *PantryService) ParseText(ctx context.Context, text string) ([]PantryItem, error) {
	prompt := fmt.Sprintf(`Extract every food item from the following shopping or pantry description.
For each item pick the closest unit and category from the allowed sets. Guess sensible quantities when unstated.

Description:
%s`, text)

	content, err := s.aiService.GenerateJSON(ctx, chefSystemInstruction, prompt, pantryItemsSchema())
	if err != nil {
		return nil, fmt.Errorf("AI service error: %w", err)
	}

	return parsePantryItems(content)
}

// ParseImage extracts pantry items from a photo. The payload must have
// passed ValidateImagePayload first.
func (s *PantryService) ParseImage(ctx context.Context, imageData string) ([]PantryItem, error) {
	prompt := `Identify every distinct food item visible in this photo.
For each item pick the closest unit and category from the allowed sets and estimate a sensible quantity.`

	content, err := s.aiService.GenerateJSONFromImage(ctx, chefSystemInstruction, prompt, imageData, pantryItemsSchema())
	if err != nil {
		return nil, fmt.Errorf("AI service error: %w", err)
	}

	return parsePantryItems(content)
}

// ValidateImagePayload checks a base64 image blob before it is accepted:
// decodable and within the size cap.
func ValidateImagePayload(imageData string) error {
	payload := imageData
	if strings.HasPrefix(payload, "data:image/") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return common.NewValidationError("invalid base64 data format")
		}
		payload = parts[1]
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return common.NewValidationError("failed to decode base64 data")
	}

	if int64(len(decoded)) > MaxPantryImageBytes {
		return common.NewValidationError(fmt.Sprintf("image size exceeds maximum limit of %d bytes", MaxPantryImageBytes))
	}

	return nil
}

func pantryItemsSchema() provider.Schema {
	units := make([]string, len(Units))
	for i, u := range Units {
		units[i] = string(u)
	}
	categories := make([]string, len(Categories))
	for i, c := range Categories {
		categories[i] = string(c)
	}

	return provider.Schema{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"items": map[string]interface{}{
				"type": "ARRAY",
				"items": map[string]interface{}{
					"type": "OBJECT",
					"properties": map[string]interface{}{
						"name":     map[string]interface{}{"type": "STRING"},
						"quantity": map[string]interface{}{"type": "NUMBER"},
						"unit": map[string]interface{}{
							"type": "STRING",
							"enum": units,
						},
						"category": map[string]interface{}{
							"type": "STRING",
							"enum": categories,
						},
						"expiryDate": map[string]interface{}{"type": "STRING"},
					},
					"required": []string{"name", "quantity", "unit", "category"},
				},
			},
		},
		"required": []string{"items"},
	}
}

func parsePantryItems(content string) ([]PantryItem, error) {
	var result struct {
		Items []PantryItem `json:"items"`
	}
	if err := common.ParseJSON(common.ExtractJSONObject(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	// The schema constrains the enums; re-check anyway and fall back to
	// General/pcs rather than rejecting the whole batch.
	for i := range result.Items {
		if !IsValidUnit(result.Items[i].Unit) {
			result.Items[i].Unit = UnitPcs
		}
		if !IsValidCategory(result.Items[i].Category) {
			result.Items[i].Category = CategoryGeneral
		}
	}

	return result.Items, nil
}
