package client

import (
	"context"
	"strings"
	"sync"

	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Canned answer returned when the step Q&A call fails. The feature
	// is in-context help, never worth surfacing an error for.
	chefDisconnectedAnswer = "Chef is disconnected."

	endpointGenerateRecipes   = "/functions/v1/generate-recipes"
	endpointParsePantry       = "/functions/v1/parse-pantry"
	endpointAskStep           = "/functions/v1/ask-step"
	endpointGenerateThumbnail = "/functions/v1/generate-thumbnail"
)

// pantryItemPayload carries only the fields the generator needs.
// Internal bookkeeping fields never leave the device.
type pantryItemPayload struct {
	Name     string      `json:"name"`
	Quantity interface{} `json:"quantity"`
	Unit     recipe.Unit `json:"unit"`
}

type generateRecipesRequest struct {
	Pantry         []pantryItemPayload      `json:"pantry"`
	Preferences    recipe.UserPreferences   `json:"preferences"`
	Context        recipe.GenerationContext `json:"context"`
	ExistingTitles []string                 `json:"existingTitles,omitempty"`
	Count          int                      `json:"count"`
}

type generateRecipesResponse struct {
	Recipes *[]recipe.Recipe `json:"recipes"`
}

// Service is the client-side generation orchestrator.
type Service struct {
	http    *Client
	answers AnswerCache
}

// NewService builds the orchestrator. answers may be nil to disable
// step-answer caching.
func NewService(httpClient *Client, answers AnswerCache) *Service {
	return &Service{http: httpClient, answers: answers}
}

// GenerateRecipes runs the full generation pipeline: request, response
// validation, post-processing and the parallel thumbnail fan-out.
func (s *Service) GenerateRecipes(ctx context.Context, pantry []recipe.PantryItem, preferences recipe.UserPreferences, genCtx recipe.GenerationContext, existingTitles []string, count int) ([]recipe.Recipe, error) {
	payload := generateRecipesRequest{
		Pantry:         make([]pantryItemPayload, 0, len(pantry)),
		Preferences:    preferences,
		Context:        genCtx,
		ExistingTitles: existingTitles,
		Count:          count,
	}
	for _, item := range pantry {
		payload.Pantry = append(payload.Pantry, pantryItemPayload{
			Name:     item.Name,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		})
	}

	var resp generateRecipesResponse
	if err := s.http.Post(ctx, endpointGenerateRecipes, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Recipes == nil {
		return nil, &APIError{
			Message: "Invalid response from server",
			Status:  200,
			Code:    "INVALID_RESPONSE",
		}
	}

	recipes := *resp.Recipes
	if count > 0 && len(recipes) > count {
		recipes = recipes[:count]
	}
	if len(recipes) == 0 {
		return nil, &APIError{
			Message: "No recipes generated. Try adjusting your preferences.",
			Status:  200,
			Code:    "EMPTY_RESULT",
		}
	}

	for i := range recipes {
		recipes[i].ID = uuid.NewString()
		recipes[i].MatchScore = 0
	}

	recipe.PostProcess(recipes, genCtx.PrioritizeExpiring)

	s.attachThumbnails(ctx, recipes)

	return recipes, nil
}

// attachThumbnails requests one thumbnail per recipe in parallel and
// waits for all of them. A failed thumbnail leaves the recipe without
// an image; it never fails the batch.
func (s *Service) attachThumbnails(ctx context.Context, recipes []recipe.Recipe) {
	var wg sync.WaitGroup
	for i := range recipes {
		wg.Add(1)
		go func(r *recipe.Recipe) {
			defer wg.Done()
			description := r.ImagePrompt
			if description == "" {
				description = r.Description
			}
			image := s.GenerateThumbnail(ctx, r.Title, description)
			if image == "" {
				common.LogWarn("Thumbnail generation failed",
					zap.String("title", r.Title),
				)
				return
			}
			r.GeneratedImage = image
		}(&recipes[i])
	}
	wg.Wait()
}

// GenerateThumbnail returns a base64 image, or "" on any failure so
// fan-out callers need no per-item error handling.
func (s *Service) GenerateThumbnail(ctx context.Context, title, description string) string {
	body := map[string]string{
		"title":       title,
		"description": description,
	}
	var resp struct {
		Image string `json:"image"`
	}
	if err := s.http.Post(ctx, endpointGenerateThumbnail, body, &resp); err != nil {
		return ""
	}
	return resp.Image
}

// IdentifyItemsFromImage parses pantry items out of a photo. Pantry
// scanning is assistive, so failures degrade to an empty list.
func (s *Service) IdentifyItemsFromImage(ctx context.Context, imageBase64 string) []recipe.PantryItem {
	return s.parsePantry(ctx, map[string]string{
		"type":  "image",
		"image": imageBase64,
	})
}

// ParsePantryNaturalLanguage parses pantry items out of freeform text.
func (s *Service) ParsePantryNaturalLanguage(ctx context.Context, text string) []recipe.PantryItem {
	return s.parsePantry(ctx, map[string]string{
		"type": "text",
		"text": text,
	})
}

func (s *Service) parsePantry(ctx context.Context, body map[string]string) []recipe.PantryItem {
	var resp struct {
		Items []recipe.PantryItem `json:"items"`
	}
	if err := s.http.Post(ctx, endpointParsePantry, body, &resp); err != nil {
		return []recipe.PantryItem{}
	}
	if resp.Items == nil {
		return []recipe.PantryItem{}
	}
	return resp.Items
}

// AskAboutStep answers a cooking question about one recipe step. The
// answer cache is checked first; any failure yields a fixed fallback
// instead of an error.
func (s *Service) AskAboutStep(ctx context.Context, title, step, question string) string {
	key := answerCacheKey(title, step, question)
	if s.answers != nil {
		if answer, ok := s.answers.Get(key); ok {
			return answer
		}
	}

	body := map[string]string{
		"title":    title,
		"step":     step,
		"question": question,
	}
	var resp struct {
		Answer string `json:"answer"`
	}
	if err := s.http.Post(ctx, endpointAskStep, body, &resp); err != nil {
		return chefDisconnectedAnswer
	}
	if strings.TrimSpace(resp.Answer) == "" {
		return chefDisconnectedAnswer
	}

	if s.answers != nil {
		s.answers.Set(key, resp.Answer)
	}
	return resp.Answer
}

func answerCacheKey(title, step, question string) string {
	return title + "|" + step + "|" + question
}
