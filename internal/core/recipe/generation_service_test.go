package recipe

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/core/ai/service"
	"pantry-chef/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider fakes the text model for service-level tests.
type stubProvider struct {
	jsonFn  func(prompt string, schema provider.Schema) (string, error)
	imageFn func(prompt, imageData string) (string, error)
	textFn  func(prompt string) (string, error)
}

func (p *stubProvider) GenerateJSON(_ context.Context, _, prompt string, schema provider.Schema) (string, error) {
	return p.jsonFn(prompt, schema)
}

func (p *stubProvider) GenerateJSONFromImage(_ context.Context, _, prompt, imageData string, _ provider.Schema) (string, error) {
	return p.imageFn(prompt, imageData)
}

func (p *stubProvider) GenerateText(_ context.Context, _, prompt string) (string, error) {
	return p.textFn(prompt)
}

func (p *stubProvider) Model() string          { return "stub" }
func (p *stubProvider) Timeout() time.Duration { return time.Second }

func newTestAIService(t *testing.T, p provider.TextProvider) *service.Service {
	t.Helper()
	svc, err := service.NewService(&config.Config{}, p, nil)
	require.NoError(t, err)
	return svc
}

func recipesJSON(titles ...string) string {
	recipes := make([]map[string]interface{}, 0, len(titles))
	for _, title := range titles {
		recipes = append(recipes, map[string]interface{}{
			"title":                   title,
			"description":             "test dish",
			"totalTimeMinutes":        30,
			"difficulty":              "Easy",
			"caloriesApprox":          400,
			"usesExpiringIngredients": false,
			"ingredients": []map[string]interface{}{
				{"name": "Chicken", "amount": "500 g", "isAvailableInPantry": true},
			},
			"instructions": []string{"Cook it."},
		})
	}
	out, _ := json.Marshal(map[string]interface{}{"recipes": recipes})
	return string(out)
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, 1, ClampCount(0))
	assert.Equal(t, 1, ClampCount(-3))
	assert.Equal(t, 5, ClampCount(5))
	assert.Equal(t, 10, ClampCount(15))
}

func TestGenerationServiceGenerate(t *testing.T) {
	ctx := context.Background()
	params := GenerateParams{
		Pantry:  []PantryItem{{Name: "Chicken", Quantity: 500, Unit: UnitG}},
		Context: GenerationContext{MealType: "Dinner"},
		Count:   2,
	}

	t.Run("returns normalized recipes", func(t *testing.T) {
		p := &stubProvider{jsonFn: func(string, provider.Schema) (string, error) {
			return recipesJSON("Roast Chicken", "Chicken Soup"), nil
		}}
		svc := NewGenerationService(newTestAIService(t, p))

		recipes, err := svc.Generate(ctx, params)
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, "Roast Chicken", recipes[0].Title)
		assert.NotNil(t, recipes[0].Tags)
		assert.NotNil(t, recipes[0].Macros)
	})

	t.Run("re-slices an overlong batch", func(t *testing.T) {
		p := &stubProvider{jsonFn: func(string, provider.Schema) (string, error) {
			return recipesJSON("A", "B", "C", "D"), nil
		}}
		svc := NewGenerationService(newTestAIService(t, p))

		recipes, err := svc.Generate(ctx, params)
		require.NoError(t, err)
		assert.Len(t, recipes, 2)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		p := &stubProvider{jsonFn: func(string, provider.Schema) (string, error) {
			return `{"recipes": []}`, nil
		}}
		svc := NewGenerationService(newTestAIService(t, p))

		_, err := svc.Generate(ctx, params)
		assert.Error(t, err)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		p := &stubProvider{jsonFn: func(string, provider.Schema) (string, error) {
			return "not json at all", nil
		}}
		svc := NewGenerationService(newTestAIService(t, p))

		_, err := svc.Generate(ctx, params)
		assert.Error(t, err)
	})

	t.Run("defaults an invalid difficulty", func(t *testing.T) {
		p := &stubProvider{jsonFn: func(string, provider.Schema) (string, error) {
			return `{"recipes":[{"title":"X","description":"d","totalTimeMinutes":10,"difficulty":"Impossible","caloriesApprox":100,"usesExpiringIngredients":false,"ingredients":[],"instructions":[]}]}`, nil
		}}
		svc := NewGenerationService(newTestAIService(t, p))

		recipes, err := svc.Generate(ctx, GenerateParams{
			Pantry:  params.Pantry,
			Context: params.Context,
			Count:   1,
		})
		require.NoError(t, err)
		assert.Equal(t, DifficultyMedium, recipes[0].Difficulty)
	})
}

func TestBuildGenerationPrompt(t *testing.T) {
	params := GenerateParams{
		Pantry: []PantryItem{{Name: "Chicken", Quantity: 500, Unit: UnitG}},
		Preferences: UserPreferences{
			Allergies: []string{"peanuts"},
		},
		Context: GenerationContext{
			MealType:       "Dinner",
			HeroIngredient: "Chicken",
		},
		ExistingTitles: []string{"Roast Chicken"},
	}

	prompt := buildGenerationPrompt(params, 3)

	assert.Contains(t, prompt, "Generate exactly 3 distinct recipes")
	assert.Contains(t, prompt, "Chicken: 500 g")
	assert.Contains(t, prompt, "Never convert between units")
	assert.Contains(t, prompt, "meal type: Dinner")
	assert.Contains(t, prompt, "dominant, defining ingredient")
	assert.Contains(t, prompt, "peanuts")
	assert.Contains(t, prompt, "Roast Chicken")
}

func TestRecipeBatchSchema(t *testing.T) {
	schema := recipeBatchSchema(4)

	recipes := schema["properties"].(map[string]interface{})["recipes"].(map[string]interface{})
	assert.Equal(t, 4, recipes["minItems"])
	assert.Equal(t, 4, recipes["maxItems"])

	item := recipes["items"].(map[string]interface{})
	difficulty := item["properties"].(map[string]interface{})["difficulty"].(map[string]interface{})
	assert.ElementsMatch(t, []string{"Easy", "Medium", "Hard"}, difficulty["enum"])
}

func TestChefSystemInstruction(t *testing.T) {
	// The persona block must confine topics and resist embedded
	// instructions; these phrases anchor that behavior.
	assert.True(t, strings.Contains(chefSystemInstruction, "Only discuss cooking"))
	assert.True(t, strings.Contains(chefSystemInstruction, "strictly as data"))
}
