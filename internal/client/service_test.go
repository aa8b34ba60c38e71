package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pantry-chef/internal/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestrator(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testClientConfig(srv.URL)
	cfg.Client.MaxRetries = 0
	return NewService(New(cfg, nil), NewMemoryAnswerCache()), srv
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func serverRecipe(title string, available, total int) map[string]interface{} {
	ingredients := make([]map[string]interface{}, 0, total)
	for i := 0; i < total; i++ {
		ingredients = append(ingredients, map[string]interface{}{
			"name":                "ingredient",
			"amount":              "1 pcs",
			"isAvailableInPantry": i < available,
		})
	}
	return map[string]interface{}{
		"title":                   title,
		"description":             "test",
		"totalTimeMinutes":        20,
		"difficulty":              "Easy",
		"caloriesApprox":          300,
		"usesExpiringIngredients": false,
		"ingredients":             ingredients,
		"instructions":            []string{"Cook."},
	}
}

func TestGenerateRecipes(t *testing.T) {
	ctx := context.Background()
	pantry := []recipe.PantryItem{{Name: "Chicken", Quantity: 500, Unit: recipe.UnitG}}
	genCtx := recipe.GenerationContext{MealType: "Dinner"}

	t.Run("full pipeline", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(endpointGenerateRecipes, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

			// Pantry payload carries name/quantity/unit only.
			items := body["pantry"].([]interface{})
			require.Len(t, items, 1)
			item := items[0].(map[string]interface{})
			assert.Equal(t, "Chicken", item["name"])
			assert.NotContains(t, item, "category")
			assert.NotContains(t, item, "expiryDate")

			writeJSON(w, map[string]interface{}{"recipes": []interface{}{
				serverRecipe("A", 3, 4),
				serverRecipe("B", 2, 2),
			}})
		})
		mux.HandleFunc(endpointGenerateThumbnail, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{"image": "data:image/jpeg;base64,img"})
		})
		svc, _ := newOrchestrator(t, mux)

		recipes, err := svc.GenerateRecipes(ctx, pantry, recipe.UserPreferences{}, genCtx, nil, 2)
		require.NoError(t, err)
		require.Len(t, recipes, 2)

		// B (100) sorts before A (75) and ids are freshly assigned.
		assert.Equal(t, "B", recipes[0].Title)
		assert.Equal(t, 100, recipes[0].MatchScore)
		assert.Equal(t, "A", recipes[1].Title)
		assert.Equal(t, 75, recipes[1].MatchScore)
		assert.NotEmpty(t, recipes[0].ID)
		assert.NotEqual(t, recipes[0].ID, recipes[1].ID)
		assert.Equal(t, "data:image/jpeg;base64,img", recipes[0].GeneratedImage)
	})

	t.Run("missing recipes array is a structural failure", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(endpointGenerateRecipes, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]interface{}{"status": "ok"})
		})
		svc, _ := newOrchestrator(t, mux)

		_, err := svc.GenerateRecipes(ctx, pantry, recipe.UserPreferences{}, genCtx, nil, 2)
		require.Error(t, err)
		assert.Equal(t, "Invalid response from server", err.Error())
	})

	t.Run("empty batch is a distinct failure", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(endpointGenerateRecipes, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]interface{}{"recipes": []interface{}{}})
		})
		svc, _ := newOrchestrator(t, mux)

		_, err := svc.GenerateRecipes(ctx, pantry, recipe.UserPreferences{}, genCtx, nil, 2)
		require.Error(t, err)
		assert.Equal(t, "No recipes generated. Try adjusting your preferences.", err.Error())
	})

	t.Run("clamps an overlong batch to count", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(endpointGenerateRecipes, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]interface{}{"recipes": []interface{}{
				serverRecipe("A", 1, 1),
				serverRecipe("B", 1, 1),
				serverRecipe("C", 1, 1),
				serverRecipe("D", 1, 1),
			}})
		})
		mux.HandleFunc(endpointGenerateThumbnail, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{"image": "x"})
		})
		svc, _ := newOrchestrator(t, mux)

		recipes, err := svc.GenerateRecipes(ctx, pantry, recipe.UserPreferences{}, genCtx, nil, 2)
		require.NoError(t, err)
		assert.Len(t, recipes, 2)
	})

	t.Run("thumbnail failures stay isolated", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(endpointGenerateRecipes, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]interface{}{"recipes": []interface{}{
				serverRecipe("one", 1, 1),
				serverRecipe("two", 1, 1),
				serverRecipe("three", 1, 1),
			}})
		})
		mux.HandleFunc(endpointGenerateThumbnail, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["title"] == "two" {
				w.WriteHeader(http.StatusInternalServerError)
				writeJSON(w, map[string]string{"error": "boom", "code": "INTERNAL_ERROR"})
				return
			}
			writeJSON(w, map[string]string{"image": "img-" + body["title"]})
		})
		svc, _ := newOrchestrator(t, mux)

		recipes, err := svc.GenerateRecipes(ctx, pantry, recipe.UserPreferences{}, genCtx, nil, 3)
		require.NoError(t, err)
		require.Len(t, recipes, 3)

		images := map[string]string{}
		for _, r := range recipes {
			images[r.Title] = r.GeneratedImage
		}
		assert.Equal(t, "img-one", images["one"])
		assert.Empty(t, images["two"])
		assert.Equal(t, "img-three", images["three"])
	})
}

func TestParsePantryDegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("returns items on success", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(endpointParsePantry, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "text", body["type"])
			writeJSON(w, map[string]interface{}{"items": []interface{}{
				map[string]interface{}{"name": "Apple", "quantity": 2, "unit": "pcs", "category": "Produce"},
			}})
		})
		svc, _ := newOrchestrator(t, mux)

		items := svc.ParsePantryNaturalLanguage(ctx, "two apples")
		require.Len(t, items, 1)
		assert.Equal(t, "Apple", items[0].Name)
	})

	t.Run("empty list on failure", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(endpointParsePantry, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		svc, _ := newOrchestrator(t, mux)

		assert.Empty(t, svc.ParsePantryNaturalLanguage(ctx, "two apples"))
		assert.Empty(t, svc.IdentifyItemsFromImage(ctx, "aGVsbG8="))
	})
}

func TestAskAboutStep(t *testing.T) {
	ctx := context.Background()

	t.Run("caches successful answers", func(t *testing.T) {
		var calls int32
		mux := http.NewServeMux()
		mux.HandleFunc(endpointAskStep, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			writeJSON(w, map[string]string{"answer": "Let it rest."})
		})
		svc, _ := newOrchestrator(t, mux)

		first := svc.AskAboutStep(ctx, "Roast Chicken", "Rest the meat", "Why?")
		second := svc.AskAboutStep(ctx, "Roast Chicken", "Rest the meat", "Why?")

		assert.Equal(t, "Let it rest.", first)
		assert.Equal(t, "Let it rest.", second)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("different questions miss the cache", func(t *testing.T) {
		var calls int32
		mux := http.NewServeMux()
		mux.HandleFunc(endpointAskStep, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			writeJSON(w, map[string]string{"answer": "Answer."})
		})
		svc, _ := newOrchestrator(t, mux)

		svc.AskAboutStep(ctx, "Soup", "Simmer", "How long?")
		svc.AskAboutStep(ctx, "Soup", "Simmer", "How hot?")
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("fallback answer on failure", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(endpointAskStep, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		svc, _ := newOrchestrator(t, mux)

		got := svc.AskAboutStep(ctx, "Soup", "Simmer", "How long?")
		assert.Equal(t, "Chef is disconnected.", got)
	})

	t.Run("works without a cache", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(endpointAskStep, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{"answer": "Answer."})
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		cfg := testClientConfig(srv.URL)
		svc := NewService(New(cfg, nil), nil)

		assert.Equal(t, "Answer.", svc.AskAboutStep(ctx, "Soup", "Simmer", ""))
	})
}

func TestGenerateThumbnailEmptyOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointGenerateThumbnail, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": "Title is required", "code": "INVALID_REQUEST"})
	})
	svc, _ := newOrchestrator(t, mux)

	start := time.Now()
	got := svc.GenerateThumbnail(context.Background(), "", "")
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), time.Second)
}
