package edge

import (
	"net/http"

	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRecipesRequest is the generate-recipes payload.
type GenerateRecipesRequest struct {
	Pantry         []recipe.PantryItem      `json:"pantry" binding:"required"`
	Preferences    recipe.UserPreferences   `json:"preferences"`
	Context        recipe.GenerationContext `json:"context"`
	ExistingTitles []string                 `json:"existingTitles"`
	Count          int                      `json:"count"`
}

// GenerateRecipesResponse is the generate-recipes success body.
type GenerateRecipesResponse struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

// HandleGenerateRecipes validates and sanitizes the request, runs the
// schema-constrained generation and returns the batch.
func (h *Handler) HandleGenerateRecipes(c *gin.Context) {
	rid := requestid.Get(c)

	var req GenerateRecipesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid generate-recipes request",
			zap.Error(err),
			zap.String("request_id", rid),
		)
		badRequest(c, "Invalid request format")
		return
	}

	if len(req.Pantry) == 0 {
		badRequest(c, "Pantry must not be empty")
		return
	}
	for _, item := range req.Pantry {
		if item.Name == "" {
			badRequest(c, "Pantry item name is required")
			return
		}
		if !recipe.IsValidUnit(item.Unit) {
			badRequest(c, "Invalid pantry item unit")
			return
		}
	}
	if req.Context.MealType == "" {
		badRequest(c, "Meal type is required")
		return
	}

	if err := sanitizeRequest(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	count := recipe.ClampCount(req.Count)
	recipes, err := h.generation.Generate(c.Request.Context(), recipe.GenerateParams{
		Pantry:         req.Pantry,
		Preferences:    req.Preferences,
		Context:        req.Context,
		ExistingTitles: req.ExistingTitles,
		Count:          count,
	})
	if err != nil {
		serverError(c, err, rid)
		return
	}

	common.LogInfo("recipes generated",
		zap.Int("count", len(recipes)),
		zap.String("request_id", rid),
	)

	c.JSON(http.StatusOK, GenerateRecipesResponse{Recipes: recipes})
}
