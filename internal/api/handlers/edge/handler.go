package edge

import (
	"encoding/json"
	"net/http"

	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/security"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler hosts the four generation endpoints.
type Handler struct {
	generation *recipe.GenerationService
	pantry     *recipe.PantryService
	step       *recipe.StepService
	thumbnail  *recipe.ThumbnailService
}

// NewHandler creates the edge handler set.
func NewHandler(generation *recipe.GenerationService, pantry *recipe.PantryService, step *recipe.StepService, thumbnail *recipe.ThumbnailService) *Handler {
	return &Handler{
		generation: generation,
		pantry:     pantry,
		step:       step,
		thumbnail:  thumbnail,
	}
}

// sanitizeRequest runs every string leaf of req through the sanitizer by
// round-tripping it as decoded JSON. Depth and key caps guard against
// hostile payload shapes; the cleaned value is written back into req.
func sanitizeRequest(req interface{}) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return err
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	cleaned := security.SanitizeObject(decoded, security.DefaultMaxDepth)

	raw, err = json.Marshal(cleaned)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, req)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": message,
		"code":  common.ErrCodeInvalidRequest,
	})
}

// serverError answers a generic 500. The provider's raw error text never
// reaches the client; it can reference prompts and keys.
func serverError(c *gin.Context, err error, requestID string) {
	common.LogError("generation request failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestID),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": common.ErrGenerationFailed.Message,
		"code":  common.ErrCodeGenerationFailed,
	})
}
