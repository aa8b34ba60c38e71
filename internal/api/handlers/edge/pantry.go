package edge

import (
	"net/http"

	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/security"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParsePantryRequest is the parse-pantry payload. Exactly one of Image or
// Text is used depending on Type.
type ParsePantryRequest struct {
	Type  string `json:"type" binding:"required"`
	Image string `json:"image,omitempty"`
	Text  string `json:"text,omitempty"`
}

// ParsePantryResponse is the parse-pantry success body.
type ParsePantryResponse struct {
	Items []recipe.PantryItem `json:"items"`
}

// HandleParsePantry turns a photo or a free-text description into
// structured pantry items.
func (h *Handler) HandleParsePantry(c *gin.Context) {
	rid := requestid.Get(c)

	var req ParsePantryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	var (
		items []recipe.PantryItem
		err   error
	)

	switch req.Type {
	case "image":
		// The image blob stays out of the sanitizer; base64 data is not
		// prompt text and truncation would corrupt it.
		if req.Image == "" {
			badRequest(c, "Image payload is required")
			return
		}
		if verr := recipe.ValidateImagePayload(req.Image); verr != nil {
			common.LogWarn("invalid pantry image payload",
				zap.Error(verr),
				zap.String("request_id", rid),
			)
			msg := "Invalid image payload"
			if common.IsValidationError(verr) {
				msg = verr.Error()
			}
			badRequest(c, msg)
			return
		}
		items, err = h.pantry.ParseImage(c.Request.Context(), req.Image)

	case "text":
		text := security.SanitizeInput(req.Text, recipe.MaxPantryTextLength)
		if !security.ValidateLength(text, 1, recipe.MaxPantryTextLength) {
			badRequest(c, "Text payload is required")
			return
		}
		items, err = h.pantry.ParseText(c.Request.Context(), text)

	default:
		badRequest(c, "Type must be image or text")
		return
	}

	if err != nil {
		serverError(c, err, rid)
		return
	}

	if items == nil {
		items = []recipe.PantryItem{}
	}

	common.LogInfo("pantry parsed",
		zap.String("type", req.Type),
		zap.Int("items", len(items)),
		zap.String("request_id", rid),
	)

	c.JSON(http.StatusOK, ParsePantryResponse{Items: items})
}
