package edge

import (
	"net/http"

	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/security"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// GenerateThumbnailRequest is the generate-thumbnail payload.
type GenerateThumbnailRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`
}

// GenerateThumbnailResponse is the generate-thumbnail success body.
type GenerateThumbnailResponse struct {
	Image string `json:"image"`
}

// HandleGenerateThumbnail renders a recipe thumbnail and returns it
// base64-encoded.
func (h *Handler) HandleGenerateThumbnail(c *gin.Context) {
	rid := requestid.Get(c)

	var req GenerateThumbnailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	title := security.SanitizeInput(req.Title, recipe.MaxStepTitleLength)
	description := security.SanitizeInput(req.Description, recipe.MaxStepTextLength)

	if !security.ValidateLength(title, 1, recipe.MaxStepTitleLength) {
		badRequest(c, "Title is required")
		return
	}

	image, err := h.thumbnail.Generate(c.Request.Context(), title, description)
	if err != nil {
		serverError(c, err, rid)
		return
	}

	c.JSON(http.StatusOK, GenerateThumbnailResponse{Image: image})
}
