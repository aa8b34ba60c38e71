package edge

import (
	"net/http"

	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/security"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// AskStepRequest is the ask-step payload.
type AskStepRequest struct {
	Title    string `json:"title" binding:"required"`
	Step     string `json:"step" binding:"required"`
	Question string `json:"question,omitempty"`
}

// AskStepResponse is the ask-step success body.
type AskStepResponse struct {
	Answer string `json:"answer"`
}

// HandleAskStep answers a free-text question about one recipe step.
func (h *Handler) HandleAskStep(c *gin.Context) {
	rid := requestid.Get(c)

	var req AskStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	title := security.SanitizeInput(req.Title, recipe.MaxStepTitleLength)
	step := security.SanitizeInput(req.Step, recipe.MaxStepTextLength)
	question := security.SanitizeInput(req.Question, recipe.MaxStepQuestionLength)

	if !security.ValidateLength(title, 1, recipe.MaxStepTitleLength) {
		badRequest(c, "Title is required")
		return
	}
	if !security.ValidateLength(step, 1, recipe.MaxStepTextLength) {
		badRequest(c, "Step is required")
		return
	}

	answer, err := h.step.Ask(c.Request.Context(), title, step, question)
	if err != nil {
		serverError(c, err, rid)
		return
	}

	c.JSON(http.StatusOK, AskStepResponse{Answer: answer})
}
