package recipe

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPantryServiceParseText(t *testing.T) {
	ctx := context.Background()

	t.Run("parses items", func(t *testing.T) {
		p := &stubProvider{jsonFn: func(prompt string, _ provider.Schema) (string, error) {
			assert.Contains(t, prompt, "two apples")
			return `{"items":[{"name":"Apple","quantity":2,"unit":"pcs","category":"Produce"}]}`, nil
		}}
		svc := NewPantryService(newTestAIService(t, p))

		items, err := svc.ParseText(ctx, "two apples")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Apple", items[0].Name)
		assert.Equal(t, UnitPcs, items[0].Unit)
	})

	t.Run("falls back on invalid enums", func(t *testing.T) {
		p := &stubProvider{jsonFn: func(string, provider.Schema) (string, error) {
			return `{"items":[{"name":"Milk","quantity":1,"unit":"gallon","category":"Drinks"}]}`, nil
		}}
		svc := NewPantryService(newTestAIService(t, p))

		items, err := svc.ParseText(ctx, "a gallon of milk")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, UnitPcs, items[0].Unit)
		assert.Equal(t, CategoryGeneral, items[0].Category)
	})
}

func TestPantryServiceParseImage(t *testing.T) {
	p := &stubProvider{imageFn: func(_, imageData string) (string, error) {
		assert.NotEmpty(t, imageData)
		return `{"items":[{"name":"Tomato","quantity":3,"unit":"pcs","category":"Produce"}]}`, nil
	}}
	svc := NewPantryService(newTestAIService(t, p))

	items, err := svc.ParseImage(context.Background(), base64.StdEncoding.EncodeToString([]byte("fake-image")))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Tomato", items[0].Name)
}

func TestValidateImagePayload(t *testing.T) {
	t.Run("accepts plain base64", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte("image-bytes"))
		assert.NoError(t, ValidateImagePayload(payload))
	})

	t.Run("accepts data uri", func(t *testing.T) {
		payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("image-bytes"))
		assert.NoError(t, ValidateImagePayload(payload))
	})

	t.Run("rejects malformed data uri", func(t *testing.T) {
		assert.Error(t, ValidateImagePayload("data:image/jpeg;base64"))
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		err := ValidateImagePayload("not!!base64??")
		assert.Error(t, err)
		assert.True(t, common.IsValidationError(err))
	})

	t.Run("rejects oversized payload", func(t *testing.T) {
		big := strings.Repeat("a", MaxPantryImageBytes+1)
		payload := base64.StdEncoding.EncodeToString([]byte(big))
		assert.Error(t, ValidateImagePayload(payload))
	})
}
