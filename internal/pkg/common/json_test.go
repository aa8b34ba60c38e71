package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	t.Run("decodes a value", func(t *testing.T) {
		var out struct {
			Name string `json:"name"`
		}
		require.NoError(t, ParseJSON(`{"name":"soup"}`, &out))
		assert.Equal(t, "soup", out.Name)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		var out map[string]interface{}
		assert.Error(t, ParseJSON(`{"a":1} {"b":2}`, &out))
	})

	t.Run("strict mode rejects unknown fields", func(t *testing.T) {
		var out struct {
			Name string `json:"name"`
		}
		assert.Error(t, ParseJSONStrict(`{"name":"soup","extra":true}`, &out))
	})
}

func TestExtractJSONObject(t *testing.T) {
	t.Run("strips markdown fences", func(t *testing.T) {
		content := "```json\n{\"recipes\": []}\n```"
		assert.Equal(t, `{"recipes": []}`, ExtractJSONObject(content))
	})

	t.Run("strips surrounding prose", func(t *testing.T) {
		content := `Here you go: {"answer": "yes"} hope that helps`
		assert.Equal(t, `{"answer": "yes"}`, ExtractJSONObject(content))
	})

	t.Run("leaves non-object content alone", func(t *testing.T) {
		assert.Equal(t, "no json here", ExtractJSONObject("  no json here "))
	})
}
