package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/routekit/schema"
)

func TestFromFragment(t *testing.T) {
	tests := []struct {
		name  string
		input any
		ok    bool
	}{
		{"typed object", map[string]any{"type": "string"}, true},
		{"raw document type", schema.JSONSchema{"$ref": "#/x"}, true},
		{"composition", map[string]any{"oneOf": []any{map[string]any{"type": "string"}}}, true},
		{"enum only", map[string]any{"enum": []any{1, 2}}, true},
		{"const only", map[string]any{"const": "x"}, true},
		{"no marker", map[string]any{"description": "free text"}, false},
		{"empty object", map[string]any{}, false},
		{"not an object", "string", false},
		{"nil", nil, false},
		{"undecodable type", map[string]any{"type": 42}, false},
		{"unencodable value", map[string]any{"type": "string", "default": make(chan int)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, fromFragment(tt.input) != nil)
		})
	}

	t.Run("drops resource identifiers", func(t *testing.T) {
		s := fromFragment(map[string]any{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$id":     "https://example.com/item",
			"type":    "object",
		})
		require.NotNil(t, s)
		assert.Empty(t, s.SchemaURI)
		assert.Empty(t, s.ID)
		assert.Equal(t, TypeString("object"), s.Type)
	})
}

func TestFromAdapter(t *testing.T) {
	t.Run("nil adapter", func(t *testing.T) {
		assert.Nil(t, fromAdapter(nil))
	})

	t.Run("panicking adapter", func(t *testing.T) {
		assert.Nil(t, fromAdapter(panicking))
	})

	t.Run("empty document", func(t *testing.T) {
		assert.Nil(t, fromAdapter(schema.Func{}))
	})

	t.Run("struct adapter", func(t *testing.T) {
		type item struct {
			Name string `json:"name" validate:"required"`
		}
		s := fromAdapter(schema.Struct[item]())
		require.NotNil(t, s)
		assert.Equal(t, []string{"name"}, s.Required)
	})
}
