package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type genAddress struct {
	City string `json:"city" openapi:"description=City name,example=Berlin"`
}

type genBase struct {
	ID string `json:"id" validate:"required,uuid"`
}

type genUser struct {
	genBase
	Name     string            `json:"name" validate:"required,min=2,max=32"`
	Email    string            `json:"email,omitempty" validate:"omitempty,email"`
	Age      *int              `json:"age,omitempty" validate:"omitempty,gte=0,lt=150"`
	Role     string            `json:"role" openapi:"enum=admin|user"`
	Tags     []string          `json:"tags" validate:"max=5"`
	Meta     map[string]string `json:"meta,omitempty"`
	Address  genAddress        `json:"address"`
	Created  time.Time         `json:"created"`
	Avatar   []byte            `json:"avatar,omitempty"`
	Count    int64             `json:"count,string"`
	Internal string            `json:"-"`
	secret   string
}

type genNode struct {
	Value    int        `json:"value"`
	Children []*genNode `json:"children,omitempty"`
}

func (genUser) SchemaExample() any {
	return map[string]any{"name": "Alice"}
}

func TestGenerate(t *testing.T) {
	doc := Generate(genUser{})
	props := doc["properties"].(map[string]any)

	t.Run("inlines embedded structs", func(t *testing.T) {
		assert.Equal(t, map[string]any{"type": "string", "format": "uuid"}, props["id"])
	})

	t.Run("required follows validate tags", func(t *testing.T) {
		assert.Equal(t, []any{"id", "name"}, doc["required"])
	})

	t.Run("string bounds", func(t *testing.T) {
		assert.Equal(t, map[string]any{"type": "string", "minLength": 2, "maxLength": 32}, props["name"])
		assert.Equal(t, map[string]any{"type": "string", "format": "email"}, props["email"])
	})

	t.Run("pointers are nullable", func(t *testing.T) {
		assert.Equal(t, map[string]any{
			"type":             []any{"integer", "null"},
			"minimum":          float64(0),
			"exclusiveMaximum": float64(150),
		}, props["age"])
	})

	t.Run("openapi tag", func(t *testing.T) {
		assert.Equal(t, map[string]any{"type": "string", "enum": []any{"admin", "user"}}, props["role"])
		addr := props["address"].(map[string]any)
		city := addr["properties"].(map[string]any)["city"]
		assert.Equal(t, map[string]any{"type": "string", "description": "City name", "example": "Berlin"}, city)
	})

	t.Run("collections", func(t *testing.T) {
		assert.Equal(t, map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "maxItems": 5}, props["tags"])
		assert.Equal(t, map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}}, props["meta"])
		assert.Equal(t, map[string]any{"type": "string", "format": "byte"}, props["avatar"])
	})

	t.Run("special types", func(t *testing.T) {
		assert.Equal(t, map[string]any{"type": "string", "format": "date-time"}, props["created"])
		assert.Equal(t, map[string]any{"type": "string"}, props["count"])
	})

	t.Run("skips hidden fields", func(t *testing.T) {
		assert.NotContains(t, props, "Internal")
		assert.NotContains(t, props, "secret")
	})

	t.Run("example", func(t *testing.T) {
		assert.Equal(t, map[string]any{"name": "Alice"}, doc["example"])
	})
}

func TestGenerateRecursive(t *testing.T) {
	doc := Generate(genNode{})
	children := doc["properties"].(map[string]any)["children"].(map[string]any)
	assert.Equal(t, "array", children["type"])
	assert.Equal(t, map[string]any{"type": []any{"object", "null"}}, children["items"])
}

func TestGenerateNil(t *testing.T) {
	assert.Nil(t, Generate(nil))
}
