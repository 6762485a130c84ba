package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/routekit/schema"
)

func TestCheck(t *testing.T) {
	idParams := schema.MustJSON(`{"type":"object","properties":{"id":{"type":"string"}}}`)
	extraParams := schema.MustJSON(`{"type":"object","properties":{"id":{"type":"string"},"slug":{"type":"string"}}}`)

	t.Run("consistent route", func(t *testing.T) {
		d := New(MethodGet, "/users/:id").Params(idParams).Response(200, nil).ResponseKey("5XX", nil).DefaultResponse(nil).Build()
		assert.NoError(t, Check(d))
	})

	t.Run("params without properties are not checked", func(t *testing.T) {
		d := New(MethodGet, "/users/:id").Params(otherSchema).Build()
		assert.NoError(t, Check(d))
	})

	t.Run("reports every problem", func(t *testing.T) {
		d := Define(Input{
			Method:    "FETCH",
			Path:      "/users/:userId",
			Request:   Request{Params: Schema(extraParams)},
			Responses: map[string]Response{"200": {}, "99": {}, "6XX": {}, "ok": {}},
		})

		err := Check(d)
		require.Error(t, err)
		msg := err.Error()
		assert.Contains(t, msg, `unsupported method "FETCH"`)
		assert.Contains(t, msg, `params property "id" is not in path`)
		assert.Contains(t, msg, `params property "slug" is not in path`)
		assert.Contains(t, msg, `path parameter "userId" is not in params schema`)
		assert.Contains(t, msg, `invalid status key "99"`)
		assert.Contains(t, msg, `invalid status key "6XX"`)
		assert.Contains(t, msg, `invalid status key "ok"`)
		assert.NotContains(t, msg, `"200"`)
	})

	t.Run("panicking adapter is ignored", func(t *testing.T) {
		bad := schema.Func{SchemaFunc: func() schema.JSONSchema { panic("boom") }}
		d := New(MethodGet, "/users/:id").Params(bad).Build()
		assert.NoError(t, Check(d))
	})
}

func TestValidStatus(t *testing.T) {
	for _, key := range []string{"100", "200", "599", "1XX", "5XX", "default"} {
		assert.True(t, ValidStatus(key), key)
	}
	for _, key := range []string{"", "99", "600", "0XX", "6XX", "2xx", "20", "abc", "DEFAULT"} {
		assert.False(t, ValidStatus(key), key)
	}
}
