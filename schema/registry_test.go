package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/extcompat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string   `yaml:"name" jsonschema:"required,minLength=1"`
	Retries int      `yaml:"retries,omitempty" jsonschema:"minimum=0"`
	Tags    []string `yaml:"tags,omitempty"`
	Nested  nested   `yaml:"nested,omitempty"`
}

type nested struct {
	Enabled bool `yaml:"enabled"`
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry(schema.WithFieldNameTag("yaml"))
	require.NoError(t, r.Register("sample", sample{}))
	require.NoError(t, r.Register("raw", `{"type":"object"}`))
	require.NoError(t, r.Register("map", map[string]any{"type": "array"}))

	assert.Error(t, r.Register("sample", sample{}), "duplicate kind")
	assert.Error(t, r.Register("bad", 42))

	assert.Equal(t, []string{"map", "raw", "sample"}, r.List())

	doc, ok := r.GetSchema("sample")
	require.True(t, ok)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	props, ok := parsed["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "retries")
	assert.Equal(t, false, parsed["additionalProperties"])
}

func TestRegistry_Validate(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry(schema.WithFieldNameTag("yaml"))
	require.NoError(t, r.Register("sample", &sample{}))

	tests := []struct {
		name    string
		doc     any
		wantErr string
	}{
		{name: "valid", doc: map[string]any{"name": "x", "retries": 2, "tags": []string{"a"}}},
		{name: "nested", doc: map[string]any{"name": "x", "nested": map[string]any{"enabled": true}}},
		{name: "missing required", doc: map[string]any{"retries": 1}, wantErr: "name"},
		{name: "wrong type", doc: map[string]any{"name": "x", "retries": "many"}, wantErr: "/retries"},
		{name: "below minimum", doc: map[string]any{"name": "x", "retries": -1}, wantErr: "/retries"},
		{name: "unknown key", doc: map[string]any{"name": "x", "bogus": 1}, wantErr: "bogus"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Validate("sample", tc.doc)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *schema.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "sample", verr.Kind)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRegistry_ValidateJSON(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()
	require.NoError(t, r.Register("list", `{"type":"array","items":{"type":"string"}}`))

	assert.NoError(t, r.ValidateJSON("list", []byte(`["a","b"]`)))
	assert.Error(t, r.ValidateJSON("list", []byte(`["a",1]`)))
	assert.Error(t, r.ValidateJSON("list", []byte(`not json`)))
	assert.ErrorIs(t, r.ValidateJSON("missing", []byte(`[]`)), schema.ErrUnknownKind)
}

func TestRegistry_InvalidSchema(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()
	require.NoError(t, r.Register("broken", `{"type": 12}`))
	assert.Error(t, r.Validate("broken", map[string]any{}))
}
