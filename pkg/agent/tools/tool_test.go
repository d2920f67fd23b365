package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	for _, id := range All() {
		assert.Equal(t, id, ParseID(id.String()))
		assert.NotEmpty(t, id.Label())
	}
	assert.Equal(t, Unknown, ParseID("delete_everything"))
	assert.Equal(t, "unknown", Unknown.String())
	assert.Len(t, All(), 7)
}

func TestCallDecode(t *testing.T) {
	var args struct {
		Query string `json:"query"`
	}
	require.NoError(t, Call{}.Decode(&args))
	assert.Empty(t, args.Query)

	require.NoError(t, Call{Arguments: json.RawMessage(`{"query":"milk"}`)}.Decode(&args))
	assert.Equal(t, "milk", args.Query)

	assert.Error(t, Call{Arguments: json.RawMessage(`{"query":`)}.Decode(&args))
}

func TestSchemaFor(t *testing.T) {
	type searchArgs struct {
		Query      string `json:"query" jsonschema_description:"what to search for"`
		FilterYear int    `json:"filter_year,omitempty"`
	}

	schema := SchemaFor(searchArgs{})
	assert.Equal(t, "object", schema["type"])
	assert.NotContains(t, schema, "$schema")

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	query, ok := props["query"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", query["type"])
	assert.Equal(t, "what to search for", query["description"])
	assert.Contains(t, props, "filter_year")
	assert.Equal(t, []any{"query"}, schema["required"])

	empty := SchemaFor(struct{}{})
	assert.Equal(t, map[string]any{}, empty["properties"])
}

func TestResultConstructors(t *testing.T) {
	r := Done(Output{Display: "ok", TokenBudget: 10})
	assert.False(t, r.Ended)
	assert.Equal(t, "ok", r.Display)
	assert.True(t, EndOfMessage().Ended)
}
