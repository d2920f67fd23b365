package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const responsesPayload = `{
  "id": "resp_1",
  "object": "response",
  "created_at": 1700000000,
  "model": "gpt-4.1",
  "status": "completed",
  "output": [
    {
      "type": "message",
      "id": "msg_1",
      "role": "assistant",
      "status": "completed",
      "content": [{"type": "output_text", "text": "Looking up prices.", "annotations": []}]
    },
    {
      "type": "function_call",
      "id": "fc_1",
      "call_id": "call_1",
      "name": "web_search",
      "arguments": "{\"query\":\"milk price\"}",
      "status": "completed"
    }
  ]
}`

func TestNewProviderMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewProvider("")
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
}

func TestNewProviderBaseURLFromEnv(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1/")

	p, err := NewProvider("test-key")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/v1", p.baseURL)
	assert.Equal(t, DefaultModel, p.Model())
}

func TestRespond(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responsesPayload))
	}))
	defer server.Close()

	p, err := NewProvider("test-key", WithBaseURL(server.URL), WithModel("gpt-4.1"))
	require.NoError(t, err)

	resp, err := p.Respond(context.Background(), &llm.Request{
		Input: []llm.Item{llm.NewDeveloperMessage("rules"), llm.NewUserMessage("Please start.")},
		Tools: []llm.ToolSpec{{Name: "web_search", Description: "search", Parameters: map[string]interface{}{"type": "object"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1", got["model"])
	assert.Equal(t, false, got["store"])
	assert.Equal(t, "auto", got["tool_choice"])
	assert.Len(t, got["input"], 2)

	require.Len(t, resp.Output, 2)
	assert.Equal(t, llm.ItemMessage, resp.Output[0].Type)
	assert.Equal(t, "Looking up prices.", resp.Output[0].Text)
	assert.Equal(t, "Looking up prices.", resp.OutputText)

	call := resp.Output[1]
	assert.Equal(t, llm.ItemFunctionCall, call.Type)
	assert.Equal(t, "call_1", call.CallID)
	assert.Equal(t, "web_search", call.Name)
	assert.JSONEq(t, `{"query":"milk price"}`, call.Arguments)
}

func TestRespondJSONFormatAndModelOverride(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"id":"r","object":"response","status":"completed","output":[]}`))
	}))
	defer server.Close()

	p, err := NewProvider("k", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = p.Respond(context.Background(), &llm.Request{Model: "gpt-4.1-mini", Format: llm.FormatJSON})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", got["model"])
	text := got["text"].(map[string]interface{})
	assert.Equal(t, "json_object", text["format"].(map[string]interface{})["type"])
	_, hasTools := got["tools"]
	assert.False(t, hasTools)
}

func TestRespondHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	p, err := NewProvider("k", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = p.Respond(context.Background(), &llm.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
