// Package openai implements llm.Provider against the OpenAI Responses API.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4.1"),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	resp, err := provider.Respond(ctx, &llm.Request{
//	    Input: []llm.Item{llm.NewUserMessage("Hello!")},
//	})
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/openai/openai-go/responses"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4.1"
)

// Provider calls an OpenAI-compatible /responses endpoint.
type Provider struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the default model for requests that do not name one.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout bounds each HTTP call.
func WithTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// NewProvider creates a provider. An empty apiKey falls back to OPENAI_API_KEY;
// when neither is set the error wraps llm.ErrMissingCredential.
// OPENAI_BASE_URL is honoured when WithBaseURL is not given.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: provide it via config or the OPENAI_API_KEY environment variable", llm.ErrMissingCredential)
	}

	p := &Provider{
		model:      DefaultModel,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 100 * time.Second},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			p.baseURL = strings.TrimRight(envBaseURL, "/")
		}
	}
	return p, nil
}

// Model returns the default model.
func (p *Provider) Model() string {
	return p.model
}

var _ llm.Provider = (*Provider)(nil)

// Respond sends one non-streaming request to /responses.
func (p *Provider) Respond(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	bodyBytes, err := json.Marshal(p.buildRequestBody(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/responses", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var decoded responses.Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if decoded.Error.Message != "" {
		return nil, fmt.Errorf("model returned error: %s", decoded.Error.Message)
	}

	return convertResponse(&decoded), nil
}

func (p *Provider) buildRequestBody(req *llm.Request) map[string]interface{} {
	model := req.Model
	if model == "" {
		model = p.model
	}
	format := req.Format
	if format == "" {
		format = llm.FormatText
	}

	body := map[string]interface{}{
		"model": model,
		"input": req.Input,
		"store": false,
		"text": map[string]interface{}{
			"format": map[string]string{"type": string(format)},
		},
	}

	if len(req.Tools) > 0 {
		tools := make([]map[string]interface{}, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, map[string]interface{}{
				"type":        "function",
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
				"strict":      false,
			})
		}
		body["tools"] = tools
		body["tool_choice"] = "auto"
	}
	return body
}

// convertResponse keeps message and function_call items; reasoning and other
// item kinds are not replayed into the conversation.
func convertResponse(r *responses.Response) *llm.Response {
	out := &llm.Response{OutputText: r.OutputText()}

	for _, item := range r.Output {
		switch item.Type {
		case "message":
			var text strings.Builder
			for _, part := range item.Content {
				if part.Type == "output_text" {
					text.WriteString(part.Text)
				}
			}
			out.Output = append(out.Output, llm.NewAssistantMessage(text.String()))
		case "function_call":
			out.Output = append(out.Output, llm.NewFunctionCall(item.CallID, item.Name, item.Arguments))
		}
	}
	return out
}
