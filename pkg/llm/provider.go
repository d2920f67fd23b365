// Package llm defines the inference contract used by the pricer: a single
// request/response call against a Responses-style API with function tools.
//
// Example usage:
//
//	provider, err := openai.NewProvider(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4.1"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	retrying := llm.NewRetryProvider(provider)
//
//	resp, err := retrying.Respond(ctx, &llm.Request{
//	    Input: []llm.Item{llm.NewUserMessage("Hello!")},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.OutputText)
package llm

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredential is returned when no API key is configured. It is never retried.
	ErrMissingCredential = errors.New("missing inference API key")

	// ErrNoResponse is returned by RetryProvider once every attempt has failed.
	ErrNoResponse = errors.New("no response from model")
)

// Provider performs one inference call.
type Provider interface {
	// Respond sends the request and returns the complete response.
	Respond(ctx context.Context, req *Request) (*Response, error)
}

// ResponseFormat selects the text output format.
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"        // FormatText requests free text.
	FormatJSON ResponseFormat = "json_object" // FormatJSON requests a single JSON object.
)

// ToolSpec describes a function tool offered to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Request is a single inference request.
type Request struct {
	// Model overrides the provider's default model when set.
	Model string

	Input  []Item
	Tools  []ToolSpec
	Format ResponseFormat
}

// Response is the decoded result of an inference call.
type Response struct {
	// Output holds message and function_call items in the order the model produced them.
	Output []Item

	// OutputText is the concatenated text of all message items.
	OutputText string
}

// FunctionCalls returns the function_call items of the response.
func (r *Response) FunctionCalls() []Item {
	var calls []Item
	for _, it := range r.Output {
		if it.Type == ItemFunctionCall {
			calls = append(calls, it)
		}
	}
	return calls
}
