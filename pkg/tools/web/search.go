package web

import (
	"context"
	"fmt"

	"github.com/entrhq/priceiq/pkg/agent/tools"
	"github.com/entrhq/priceiq/pkg/browser"
)

// WebSearchTool runs a web search and shows the result page.
type WebSearchTool struct {
	budget int
}

type webSearchArgs struct {
	Query      string `json:"query" jsonschema_description:"a text query to search for in the web"`
	FilterYear int    `json:"filter_year,omitempty" jsonschema_description:"OPTIONAL year filter (e.g., 2020)"`
}

// NewWebSearchTool creates a web_search tool.
func NewWebSearchTool(cfg Config) *WebSearchTool {
	return &WebSearchTool{budget: cfg.TokenBudget}
}

// ID returns the tool ID.
func (t *WebSearchTool) ID() tools.ID { return tools.WebSearch }

// Description returns the tool description.
func (t *WebSearchTool) Description() string {
	return "search the web for information"
}

// Schema returns the tool's JSON schema.
func (t *WebSearchTool) Schema() map[string]any {
	return tools.SchemaFor(webSearchArgs{})
}

// Execute runs the search in the session's browser.
func (t *WebSearchTool) Execute(ctx context.Context, call tools.Call) (*tools.Result, error) {
	var args webSearchArgs
	if err := call.Decode(&args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	b := call.Session.Browser
	if _, err := b.Visit(ctx, browser.SearchPrefix+" "+args.Query, args.FilterYear); err != nil {
		return nil, err
	}
	return stateOutput(b, "", t.budget), nil
}
