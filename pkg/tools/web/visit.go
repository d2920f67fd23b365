package web

import (
	"context"
	"fmt"

	"github.com/entrhq/priceiq/pkg/agent/tools"
)

// VisitURLTool opens a page in the session's browser.
type VisitURLTool struct {
	budget int
}

type visitURLArgs struct {
	URL string `json:"url" jsonschema_description:"the relative or absolute url of the webpage to visit"`
}

// NewVisitURLTool creates a visit_url tool.
func NewVisitURLTool(cfg Config) *VisitURLTool {
	return &VisitURLTool{budget: cfg.TokenBudget}
}

// ID returns the tool ID.
func (t *VisitURLTool) ID() tools.ID { return tools.VisitURL }

// Description returns the tool description.
func (t *VisitURLTool) Description() string {
	return "Visit a webpage at a given URL and return its text. If you give this a file url like \"https://example.com/file.pdf\", it will download that file and show its text."
}

// Schema returns the tool's JSON schema.
func (t *VisitURLTool) Schema() map[string]any {
	return tools.SchemaFor(visitURLArgs{})
}

// Execute visits the URL.
func (t *VisitURLTool) Execute(ctx context.Context, call tools.Call) (*tools.Result, error) {
	var args visitURLArgs
	if err := call.Decode(&args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	b := call.Session.Browser
	if _, err := b.Visit(ctx, args.URL, 0); err != nil {
		return nil, err
	}
	return stateOutput(b, args.URL, t.budget), nil
}
