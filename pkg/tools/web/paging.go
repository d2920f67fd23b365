package web

import (
	"context"

	"github.com/entrhq/priceiq/pkg/agent/tools"
)

// PageDownTool scrolls one viewport down.
type PageDownTool struct {
	budget int
}

// NewPageDownTool creates a page_down tool.
func NewPageDownTool(cfg Config) *PageDownTool {
	return &PageDownTool{budget: cfg.TokenBudget}
}

// ID returns the tool ID.
func (t *PageDownTool) ID() tools.ID { return tools.PageDown }

// Description returns the tool description.
func (t *PageDownTool) Description() string { return "Scroll down one page." }

// Schema returns the tool's JSON schema.
func (t *PageDownTool) Schema() map[string]any { return tools.SchemaFor(struct{}{}) }

// Execute scrolls down.
func (t *PageDownTool) Execute(_ context.Context, call tools.Call) (*tools.Result, error) {
	b := call.Session.Browser
	b.PageDown()
	return stateOutput(b, "", t.budget), nil
}

// PageUpTool scrolls one viewport up.
type PageUpTool struct {
	budget int
}

// NewPageUpTool creates a page_up tool.
func NewPageUpTool(cfg Config) *PageUpTool {
	return &PageUpTool{budget: cfg.TokenBudget}
}

// ID returns the tool ID.
func (t *PageUpTool) ID() tools.ID { return tools.PageUp }

// Description returns the tool description.
func (t *PageUpTool) Description() string { return "Scroll up one page." }

// Schema returns the tool's JSON schema.
func (t *PageUpTool) Schema() map[string]any { return tools.SchemaFor(struct{}{}) }

// Execute scrolls up.
func (t *PageUpTool) Execute(_ context.Context, call tools.Call) (*tools.Result, error) {
	b := call.Session.Browser
	b.PageUp()
	return stateOutput(b, "", t.budget), nil
}
