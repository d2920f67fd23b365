package web

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/priceiq/pkg/agent/tools"
)

// FindOnPageTool moves the viewport to the next match of a query.
type FindOnPageTool struct {
	budget         int
	notFoundBudget int
}

type findOnPageArgs struct {
	SearchString string `json:"search_string" jsonschema_description:"The string to search for; supports wildcards like '*'"`
}

// NewFindOnPageTool creates a find_on_page tool.
func NewFindOnPageTool(cfg Config) *FindOnPageTool {
	return &FindOnPageTool{budget: cfg.TokenBudget, notFoundBudget: cfg.NotFoundTokenBudget}
}

// ID returns the tool ID.
func (t *FindOnPageTool) ID() tools.ID { return tools.FindOnPage }

// Description returns the tool description.
func (t *FindOnPageTool) Description() string {
	return "Scroll the viewport to the first occurrence of the search string. This is equivalent to Ctrl+F."
}

// Schema returns the tool's JSON schema.
func (t *FindOnPageTool) Schema() map[string]any {
	return tools.SchemaFor(findOnPageArgs{})
}

// Execute searches the current page.
func (t *FindOnPageTool) Execute(_ context.Context, call tools.Call) (*tools.Result, error) {
	var args findOnPageArgs
	if err := call.Decode(&args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	b := call.Session.Browser
	if _, ok := b.Find(args.SearchString); !ok {
		header, _ := b.State()
		text := fmt.Sprintf("%s%sThe search string '%s' was not found on this page.", strings.TrimSpace(header), separator, args.SearchString)
		return tools.Done(tools.Output{Display: text, TokenBudget: t.notFoundBudget}), nil
	}
	return stateOutput(b, "", t.budget), nil
}

// FindNextTool continues the last find_on_page.
type FindNextTool struct {
	budget int
}

// NewFindNextTool creates a find_next tool.
func NewFindNextTool(cfg Config) *FindNextTool {
	return &FindNextTool{budget: cfg.TokenBudget}
}

// ID returns the tool ID.
func (t *FindNextTool) ID() tools.ID { return tools.FindNext }

// Description returns the tool description.
func (t *FindNextTool) Description() string {
	return "Scroll the viewport to the next occurrence of the search string."
}

// Schema returns the tool's JSON schema.
func (t *FindNextTool) Schema() map[string]any {
	return tools.SchemaFor(struct{}{})
}

// Execute continues the search.
func (t *FindNextTool) Execute(_ context.Context, call tools.Call) (*tools.Result, error) {
	b := call.Session.Browser
	if _, ok := b.FindNext(); !ok {
		header, _ := b.State()
		text := strings.TrimSpace(header) + separator + "No further occurrences found."
		return tools.Done(tools.Output{Display: text, TokenBudget: t.budget}), nil
	}
	return stateOutput(b, "", t.budget), nil
}
