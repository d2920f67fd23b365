package web

import (
	"strings"
	"time"

	"github.com/entrhq/priceiq/pkg/agent/tools"
	"github.com/entrhq/priceiq/pkg/browser"
	"github.com/entrhq/priceiq/pkg/llm"
)

const separator = "\n=======================\n"

// Config holds the settings shared by the browsing tools.
type Config struct {
	TokenBudget         int
	NotFoundTokenBudget int

	VisionModel  string
	PollInterval time.Duration
	Timeout      time.Duration
}

// DefaultConfig returns the default tool settings.
func DefaultConfig() Config {
	return Config{
		TokenBudget:         30000,
		NotFoundTokenBudget: 5000,
		VisionModel:         "gpt-4.1",
		PollInterval:        5 * time.Second,
		Timeout:             240 * time.Second,
	}
}

// NewToolset returns every browsing tool in the order offered to the model.
func NewToolset(cfg Config, vision llm.Provider) []tools.Tool {
	return []tools.Tool{
		NewWebSearchTool(cfg),
		NewVisitURLTool(cfg),
		NewFindOnPageTool(cfg),
		NewFindNextTool(cfg),
		NewPageDownTool(cfg),
		NewPageUpTool(cfg),
		NewScreenshotTool(cfg, vision),
	}
}

// pageState renders the browser as the model sees it.
func pageState(b *browser.TextBrowser) string {
	header, viewport := b.State()
	return strings.TrimSpace(header) + separator + viewport
}

func stateOutput(b *browser.TextBrowser, url string, budget int) *tools.Result {
	text := pageState(b)
	return tools.Done(tools.Output{Display: text, Raw: text, URL: url, TokenBudget: budget})
}
