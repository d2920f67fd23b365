package main

import (
	"fmt"
	"io"
	"time"

	"github.com/entrhq/priceiq/pkg/agent"
	"github.com/entrhq/priceiq/pkg/browser"
	"github.com/entrhq/priceiq/pkg/config"
	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/entrhq/priceiq/pkg/llm/openai"
	"github.com/entrhq/priceiq/pkg/llm/tokenizer"
	"github.com/entrhq/priceiq/pkg/render"
	"github.com/entrhq/priceiq/pkg/search"
	"github.com/entrhq/priceiq/pkg/session"
	"github.com/entrhq/priceiq/pkg/tools/web"
)

// app is the wired pricer together with the resources it owns.
type app struct {
	pricer   *agent.Pricer
	sessions *session.Manager
	closers  []io.Closer
}

func newApp(cfg *config.Config, opts ...agent.Option) (*app, error) {
	research, err := newProvider(cfg.LLM, cfg.LLM.Model, cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}
	vision, err := newProvider(cfg.LLM, cfg.LLM.VisionModel, cfg.LLM.VisionTimeout)
	if err != nil {
		return nil, err
	}

	a := &app{}
	searcher := search.NewSerpAPI(cfg.Search.APIKey,
		search.WithEndpoint(cfg.Search.Endpoint),
		search.WithNumResults(cfg.Search.NumResults),
		search.WithRateLimit(cfg.Search.RateLimit, cfg.Search.Burst),
	)
	renderer := a.newRenderer(cfg.Render)

	browserCfg := browser.Config{
		ViewportSize:     cfg.Browser.ViewportSize,
		UserAgent:        cfg.Browser.UserAgent,
		RequestTimeout:   cfg.Browser.RequestTimeout,
		TextContentTypes: cfg.Browser.TextContentTypes,
		MaxDownloadProbe: cfg.Browser.MaxDownloadProbe,
		ImageType:        cfg.Render.ImageType,
		FullPage:         cfg.Render.FullPage,
	}
	a.sessions = session.NewManager(cfg.Browser.WorkspaceDir, browserCfg,
		browser.WithSearcher(searcher),
		browser.WithRenderer(renderer),
	)

	toolCfg := web.Config{
		TokenBudget:         cfg.Agent.ToolTokenBudget,
		NotFoundTokenBudget: cfg.Agent.NotFoundTokenBudget,
		VisionModel:         cfg.LLM.VisionModel,
		PollInterval:        cfg.Agent.ScreenshotPollInterval,
		Timeout:             cfg.Agent.ScreenshotTimeout,
	}
	toolbox := agent.NewToolbox(web.NewToolset(toolCfg, vision),
		agent.WithTokenizer(tokenizer.ForModel(cfg.LLM.Model)),
	)

	opts = append([]agent.Option{
		agent.WithModel(cfg.LLM.Model),
		agent.WithExtractionModel(cfg.LLM.ExtractionModel),
		agent.WithTurns(cfg.Agent.Turns),
		agent.WithSentinel(cfg.Agent.Sentinel),
	}, opts...)
	a.pricer = agent.NewPricer(research, toolbox, opts...)
	return a, nil
}

func newProvider(cfg config.LLMConfig, model string, timeout time.Duration) (llm.Provider, error) {
	provider, err := openai.NewProvider(cfg.APIKey,
		openai.WithModel(model),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", model, err)
	}
	return llm.NewRetryProvider(provider,
		llm.WithMaxAttempts(cfg.MaxAttempts),
		llm.WithBaseDelay(cfg.BaseDelay),
	), nil
}

func (a *app) newRenderer(cfg config.RenderConfig) render.Renderer {
	if cfg.Backend == config.BackendPlaywright {
		pw := render.NewPlaywright(cfg.WaitUntil, cfg.WaitForTimeout, cfg.Timeout)
		a.closers = append(a.closers, pw)
		return pw
	}
	return render.NewBrowserless(cfg.Token,
		render.WithEndpoint(cfg.Endpoint),
		render.WithProxy(cfg.Proxy),
		render.WithWait(cfg.WaitUntil, cfg.WaitForTimeout),
		render.WithTimeouts(cfg.ConnectTimeout, cfg.Timeout),
	)
}

// Close releases the local browser, if one was started.
func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
