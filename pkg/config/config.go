package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the complete runtime configuration of a pricer run.
type Config struct {
	LLM     LLMConfig     `yaml:"llm" json:"llm"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Render  RenderConfig  `yaml:"render" json:"render"`
	Browser BrowserConfig `yaml:"browser" json:"browser"`
	Agent   AgentConfig   `yaml:"agent" json:"agent"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LLMConfig configures the inference provider and the retry policy around it.
type LLMConfig struct {
	Model           string `yaml:"model" json:"model"`
	ExtractionModel string `yaml:"extraction_model" json:"extraction_model"` // structured results extraction
	VisionModel     string `yaml:"vision_model" json:"vision_model"`         // screenshot analysis
	BaseURL         string `yaml:"base_url" json:"base_url"`
	APIKey          string `yaml:"api_key" json:"-"`

	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	VisionTimeout time.Duration `yaml:"vision_timeout" json:"vision_timeout"`
	MaxAttempts   int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay     time.Duration `yaml:"base_delay" json:"base_delay"`
}

// SearchConfig configures the web search provider.
type SearchConfig struct {
	APIKey     string  `yaml:"api_key" json:"-"`
	Endpoint   string  `yaml:"endpoint" json:"endpoint"`
	NumResults int     `yaml:"num_results" json:"num_results"`
	RateLimit  float64 `yaml:"rate_limit" json:"rate_limit"` // requests per second
	Burst      int     `yaml:"burst" json:"burst"`
}

// RenderBackend selects how screenshots are produced.
type RenderBackend string

const (
	// BackendBrowserless renders through the hosted browserless service.
	BackendBrowserless RenderBackend = "browserless"
	// BackendPlaywright renders with a local headless Chromium.
	BackendPlaywright RenderBackend = "playwright"
)

// RenderConfig configures screenshot rendering.
type RenderConfig struct {
	Backend        RenderBackend `yaml:"backend" json:"backend"`
	Token          string        `yaml:"token" json:"-"`
	Endpoint       string        `yaml:"endpoint" json:"endpoint"`
	Proxy          string        `yaml:"proxy" json:"proxy"`
	ImageType      string        `yaml:"image_type" json:"image_type"`
	FullPage       bool          `yaml:"full_page" json:"full_page"`
	WaitUntil      string        `yaml:"wait_until" json:"wait_until"`
	WaitForTimeout time.Duration `yaml:"wait_for_timeout" json:"wait_for_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
}

// BrowserConfig configures the text browser.
type BrowserConfig struct {
	WorkspaceDir     string        `yaml:"workspace_dir" json:"workspace_dir"`
	ViewportSize     int           `yaml:"viewport_size" json:"viewport_size"`
	UserAgent        string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout   time.Duration `yaml:"request_timeout" json:"request_timeout"`
	TextContentTypes []string      `yaml:"text_content_types" json:"text_content_types"`
	MaxDownloadProbe int           `yaml:"max_download_probe" json:"max_download_probe"`
}

// AgentConfig configures the orchestration loop and its tools.
type AgentConfig struct {
	Turns                  int           `yaml:"turns" json:"turns"`
	Sentinel               string        `yaml:"sentinel" json:"sentinel"`
	ToolTokenBudget        int           `yaml:"tool_token_budget" json:"tool_token_budget"`
	NotFoundTokenBudget    int           `yaml:"not_found_token_budget" json:"not_found_token_budget"`
	ScreenshotPollInterval time.Duration `yaml:"screenshot_poll_interval" json:"screenshot_poll_interval"`
	ScreenshotTimeout      time.Duration `yaml:"screenshot_timeout" json:"screenshot_timeout"`
}

// LoggingConfig configures the file logger.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// DefaultUserAgent is sent with every page fetch.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:           "gpt-4.1",
			ExtractionModel: "gpt-4.1-mini",
			VisionModel:     "gpt-4.1",
			Timeout:         100 * time.Second,
			VisionTimeout:   240 * time.Second,
			MaxAttempts:     5,
			BaseDelay:       2 * time.Second,
		},
		Search: SearchConfig{
			Endpoint:   "https://serpapi.com/search.json",
			NumResults: 10,
			RateLimit:  1,
			Burst:      1,
		},
		Render: RenderConfig{
			Backend:        BackendBrowserless,
			Endpoint:       "https://production-sfo.browserless.io",
			Proxy:          "residential",
			ImageType:      "png",
			FullPage:       true,
			WaitUntil:      "networkidle2",
			WaitForTimeout: 3 * time.Second,
			ConnectTimeout: 20 * time.Second,
			Timeout:        240 * time.Second,
		},
		Browser: BrowserConfig{
			WorkspaceDir:     "workspace",
			ViewportSize:     8 * 1024,
			UserAgent:        DefaultUserAgent,
			RequestTimeout:   10 * time.Second,
			TextContentTypes: []string{"text/*"},
			MaxDownloadProbe: 1000,
		},
		Agent: AgentConfig{
			Turns:                  10,
			Sentinel:               "RESEARCH_COMPLETE",
			ToolTokenBudget:        30000,
			NotFoundTokenBudget:    5000,
			ScreenshotPollInterval: 5 * time.Second,
			ScreenshotTimeout:      240 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for errors. Credentials are not required
// here; their absence is reported by the component that needs them.
func (c *Config) Validate() error {
	var errs []error

	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if c.LLM.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("llm.max_attempts must be at least 1, got %d", c.LLM.MaxAttempts))
	}
	if c.LLM.BaseDelay < 0 {
		errs = append(errs, errors.New("llm.base_delay cannot be negative"))
	}
	if c.Search.NumResults < 1 {
		errs = append(errs, errors.New("search.num_results must be positive"))
	}
	if c.Search.RateLimit <= 0 {
		errs = append(errs, errors.New("search.rate_limit must be positive"))
	}

	switch c.Render.Backend {
	case BackendBrowserless, BackendPlaywright:
	default:
		errs = append(errs, fmt.Errorf("render.backend must be %q or %q, got %q", BackendBrowserless, BackendPlaywright, c.Render.Backend))
	}
	switch c.Render.ImageType {
	case "png", "jpeg":
	case "webp":
		if c.Render.Backend == BackendPlaywright {
			errs = append(errs, errors.New("render.image_type webp is not supported by the playwright backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("render.image_type %q is not supported", c.Render.ImageType))
	}

	if c.Browser.ViewportSize < 1 {
		errs = append(errs, errors.New("browser.viewport_size must be positive"))
	}
	if c.Browser.WorkspaceDir == "" {
		errs = append(errs, errors.New("browser.workspace_dir is required"))
	}
	if len(c.Browser.TextContentTypes) == 0 {
		errs = append(errs, errors.New("browser.text_content_types cannot be empty"))
	}

	if c.Agent.Turns < 1 {
		errs = append(errs, errors.New("agent.turns must be at least 1"))
	}
	if c.Agent.Sentinel == "" {
		errs = append(errs, errors.New("agent.sentinel is required"))
	}
	if c.Agent.ScreenshotPollInterval <= 0 || c.Agent.ScreenshotTimeout <= 0 {
		errs = append(errs, errors.New("agent screenshot poll interval and timeout must be positive"))
	}

	return errors.Join(errs...)
}
