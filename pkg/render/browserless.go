package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBrowserlessEndpoint is the hosted browserless region used by default.
const DefaultBrowserlessEndpoint = "https://production-sfo.browserless.io"

// Browserless renders screenshots with the browserless /screenshot API.
type Browserless struct {
	token     string
	endpoint  string
	proxy     string
	waitUntil string
	waitFor   time.Duration
	client    *http.Client
}

// BrowserlessOption configures a Browserless renderer.
type BrowserlessOption func(*Browserless)

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) BrowserlessOption {
	return func(b *Browserless) {
		if endpoint != "" {
			b.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithProxy selects the browserless proxy pool; empty disables the parameter.
func WithProxy(proxy string) BrowserlessOption {
	return func(b *Browserless) {
		b.proxy = proxy
	}
}

// WithWait sets the navigation wait condition and the extra settle delay.
func WithWait(waitUntil string, settle time.Duration) BrowserlessOption {
	return func(b *Browserless) {
		if waitUntil != "" {
			b.waitUntil = waitUntil
		}
		b.waitFor = settle
	}
}

// WithTimeouts sets the connect timeout and the overall request timeout.
func WithTimeouts(connect, total time.Duration) BrowserlessOption {
	return func(b *Browserless) {
		dialer := &net.Dialer{Timeout: connect}
		b.client = &http.Client{
			Timeout:   total,
			Transport: &http.Transport{DialContext: dialer.DialContext, Proxy: http.ProxyFromEnvironment},
		}
	}
}

// NewBrowserless creates a renderer. The token is checked on each Render.
func NewBrowserless(token string, opts ...BrowserlessOption) *Browserless {
	b := &Browserless{
		token:     token,
		endpoint:  DefaultBrowserlessEndpoint,
		proxy:     "residential",
		waitUntil: "networkidle2",
		waitFor:   3 * time.Second,
	}
	WithTimeouts(20*time.Second, 240*time.Second)(b)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ Renderer = (*Browserless)(nil)

type gotoOptions struct {
	WaitUntil string `json:"waitUntil"`
}

type screenshotOptions struct {
	FullPage bool   `json:"fullPage"`
	Type     string `json:"type"`
}

type screenshotPayload struct {
	URL            string            `json:"url"`
	BestAttempt    bool              `json:"bestAttempt"`
	GotoOptions    gotoOptions       `json:"gotoOptions"`
	WaitForTimeout int64             `json:"waitForTimeout"`
	Options        screenshotOptions `json:"options"`
}

// Render posts the screenshot request and returns the image bytes.
// Timeouts, connection errors and non-2xx statuses come back as *Failure.
func (b *Browserless) Render(ctx context.Context, req Request) ([]byte, error) {
	if b.token == "" {
		return nil, ErrMissingCredential
	}

	imageType := req.ImageType
	if imageType == "" {
		imageType = "png"
	}
	payload, err := json.Marshal(screenshotPayload{
		URL:            req.URL,
		BestAttempt:    true,
		GotoOptions:    gotoOptions{WaitUntil: b.waitUntil},
		WaitForTimeout: b.waitFor.Milliseconds(),
		Options:        screenshotOptions{FullPage: req.FullPage, Type: imageType},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal screenshot payload: %w", err)
	}

	query := url.Values{}
	query.Set("token", b.token)
	if b.proxy != "" {
		query.Set("proxy", b.proxy)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+"/screenshot?"+query.Encode(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create screenshot request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Failure{
			Kind: "HTTPError",
			Err:  fmt.Errorf("%d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(detail))),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	return data, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Failure{Kind: "Timeout", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &Failure{Kind: "ConnectionError", Err: err}
}
