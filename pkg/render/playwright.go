package render

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Playwright renders screenshots with a local headless Chromium. The driver
// and browser are installed and launched on first use and shared by all calls.
type Playwright struct {
	mu        sync.Mutex
	pw        *playwright.Playwright
	browser   playwright.Browser
	waitUntil string
	settle    time.Duration
	timeout   time.Duration
	width     int
	height    int
}

// NewPlaywright creates a local renderer.
func NewPlaywright(waitUntil string, settle, timeout time.Duration) *Playwright {
	return &Playwright{
		waitUntil: waitUntil,
		settle:    settle,
		timeout:   timeout,
		width:     1280,
		height:    800,
	}
}

var _ Renderer = (*Playwright)(nil)

func (p *Playwright) start() error {
	if p.browser != nil {
		return nil
	}

	// keep driver output off the terminal
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	headless := true
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: &headless})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	p.pw = pw
	p.browser = browser
	return nil
}

// Render opens the URL in a fresh browser context and captures it.
func (p *Playwright) Render(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.start(); err != nil {
		return nil, err
	}

	bctx, err := p.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: p.width, Height: p.height},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	timeoutMs := float64(p.timeout.Milliseconds())
	if deadline, ok := ctx.Deadline(); ok {
		if left := float64(time.Until(deadline).Milliseconds()); left < timeoutMs {
			timeoutMs = left
		}
	}

	waitUntil := waitUntilState(p.waitUntil)
	if _, err := page.Goto(req.URL, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
		Timeout:   &timeoutMs,
	}); err != nil {
		return nil, &Failure{Kind: "Timeout", Err: fmt.Errorf("navigation failed: %w", err)}
	}
	if p.settle > 0 {
		page.WaitForTimeout(float64(p.settle.Milliseconds()))
	}

	fullPage := req.FullPage
	data, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: &fullPage,
		Type:     screenshotType(req.ImageType),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

// Close stops the browser and the driver.
func (p *Playwright) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser != nil {
		_ = p.browser.Close()
		p.browser = nil
	}
	if p.pw != nil {
		err := p.pw.Stop()
		p.pw = nil
		return err
	}
	return nil
}

// waitUntilState maps puppeteer-style wait names onto playwright's.
func waitUntilState(s string) playwright.WaitUntilState {
	switch s {
	case "networkidle0", "networkidle2", "networkidle":
		return playwright.WaitUntilState("networkidle")
	case "domcontentloaded":
		return playwright.WaitUntilState("domcontentloaded")
	case "commit":
		return playwright.WaitUntilState("commit")
	default:
		return playwright.WaitUntilState("load")
	}
}

func screenshotType(s string) *playwright.ScreenshotType {
	if s == "jpeg" || s == "jpg" {
		return playwright.ScreenshotTypeJpeg
	}
	return playwright.ScreenshotTypePng
}
