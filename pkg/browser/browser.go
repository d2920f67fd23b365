// Package browser implements a paginated text browser: it fetches pages,
// search results and local files, converts them to text and exposes the
// result one viewport at a time.
package browser

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/priceiq/pkg/config"
	"github.com/entrhq/priceiq/pkg/convert"
	"github.com/entrhq/priceiq/pkg/logging"
	"github.com/entrhq/priceiq/pkg/render"
	"github.com/entrhq/priceiq/pkg/search"
	"github.com/gobwas/glob"
)

const (
	// StartPage is the address a new browser opens on.
	StartPage = "about:blank"

	// SearchPrefix marks an address as a web search query.
	SearchPrefix = "google:"

	// DefaultViewportSize is the nominal viewport length in bytes.
	DefaultViewportSize = 8 * 1024
)

var browserLog = logging.MustLogger("browser")

// Config holds the browser settings.
type Config struct {
	ViewportSize     int
	DownloadsDir     string
	UserAgent        string
	RequestTimeout   time.Duration
	TextContentTypes []string // glob patterns matched against the media type
	MaxDownloadProbe int
	ImageType        string
	FullPage         bool
}

// DefaultConfig returns the default settings for a browser saving into dir.
func DefaultConfig(dir string) Config {
	return Config{
		ViewportSize:     DefaultViewportSize,
		DownloadsDir:     dir,
		UserAgent:        config.DefaultUserAgent,
		RequestTimeout:   10 * time.Second,
		TextContentTypes: []string{"text/*"},
		MaxDownloadProbe: 1000,
		ImageType:        "png",
		FullPage:         true,
	}
}

// DocumentConverter converts fetched documents to text.
type DocumentConverter interface {
	ConvertLocal(path string) (*convert.Document, error)
	ConvertResponse(body io.Reader, contentType string) (*convert.Document, error)
}

type visit struct {
	address string
	at      time.Time
}

// TextBrowser is a single-user text browser. Its methods are safe for
// concurrent use but calls are serialized.
type TextBrowser struct {
	mu sync.Mutex

	cfg       Config
	client    *http.Client
	converter DocumentConverter
	searcher  search.Provider
	renderer  render.Renderer
	textTypes []glob.Glob
	now       func() time.Time

	history []visit
	title   string
	content string
	pages   []Range
	current int

	hasFind   bool
	findQuery string
	findLast  int
}

// Option configures a TextBrowser.
type Option func(*TextBrowser)

// WithSearcher sets the provider behind google: addresses.
func WithSearcher(p search.Provider) Option {
	return func(b *TextBrowser) { b.searcher = p }
}

// WithRenderer sets the screenshot renderer.
func WithRenderer(r render.Renderer) Option {
	return func(b *TextBrowser) { b.renderer = r }
}

// WithConverter replaces the document converter.
func WithConverter(c DocumentConverter) Option {
	return func(b *TextBrowser) { b.converter = c }
}

// WithHTTPClient replaces the HTTP client used for page fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(b *TextBrowser) { b.client = c }
}

// WithClock replaces the time source used for visit timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *TextBrowser) { b.now = now }
}

// New creates a browser positioned on about:blank.
func New(cfg Config, opts ...Option) (*TextBrowser, error) {
	if cfg.ViewportSize <= 0 {
		cfg.ViewportSize = DefaultViewportSize
	}
	if cfg.ImageType == "" {
		cfg.ImageType = "png"
	}
	if len(cfg.TextContentTypes) == 0 {
		cfg.TextContentTypes = []string{"text/*"}
	}

	b := &TextBrowser{
		cfg:       cfg,
		converter: convert.New(),
		now:       time.Now,
		findLast:  -1,
	}
	for _, pattern := range cfg.TextContentTypes {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid text content type pattern %q: %w", pattern, err)
		}
		b.textTypes = append(b.textTypes, g)
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.client == nil {
		b.client = &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: NewCompressionTransport(nil),
		}
	}

	if err := b.setAddress(context.Background(), StartPage, 0); err != nil {
		return nil, err
	}
	return b, nil
}

// Visit navigates to target and returns the first viewport. target may be an
// http(s) URL, a file:// URI, about:blank, "google: <query>" or a URL
// relative to the current page. filterYear applies to searches only; 0
// disables it. Navigation resets the viewport cursor and the find state.
//
// Fetch problems (HTTP errors, unreadable files) become page content; only
// search failures are returned as errors.
func (b *TextBrowser) Visit(ctx context.Context, target string, filterYear int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.setAddress(ctx, target, filterYear); err != nil {
		return "", err
	}
	return b.viewport(), nil
}

func (b *TextBrowser) setAddress(ctx context.Context, address string, filterYear int) error {
	b.history = append(b.history, visit{address: address, at: b.now()})
	b.title = ""
	browserLog.Debugf("visit %s", address)

	switch {
	case address == StartPage:
		b.setContent("")
	case strings.HasPrefix(address, SearchPrefix):
		if err := b.searchPage(ctx, strings.TrimSpace(address[len(SearchPrefix):]), filterYear); err != nil {
			return err
		}
	default:
		if !hasFetchScheme(address) && len(b.history) > 1 {
			address = resolveAgainst(b.history[len(b.history)-2].address, address)
			b.history[len(b.history)-1].address = address
		}
		if err := b.apply(ctx, b.fetch(ctx, address)); err != nil {
			return err
		}
	}

	b.current = 0
	b.clearFind()
	return nil
}

func hasFetchScheme(address string) bool {
	return strings.HasPrefix(address, "http:") || strings.HasPrefix(address, "https:") || strings.HasPrefix(address, "file:")
}

// resolveAgainst joins a relative reference with the previous address. Bases
// without a hierarchical scheme (about:, google:) leave the reference as is.
func resolveAgainst(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil || !hasFetchScheme(base) {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func (b *TextBrowser) setContent(content string) {
	b.content = content
	if strings.HasPrefix(b.address(), SearchPrefix) {
		b.pages = []Range{{0, len(content)}}
	} else {
		b.pages = Partition(content, b.cfg.ViewportSize)
	}
	if b.current >= len(b.pages) {
		b.current = len(b.pages) - 1
	}
}

func (b *TextBrowser) address() string {
	return b.history[len(b.history)-1].address
}

func (b *TextBrowser) viewport() string {
	r := b.pages[b.current]
	return b.content[r.Start:r.End]
}

// PageDown moves one viewport forward, stopping at the last one.
func (b *TextBrowser) PageDown() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current < len(b.pages)-1 {
		b.current++
	}
	return b.viewport()
}

// PageUp moves one viewport back, stopping at the first one.
func (b *TextBrowser) PageUp() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current > 0 {
		b.current--
	}
	return b.viewport()
}

// Address returns the current address.
func (b *TextBrowser) Address() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.address()
}

// Title returns the current page title, empty when the page has none.
func (b *TextBrowser) Title() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title
}

// Viewport returns the text of the current viewport.
func (b *TextBrowser) Viewport() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewport()
}

// PageContent returns the full text of the current page.
func (b *TextBrowser) PageContent() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// Position returns the zero-based current viewport and the viewport count.
func (b *TextBrowser) Position() (current, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, len(b.pages)
}

// HistoryLen returns the number of recorded visits.
func (b *TextBrowser) HistoryLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.history)
}

// State returns the page header (address, title, earlier visit, position)
// and the current viewport text.
func (b *TextBrowser) State() (header, viewport string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	address := b.address()
	fmt.Fprintf(&sb, "Address: %s\n", address)
	if b.title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", b.title)
	}
	for i := len(b.history) - 2; i >= 0; i-- {
		if b.history[i].address == address {
			sb.WriteString(b.visitedAgo(b.history[i].at))
			break
		}
	}
	fmt.Fprintf(&sb, "Viewport position: Showing page %d of %d.\n", b.current+1, len(b.pages))
	return sb.String(), b.viewport()
}

func (b *TextBrowser) visitedAgo(at time.Time) string {
	seconds := int64(math.Round(b.now().Sub(at).Seconds()))
	return fmt.Sprintf("You previously visited this page %d seconds ago.\n", seconds)
}
