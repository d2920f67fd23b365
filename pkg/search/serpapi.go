package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/entrhq/priceiq/pkg/logging"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the SerpAPI JSON search endpoint.
const DefaultEndpoint = "https://serpapi.com/search.json"

var searchLog = logging.MustLogger("search")

// SerpAPI queries Google through serpapi.com.
type SerpAPI struct {
	apiKey   string
	endpoint string
	num      int
	client   *http.Client
	limiter  *rate.Limiter
}

// Option configures a SerpAPI client.
type Option func(*SerpAPI)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(s *SerpAPI) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithNumResults sets how many results are requested.
func WithNumResults(n int) Option {
	return func(s *SerpAPI) {
		if n > 0 {
			s.num = n
		}
	}
}

// WithRateLimit paces requests to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *SerpAPI) {
		if perSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SerpAPI) {
		s.client = c
	}
}

// NewSerpAPI creates a client. A missing key is reported by Search, not here,
// so a browser can be built without search support.
func NewSerpAPI(apiKey string, opts ...Option) *SerpAPI {
	s := &SerpAPI{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		num:      10,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Provider = (*SerpAPI)(nil)

type serpResponse struct {
	OrganicResults *[]Result `json:"organic_results"`
	Error          string    `json:"error"`
}

// Search runs a Google query. When the response has no organic_results key
// the error wraps ErrNoResultsKey; an empty list is returned as no results.
func (s *SerpAPI) Search(ctx context.Context, q Query) ([]Result, error) {
	if s.apiKey == "" {
		return nil, ErrMissingCredential
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", q.Text)
	params.Set("api_key", s.apiKey)
	params.Set("num", strconv.Itoa(s.num))
	if q.FilterYear != 0 {
		params.Set("tbs", fmt.Sprintf("cdr:1,cd_min:01/01/%d,cd_max:12/31/%d", q.FilterYear, q.FilterYear))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	searchLog.Debugf("search q=%q year=%d", q.Text, q.FilterYear)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var payload serpResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode search response (status %d): %w", resp.StatusCode, err)
	}
	if payload.OrganicResults == nil {
		if payload.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoResultsKey, payload.Error)
		}
		return nil, ErrNoResultsKey
	}
	return *payload.OrganicResults, nil
}
