// Package search queries a web search API and returns organic results.
package search

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredential is returned when no search API key is configured.
	ErrMissingCredential = errors.New("missing SerpAPI key")

	// ErrNoResultsKey is returned when the response carries no organic results list at all.
	ErrNoResultsKey = errors.New("no organic results in response")
)

// Query is a single search request.
type Query struct {
	Text string

	// FilterYear restricts results to one calendar year; 0 means no filter.
	FilterYear int
}

// Result is one organic search hit. Date, Source and Snippet may be empty.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Date    string `json:"date,omitempty"`
	Source  string `json:"source,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Provider runs web searches.
type Provider interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}
