// Package render produces full-page screenshots of web pages, either through
// the hosted browserless API or a local headless Chromium.
package render

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when a hosted backend has no token.
var ErrMissingCredential = errors.New("browserless token not set; cannot take screenshot")

// Request describes one screenshot.
type Request struct {
	URL       string
	FullPage  bool
	ImageType string // png, jpeg or webp
}

// Renderer takes screenshots.
type Renderer interface {
	Render(ctx context.Context, req Request) ([]byte, error)
}

// Failure is a transport-level screenshot failure. Callers report it as text
// instead of aborting the tool call.
type Failure struct {
	Kind string // Timeout, HTTPError, ConnectionError
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
