package browser

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// CompressionTransport advertises br, gzip and deflate and decodes the
// response body according to Content-Encoding. Setting Accept-Encoding
// ourselves disables net/http's built-in gzip handling, so every encoding
// is decoded here.
type CompressionTransport struct {
	next http.RoundTripper
}

// NewCompressionTransport wraps next, or http.DefaultTransport when nil.
func NewCompressionTransport(next http.RoundTripper) *CompressionTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &CompressionTransport{next: next}
}

// RoundTrip implements http.RoundTripper.
func (t *CompressionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", "br, gzip, deflate")
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := decodeBody(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

type decodedBody struct {
	io.Reader
	closers []io.Closer
}

func (d *decodedBody) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// decodeBody unwraps encodings in reverse order of application.
func decodeBody(resp *http.Response) error {
	encodings := resp.Header.Values("Content-Encoding")
	if len(encodings) == 0 || resp.Body == nil {
		return nil
	}

	body := &decodedBody{Reader: resp.Body, closers: []io.Closer{resp.Body}}
	for i := len(encodings) - 1; i >= 0; i-- {
		switch enc := strings.ToLower(strings.TrimSpace(encodings[i])); enc {
		case "", "identity":
		case "br":
			body.Reader = brotli.NewReader(body.Reader)
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(body.Reader)
			if err != nil {
				return fmt.Errorf("gzip response: %w", err)
			}
			body.Reader = zr
			body.closers = append([]io.Closer{zr}, body.closers...)
		case "deflate":
			dr, err := deflateReader(body.Reader)
			if err != nil {
				return fmt.Errorf("deflate response: %w", err)
			}
			body.Reader = dr
			body.closers = append([]io.Closer{dr}, body.closers...)
		default:
			return fmt.Errorf("unsupported Content-Encoding %q", enc)
		}
	}

	resp.Body = body
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

// deflateReader accepts both zlib-wrapped and raw deflate streams; servers
// disagree on which one "deflate" means.
func deflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if err == nil && header[0]&0x0f == 8 && (uint16(header[0])<<8|uint16(header[1]))%31 == 0 {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}
