package browser

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressed(t *testing.T, encoding, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "br":
		w = brotli.NewWriter(&buf)
	case "deflate":
		w = zlib.NewWriter(&buf)
	default:
		t.Fatalf("unknown encoding %s", encoding)
	}
	_, err := w.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestCompressionTransport(t *testing.T) {
	for _, encoding := range []string{"gzip", "br", "deflate"} {
		t.Run(encoding, func(t *testing.T) {
			body := compressed(t, encoding, "Milch 1,29 EUR")
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "br, gzip, deflate", r.Header.Get("Accept-Encoding"))
				w.Header().Set("Content-Encoding", encoding)
				w.Write(body)
			}))
			defer srv.Close()

			client := &http.Client{Transport: NewCompressionTransport(nil)}
			resp, err := client.Get(srv.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, "Milch 1,29 EUR", string(data))
			assert.Empty(t, resp.Header.Get("Content-Encoding"))
		})
	}
}

func TestCompressionTransportPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain"))
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewCompressionTransport(nil)}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(data))
}

func TestCompressionTransportUnsupportedEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "zstd")
		w.Write([]byte("????"))
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewCompressionTransport(nil)}
	_, err := client.Get(srv.URL)
	assert.Error(t, err)
}
