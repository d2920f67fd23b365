package render

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserlessMissingToken(t *testing.T) {
	_, err := NewBrowserless("").Render(context.Background(), Request{URL: "https://a.example"})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestBrowserlessRender(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/screenshot", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		assert.Equal(t, "residential", r.URL.Query().Get("proxy"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		_, _ = w.Write([]byte("\x89PNG fake"))
	}))
	defer server.Close()

	data, err := NewBrowserless("tok", WithEndpoint(server.URL)).Render(context.Background(), Request{
		URL:       "https://shop.example/milk",
		FullPage:  true,
		ImageType: "png",
	})
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(data))

	assert.Equal(t, "https://shop.example/milk", payload["url"])
	assert.Equal(t, true, payload["bestAttempt"])
	assert.Equal(t, float64(3000), payload["waitForTimeout"])
	assert.Equal(t, "networkidle2", payload["gotoOptions"].(map[string]interface{})["waitUntil"])
	opts := payload["options"].(map[string]interface{})
	assert.Equal(t, true, opts["fullPage"])
	assert.Equal(t, "png", opts["type"])
}

func TestBrowserlessHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewBrowserless("tok", WithEndpoint(server.URL)).Render(context.Background(), Request{URL: "https://a.example"})

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "HTTPError", failure.Kind)
	assert.Contains(t, failure.Error(), "429")
}

func TestBrowserlessTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	r := NewBrowserless("tok", WithEndpoint(server.URL), WithTimeouts(time.Second, 20*time.Millisecond))
	_, err := r.Render(context.Background(), Request{URL: "https://a.example"})

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "Timeout", failure.Kind)
}

func TestWaitUntilState(t *testing.T) {
	assert.Equal(t, playwright.WaitUntilState("networkidle"), waitUntilState("networkidle2"))
	assert.Equal(t, playwright.WaitUntilState("domcontentloaded"), waitUntilState("domcontentloaded"))
	assert.Equal(t, playwright.WaitUntilState("load"), waitUntilState(""))
	assert.Equal(t, playwright.ScreenshotTypeJpeg, screenshotType("jpeg"))
	assert.Equal(t, playwright.ScreenshotTypePng, screenshotType("webp"))
}
