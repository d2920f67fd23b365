package web

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/priceiq/pkg/agent/tools"
	"github.com/entrhq/priceiq/pkg/browser"
	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/entrhq/priceiq/pkg/render"
	"github.com/entrhq/priceiq/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type stubRenderer struct {
	data []byte
	err  error
}

func (r *stubRenderer) Render(context.Context, render.Request) ([]byte, error) {
	return r.data, r.err
}

// blockingVision answers once release is closed, or fails with the context
// error when cancelled first.
type blockingVision struct {
	release chan struct{}
	text    string
	err     error

	mu  sync.Mutex
	req *llm.Request
}

func (v *blockingVision) Respond(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	v.mu.Lock()
	v.req = req
	v.mu.Unlock()

	select {
	case <-v.release:
		if v.err != nil {
			return nil, v.err
		}
		return &llm.Response{OutputText: v.text}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.PollInterval = 2 * time.Millisecond
	cfg.Timeout = time.Minute
	return cfg
}

type recorder struct {
	mu     sync.Mutex
	events []*types.ToolEvent
	onNext func(n int)
}

func (r *recorder) emit(ev *types.ToolEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	n := len(r.events)
	r.mu.Unlock()
	if r.onNext != nil {
		r.onNext(n)
	}
}

func TestScreenshotAnalysisCompletes(t *testing.T) {
	defer goleak.VerifyNone(t)

	sess := openSession(t, browser.WithRenderer(&stubRenderer{data: pngBytes(t)}))
	vision := &blockingVision{release: make(chan struct{}), text: "Price: 1,29 EUR"}
	var once sync.Once
	rec := &recorder{onNext: func(n int) {
		if n == 3 {
			once.Do(func() { close(vision.release) })
		}
	}}

	res, err := NewScreenshotTool(fastConfig(), vision).Execute(context.Background(), tools.Call{
		Session:   sess,
		Arguments: args(t, map[string]string{"url": "https://shop.example/milk", "query": "what is the price?"}),
		Emit:      rec.emit,
	})
	require.NoError(t, err)
	require.False(t, res.Ended)
	assert.Equal(t, "Price: 1,29 EUR", res.Display)
	assert.Equal(t, "Screenshot model analysis completed:\n Price: 1,29 EUR", res.Raw)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.GreaterOrEqual(t, len(rec.events), 3)
	for i, want := range []int{10, 20, 30} {
		ev := rec.events[i]
		assert.Equal(t, types.EventTypeToolProgress, ev.Type)
		assert.Equal(t, "screenshot", ev.ToolName)
		require.NotNil(t, ev.Percentage)
		assert.Equal(t, want, *ev.Percentage)
		assert.True(t, strings.HasPrefix(ev.Progress, "◈ vision model working on the screenshot... ◈ ("))
	}

	vision.mu.Lock()
	defer vision.mu.Unlock()
	require.Len(t, vision.req.Input, 1)
	assert.Equal(t, "what is the price?", vision.req.Input[0].Text)
	assert.True(t, strings.HasPrefix(vision.req.Input[0].ImageURL, "data:image/jpeg;base64,"))
	assert.Equal(t, "gpt-4.1", vision.req.Model)
}

func TestScreenshotStoppedSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	sess := openSession(t, browser.WithRenderer(&stubRenderer{data: pngBytes(t)}))
	vision := &blockingVision{release: make(chan struct{})}
	rec := &recorder{onNext: func(n int) {
		if n == 2 {
			sess.Flag.Stop()
		}
	}}

	res, err := NewScreenshotTool(fastConfig(), vision).Execute(context.Background(), tools.Call{
		Session:   sess,
		Arguments: args(t, map[string]string{"url": "https://shop.example", "query": "price"}),
		Emit:      rec.emit,
	})
	require.NoError(t, err)
	assert.True(t, res.Ended)
}

func TestScreenshotTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	sess := openSession(t, browser.WithRenderer(&stubRenderer{data: pngBytes(t)}))
	cfg := fastConfig()
	cfg.Timeout = 20 * time.Millisecond

	res, err := NewScreenshotTool(cfg, &blockingVision{release: make(chan struct{})}).Execute(context.Background(), tools.Call{
		Session:   sess,
		Arguments: args(t, map[string]string{"url": "https://shop.example", "query": "price"}),
	})
	require.NoError(t, err)
	assert.False(t, res.Ended)
	assert.Equal(t, "Screenshot model timed out after 3 minutes", res.Display)
}

func TestScreenshotVisionError(t *testing.T) {
	defer goleak.VerifyNone(t)

	sess := openSession(t, browser.WithRenderer(&stubRenderer{data: pngBytes(t)}))
	release := make(chan struct{})
	close(release)
	vision := &blockingVision{release: release, err: errors.New("model overloaded")}

	res, err := NewScreenshotTool(fastConfig(), vision).Execute(context.Background(), tools.Call{
		Session:   sess,
		Arguments: args(t, map[string]string{"url": "https://shop.example", "query": "price"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Error processing image: model overloaded", res.Display)
}

func TestScreenshotRenderProblems(t *testing.T) {
	vision := &blockingVision{release: make(chan struct{})}

	t.Run("transport failure", func(t *testing.T) {
		failure := &render.Failure{Kind: "Timeout", Err: errors.New("deadline exceeded")}
		sess := openSession(t, browser.WithRenderer(&stubRenderer{err: failure}))
		res, err := NewScreenshotTool(fastConfig(), vision).Execute(context.Background(), tools.Call{Session: sess})
		require.NoError(t, err)
		assert.Equal(t, "Screenshot failed (Timeout): deadline exceeded", res.Display)
	})

	t.Run("undecodable image", func(t *testing.T) {
		sess := openSession(t, browser.WithRenderer(&stubRenderer{data: []byte("not an image")}))
		res, err := NewScreenshotTool(fastConfig(), vision).Execute(context.Background(), tools.Call{Session: sess})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.Display, "Error processing image: "))
	})

	t.Run("missing credential", func(t *testing.T) {
		sess := openSession(t)
		_, err := NewScreenshotTool(fastConfig(), vision).Execute(context.Background(), tools.Call{Session: sess})
		assert.ErrorIs(t, err, render.ErrMissingCredential)
	})
}

func TestNextPercentage(t *testing.T) {
	got := []int{10}
	for range 10 {
		got = append(got, nextPercentage(got[len(got)-1]))
	}
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 50, 60}, got)
}
