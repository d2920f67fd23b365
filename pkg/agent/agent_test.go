package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/entrhq/priceiq/pkg/agent/tools"
	"github.com/entrhq/priceiq/pkg/browser"
	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/entrhq/priceiq/pkg/session"
	"github.com/entrhq/priceiq/pkg/types"
	"github.com/stretchr/testify/require"
)

// scriptedProvider answers each call with the next step of a script.
type scriptedProvider struct {
	mu    sync.Mutex
	steps []func(req *llm.Request) (*llm.Response, error)
	calls []*llm.Request
}

func (p *scriptedProvider) Respond(_ context.Context, req *llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if len(p.steps) == 0 {
		return nil, errors.New("script exhausted")
	}
	step := p.steps[0]
	p.steps = p.steps[1:]
	return step(req)
}

func (p *scriptedProvider) requests() []*llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*llm.Request(nil), p.calls...)
}

func reply(items ...llm.Item) func(*llm.Request) (*llm.Response, error) {
	return func(*llm.Request) (*llm.Response, error) {
		resp := &llm.Response{Output: items}
		for _, it := range items {
			if it.Type == llm.ItemMessage {
				resp.OutputText += it.Text
			}
		}
		return resp, nil
	}
}

func replyText(text string) func(*llm.Request) (*llm.Response, error) {
	return func(*llm.Request) (*llm.Response, error) {
		return &llm.Response{OutputText: text}, nil
	}
}

// fakeTool returns a fixed result and records the arguments it saw.
type fakeTool struct {
	id     tools.ID
	result *tools.Result
	err    error

	mu    sync.Mutex
	calls []tools.Call
}

func (f *fakeTool) ID() tools.ID           { return f.id }
func (f *fakeTool) Description() string    { return "fake " + f.id.String() }
func (f *fakeTool) Schema() map[string]any { return tools.SchemaFor(struct{}{}) }

func (f *fakeTool) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTool) lastCall() tools.Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeTool) Execute(_ context.Context, call tools.Call) (*tools.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if call.Emit != nil {
		call.Emit(types.NewProgressEvent(f.id.String(), "working"))
	}
	return f.result, f.err
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	m := session.NewManager(t.TempDir(), browser.DefaultConfig(""))
	sess, err := m.Open("tester")
	require.NoError(t, err)
	return sess
}

func collect(ch <-chan *types.ToolEvent) []*types.ToolEvent {
	var events []*types.ToolEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}
