package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/entrhq/priceiq/pkg/agent/tools"
	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/entrhq/priceiq/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	events []*types.ToolEvent
}

func (l *eventLog) emit(ev *types.ToolEvent) {
	l.events = append(l.events, ev)
}

func (l *eventLog) progress() []string {
	var out []string
	for _, ev := range l.events {
		out = append(out, ev.Progress)
	}
	return out
}

func TestToolboxSpecs(t *testing.T) {
	tb := NewToolbox([]tools.Tool{
		&fakeTool{id: tools.VisitURL},
		&fakeTool{id: tools.WebSearch},
		&fakeTool{id: tools.VisitURL},
	})

	specs := tb.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "visit_url", specs[0].Name)
	assert.Equal(t, "web_search", specs[1].Name)
	assert.Equal(t, "object", specs[1].Parameters["type"])
}

func TestDispatchUnknownTool(t *testing.T) {
	tb := NewToolbox([]tools.Tool{&fakeTool{id: tools.WebSearch}})
	log := &eventLog{}

	out, ended := tb.Dispatch(context.Background(), newSession(t), llm.NewFunctionCall("c1", "rm_rf", "{}"), log.emit)
	assert.False(t, ended)
	assert.Equal(t, "Unknown tool rm_rf", out)
	assert.Empty(t, log.events)

	out, _ = tb.Dispatch(context.Background(), newSession(t), llm.NewFunctionCall("c2", "page_up", "{}"), log.emit)
	assert.Equal(t, "Unknown tool page_up", out, "known name without a registered tool")
}

func TestDispatchSuccess(t *testing.T) {
	tool := &fakeTool{id: tools.VisitURL, result: tools.Done(tools.Output{Display: "Address: https://shop.example", TokenBudget: 100})}
	tb := NewToolbox([]tools.Tool{tool}, WithTokenizer(nil))
	log := &eventLog{}

	out, ended := tb.Dispatch(context.Background(), newSession(t), llm.NewFunctionCall("c1", "visit_url", `{"url":"https://shop.example"}`), log.emit)
	assert.False(t, ended)
	assert.Equal(t, "Address: https://shop.example", out)
	assert.Equal(t, []string{"◈ Page Visit Complete ◈\n▸ Address: https://shop.example"}, log.progress())
	assert.JSONEq(t, `{"url":"https://shop.example"}`, string(tool.lastCall().Arguments))
	assert.Nil(t, tool.lastCall().Emit, "synchronous tools do not stream")
}

func TestDispatchTruncatesToBudget(t *testing.T) {
	long := strings.Repeat("abcdefghij", 20)
	tool := &fakeTool{id: tools.PageDown, result: tools.Done(tools.Output{Display: long, TokenBudget: 2})}
	tb := NewToolbox([]tools.Tool{tool}, WithTokenizer(nil))
	log := &eventLog{}

	out, _ := tb.Dispatch(context.Background(), newSession(t), llm.NewFunctionCall("c1", "page_down", ""), log.emit)
	assert.Equal(t, "abcdefgh", out)
	require.Len(t, log.events, 1)
	assert.Equal(t, "◈ Page Down Complete ◈\n▸ "+long[:100]+"...", log.events[0].Progress)
}

func TestDispatchInvalidArguments(t *testing.T) {
	for _, raw := range []string{`{"search_string": "price`, `["price"]`} {
		t.Run(raw, func(t *testing.T) {
			tool := &fakeTool{id: tools.FindOnPage, result: tools.Done(tools.Output{Display: "ok"})}
			tb := NewToolbox([]tools.Tool{tool})
			log := &eventLog{}

			out, ended := tb.Dispatch(context.Background(), newSession(t), llm.NewFunctionCall("c1", "find_on_page", raw), log.emit)
			assert.False(t, ended)
			assert.True(t, strings.HasPrefix(out, "Error executing find_on_page: invalid arguments: "), out)
			assert.Equal(t, 0, tool.callCount(), "tool must not run")
			require.Len(t, log.events, 1)
			assert.True(t, strings.HasPrefix(log.events[0].Progress, "◈ Tool Error ◈\n▸ invalid arguments: "))
		})
	}
}

func TestDispatchToolError(t *testing.T) {
	tool := &fakeTool{id: tools.WebSearch, err: errors.New("missing SerpAPI key")}
	tb := NewToolbox([]tools.Tool{tool})
	log := &eventLog{}

	out, ended := tb.Dispatch(context.Background(), newSession(t), llm.NewFunctionCall("c1", "web_search", `{"query":"milk"}`), log.emit)
	assert.False(t, ended)
	assert.Equal(t, "Error executing web_search: missing SerpAPI key", out)
	assert.Equal(t, []string{"◈ Tool Error ◈\n▸ missing SerpAPI key"}, log.progress())
}

func TestDispatchStreamingTool(t *testing.T) {
	tool := &fakeTool{id: tools.Screenshot, result: tools.Done(tools.Output{Display: "A red price tag: 1,29 EUR"})}
	tb := NewToolbox([]tools.Tool{tool})
	log := &eventLog{}

	out, ended := tb.Dispatch(context.Background(), newSession(t), llm.NewFunctionCall("c1", "screenshot", `{}`), log.emit)
	assert.False(t, ended)
	assert.Equal(t, "A red price tag: 1,29 EUR", out)
	assert.Equal(t, []string{"working", "◈ Screenshot Analysis Complete ◈\n▸ A red price tag: 1,29 EUR"}, log.progress())
}

func TestDispatchEnded(t *testing.T) {
	tool := &fakeTool{id: tools.Screenshot, result: tools.EndOfMessage()}
	tb := NewToolbox([]tools.Tool{tool})
	log := &eventLog{}

	out, ended := tb.Dispatch(context.Background(), newSession(t), llm.NewFunctionCall("c1", "screenshot", `{}`), log.emit)
	assert.True(t, ended)
	assert.Empty(t, out)
	assert.Equal(t, []string{"working"}, log.progress())
}
