package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/entrhq/priceiq/pkg/agent/tools"
	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/entrhq/priceiq/pkg/llm/tokenizer"
	"github.com/entrhq/priceiq/pkg/session"
	"github.com/entrhq/priceiq/pkg/types"
)

const previewLength = 100

// Toolbox holds the tools offered to the model and turns function calls
// into conversation text. Tool failures never escape Dispatch; they become
// an error message the model can read.
type Toolbox struct {
	tools     map[tools.ID]tools.Tool
	order     []tools.ID
	tokenizer *tokenizer.Tokenizer
}

// ToolboxOption configures a Toolbox.
type ToolboxOption func(*Toolbox)

// WithTokenizer sets the tokenizer used to cut tool output to its budget.
func WithTokenizer(tok *tokenizer.Tokenizer) ToolboxOption {
	return func(tb *Toolbox) {
		tb.tokenizer = tok
	}
}

// NewToolbox registers the given tools. A later tool with the same ID
// replaces an earlier one.
func NewToolbox(toolset []tools.Tool, opts ...ToolboxOption) *Toolbox {
	tb := &Toolbox{
		tools:     make(map[tools.ID]tools.Tool, len(toolset)),
		tokenizer: tokenizer.New(),
	}
	for _, t := range toolset {
		if _, exists := tb.tools[t.ID()]; !exists {
			tb.order = append(tb.order, t.ID())
		}
		tb.tools[t.ID()] = t
	}
	for _, opt := range opts {
		opt(tb)
	}
	return tb
}

// Specs returns the function schemas in registration order.
func (tb *Toolbox) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(tb.order))
	for _, id := range tb.order {
		t := tb.tools[id]
		specs = append(specs, llm.ToolSpec{
			Name:        id.String(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		})
	}
	return specs
}

// Dispatch runs one function call for the session and returns the text to
// record as its output. ended is true when the session was stopped while
// the tool ran; the output is then empty.
func (tb *Toolbox) Dispatch(ctx context.Context, sess *session.Session, call llm.Item, emit tools.Emitter) (output string, ended bool) {
	id := tools.ParseID(call.Name)

	var forward tools.Emitter
	switch id {
	case tools.Screenshot:
		forward = emit
	case tools.WebSearch, tools.VisitURL, tools.FindOnPage, tools.FindNext, tools.PageDown, tools.PageUp:
	case tools.Unknown:
		return fmt.Sprintf("Unknown tool %s", call.Name), false
	default:
		return fmt.Sprintf("Unknown tool %s", call.Name), false
	}

	tool, ok := tb.tools[id]
	if !ok {
		return fmt.Sprintf("Unknown tool %s", call.Name), false
	}

	args := json.RawMessage(call.Arguments)
	if err := validateArguments(args); err != nil {
		agentLog.Warnf("invalid arguments for %s: %q", call.Name, call.Arguments)
		emit(types.NewProgressEvent(call.Name, "◈ Tool Error ◈\n▸ "+types.Truncate(err.Error(), previewLength)))
		return fmt.Sprintf("Error executing %s: %v", call.Name, err), false
	}

	agentLog.Debugf("dispatch %s %s", call.Name, call.Arguments)
	res, err := tool.Execute(ctx, tools.Call{Session: sess, Arguments: args, Emit: forward})
	if err != nil {
		agentLog.Warnf("tool %s failed: %v", call.Name, err)
		emit(types.NewProgressEvent(call.Name, "◈ Tool Error ◈\n▸ "+types.Truncate(err.Error(), previewLength)))
		return fmt.Sprintf("Error executing %s: %v", call.Name, err), false
	}
	if res.Ended {
		return "", true
	}

	emit(types.NewProgressEvent(call.Name, fmt.Sprintf("◈ %s Complete ◈\n▸ %s", id.Label(), preview(res.Display))))
	return tb.tokenizer.Truncate(res.Display, res.TokenBudget), false
}

// validateArguments accepts empty arguments or a JSON object.
func validateArguments(args json.RawMessage) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(args, &fields); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func preview(s string) string {
	if utf8.RuneCountInString(s) > previewLength {
		return types.Truncate(s, previewLength) + "..."
	}
	return s
}
