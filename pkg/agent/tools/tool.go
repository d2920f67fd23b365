// Package tools defines the toolbox contract shared by the orchestration
// loop and the tool implementations.
package tools

import (
	"context"
	"encoding/json"

	"github.com/entrhq/priceiq/pkg/session"
	"github.com/entrhq/priceiq/pkg/types"
)

// ID identifies one of the fixed toolbox operations.
type ID int

const (
	// Unknown is any name the toolbox does not implement.
	Unknown ID = iota
	WebSearch
	VisitURL
	FindOnPage
	FindNext
	PageDown
	PageUp
	Screenshot
)

var names = map[ID]string{
	WebSearch:  "web_search",
	VisitURL:   "visit_url",
	FindOnPage: "find_on_page",
	FindNext:   "find_next",
	PageDown:   "page_down",
	PageUp:     "page_up",
	Screenshot: "screenshot",
}

var labels = map[ID]string{
	WebSearch:  "Web Search",
	VisitURL:   "Page Visit",
	FindOnPage: "Content Search",
	FindNext:   "Search Continue",
	PageDown:   "Page Down",
	PageUp:     "Page Up",
	Screenshot: "Screenshot Analysis",
}

// All lists the toolbox operations in the order they are offered to the model.
func All() []ID {
	return []ID{WebSearch, VisitURL, FindOnPage, FindNext, PageDown, PageUp, Screenshot}
}

// ParseID maps a function-call name to its ID, or Unknown.
func ParseID(name string) ID {
	for id, n := range names {
		if n == name {
			return id
		}
	}
	return Unknown
}

// String returns the function name the model calls.
func (id ID) String() string {
	if n, ok := names[id]; ok {
		return n
	}
	return "unknown"
}

// Label is the human-readable name used in progress messages.
func (id ID) Label() string {
	return labels[id]
}

// Output is what a tool call produces. Display is appended to the
// conversation; TokenBudget caps how much of it is kept.
type Output struct {
	Display     string
	Raw         string
	URL         string
	TokenBudget int
}

// Emitter forwards progress events while a tool runs.
type Emitter func(*types.ToolEvent)

// Call is one invocation of a tool on behalf of a session.
type Call struct {
	Session   *session.Session
	Arguments json.RawMessage
	Emit      Emitter
}

// Decode unmarshals the call arguments into v. Empty arguments decode as {}.
func (c Call) Decode(v any) error {
	if len(c.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(c.Arguments, v)
}

// Tool is a toolbox operation the model can call.
type Tool interface {
	// ID returns the operation this tool implements.
	ID() ID

	// Description is shown to the model alongside the schema.
	Description() string

	// Schema returns the JSON schema of the tool's arguments.
	Schema() map[string]any

	// Execute runs the tool. Streaming tools report progress through
	// call.Emit before returning.
	Execute(ctx context.Context, call Call) (*Result, error)
}

// Result is the terminal outcome of a tool call. Ended means the session was
// stopped while the tool ran and no output was produced.
type Result struct {
	Output
	Ended bool
}

// Done wraps an Output as a completed Result.
func Done(out Output) *Result {
	return &Result{Output: out}
}

// EndOfMessage is the Result of a tool interrupted by a session stop.
func EndOfMessage() *Result {
	return &Result{Ended: true}
}
