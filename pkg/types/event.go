package types

import "unicode/utf8"

// ToolEventType defines the kind of event streamed back to the caller of a research run.
type ToolEventType string

const (
	EventTypeToolProgress ToolEventType = "tool_progress" // EventTypeToolProgress carries a human-readable progress message.
	EventTypeToolResult   ToolEventType = "tool_result"   // EventTypeToolResult carries the result of a tool or of the whole run.
	EventTypeEndOfMessage ToolEventType = "endOfMessage"  // EventTypeEndOfMessage signals that the run stopped because the session was cancelled.
)

// ToolEvent is a single item of the event stream produced by a research run.
// Field names on the wire match what the consuming UI expects.
type ToolEvent struct {
	// Type indicates the kind of event.
	Type ToolEventType `json:"type"`

	// ToolName is the tool (or pipeline) that produced the event.
	ToolName string `json:"toolName,omitempty"`

	// Progress is the progress message for tool_progress events.
	Progress string `json:"progress,omitempty"`

	// Percentage is an optional completion hint in the range 0-100.
	Percentage *int `json:"percentage,omitempty"`

	// Result is the textual result for tool_result events.
	Result string `json:"result,omitempty"`

	// Content is the structured payload of a final tool_result (results JSON).
	Content string `json:"content,omitempty"`

	// StreamID ties the event to the caller's stream.
	StreamID string `json:"stream_id,omitempty"`
}

// NewProgressEvent creates a tool_progress event without a percentage.
func NewProgressEvent(toolName, progress string) *ToolEvent {
	return &ToolEvent{
		Type:     EventTypeToolProgress,
		ToolName: toolName,
		Progress: progress,
	}
}

// NewPercentProgressEvent creates a tool_progress event carrying a percentage.
func NewPercentProgressEvent(toolName, progress string, percentage int) *ToolEvent {
	ev := NewProgressEvent(toolName, progress)
	ev.Percentage = &percentage
	return ev
}

// NewResultEvent creates a tool_result event.
func NewResultEvent(toolName, result string) *ToolEvent {
	return &ToolEvent{
		Type:     EventTypeToolResult,
		ToolName: toolName,
		Result:   result,
	}
}

// NewFinalResultEvent creates the tool_result event that closes a completed run.
func NewFinalResultEvent(toolName, result, content string) *ToolEvent {
	ev := NewResultEvent(toolName, result)
	ev.Content = content
	return ev
}

// NewEndOfMessageEvent creates an endOfMessage event.
func NewEndOfMessageEvent() *ToolEvent {
	return &ToolEvent{Type: EventTypeEndOfMessage}
}

// IsTerminal reports whether the event ends the stream of the tool that emitted it.
func (e *ToolEvent) IsTerminal() bool {
	return e.Type == EventTypeToolResult || e.Type == EventTypeEndOfMessage
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
