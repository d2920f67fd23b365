package llm

import (
	"encoding/json"
	"fmt"
)

// ItemType identifies a conversation item.
type ItemType string

const (
	ItemMessage            ItemType = "message"              // ItemMessage is a role-tagged text message.
	ItemFunctionCall       ItemType = "function_call"        // ItemFunctionCall is a tool call emitted by the model.
	ItemFunctionCallOutput ItemType = "function_call_output" // ItemFunctionCallOutput is the result of a tool call.
)

// Role is the author of a message item.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Item is one entry of the conversation sent to, or returned by, the model.
// Which fields are meaningful depends on Type.
type Item struct {
	Type ItemType

	// message
	Role     Role
	Text     string
	ImageURL string // optional image part, sent as input_image

	// function_call and function_call_output
	CallID    string
	Name      string
	Arguments string
	Output    string
}

// NewDeveloperMessage creates a developer (system) message.
func NewDeveloperMessage(text string) Item {
	return Item{Type: ItemMessage, Role: RoleDeveloper, Text: text}
}

// NewUserMessage creates a user message.
func NewUserMessage(text string) Item {
	return Item{Type: ItemMessage, Role: RoleUser, Text: text}
}

// NewImageMessage creates a user message with a text part and an image part.
func NewImageMessage(text, imageURL string) Item {
	return Item{Type: ItemMessage, Role: RoleUser, Text: text, ImageURL: imageURL}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(text string) Item {
	return Item{Type: ItemMessage, Role: RoleAssistant, Text: text}
}

// NewFunctionCall creates a function_call item.
func NewFunctionCall(callID, name, arguments string) Item {
	return Item{Type: ItemFunctionCall, CallID: callID, Name: name, Arguments: arguments}
}

// NewFunctionCallOutput creates the output item paired with a function_call.
func NewFunctionCallOutput(callID, output string) Item {
	return Item{Type: ItemFunctionCallOutput, CallID: callID, Output: output}
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// MarshalJSON encodes the item in Responses API input form.
func (it Item) MarshalJSON() ([]byte, error) {
	switch it.Type {
	case ItemMessage:
		if it.ImageURL == "" {
			return json.Marshal(map[string]interface{}{
				"type":    "message",
				"role":    it.Role,
				"content": it.Text,
			})
		}
		return json.Marshal(map[string]interface{}{
			"type": "message",
			"role": it.Role,
			"content": []contentPart{
				{Type: "input_text", Text: it.Text},
				{Type: "input_image", ImageURL: it.ImageURL},
			},
		})
	case ItemFunctionCall:
		return json.Marshal(map[string]interface{}{
			"type":      "function_call",
			"call_id":   it.CallID,
			"name":      it.Name,
			"arguments": it.Arguments,
		})
	case ItemFunctionCallOutput:
		return json.Marshal(map[string]interface{}{
			"type":    "function_call_output",
			"call_id": it.CallID,
			"output":  it.Output,
		})
	default:
		return nil, fmt.Errorf("unknown item type %q", it.Type)
	}
}
