package agent

import (
	"strings"

	"github.com/entrhq/priceiq/pkg/llm"
)

// conversation is the append-only item list of one research run.
type conversation struct {
	items []llm.Item
}

func newConversation(systemPrompt string) *conversation {
	return &conversation{items: []llm.Item{
		llm.NewDeveloperMessage(systemPrompt),
		llm.NewUserMessage("Please start."),
	}}
}

func (c *conversation) addAssistant(text string) {
	c.items = append(c.items, llm.NewAssistantMessage(text))
}

// addToolCall records a function call together with its output.
func (c *conversation) addToolCall(call llm.Item, output string) {
	c.items = append(c.items, call, llm.NewFunctionCallOutput(call.CallID, output))
}

// Items returns a copy safe to hand to a provider.
func (c *conversation) Items() []llm.Item {
	out := make([]llm.Item, len(c.items))
	copy(out, c.items)
	return out
}

// notes joins every assistant message, the input of the extraction call.
func (c *conversation) notes() string {
	var parts []string
	for _, it := range c.items {
		if it.Type == llm.ItemMessage && it.Role == llm.RoleAssistant {
			parts = append(parts, it.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
