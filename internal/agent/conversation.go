package agent

import "github.com/shellmind-ai/shellmind/internal/llm"

// Conversation is an append-only ordered sequence of messages. The first
// entry is always a system message; Reset re-seeds it immediately rather
// than leaving the conversation briefly empty.
type Conversation struct {
	messages []llm.Message
}

// NewConversation creates a Conversation seeded with systemPrompt.
func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{}
	c.messages = append(c.messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	return c
}

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(role llm.Role, content string) {
	c.messages = append(c.messages, llm.Message{Role: role, Content: content})
}

// Messages returns the full ordered sequence. Callers must not mutate the
// returned slice.
func (c *Conversation) Messages() []llm.Message {
	return c.messages
}

// Len reports the number of messages, including the seeded system message.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Reset clears the conversation and re-seeds the system message.
func (c *Conversation) Reset(systemPrompt string) {
	c.messages = c.messages[:0]
	c.messages = append(c.messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
}
