package chat

import (
	"sync"

	"github.com/nhle/advisor-ai/internal/model"
)

// Conversation is the ordered transcript of the current chat. It is safe
// for concurrent use.
type Conversation struct {
	mu       sync.Mutex
	messages []model.Message
}

// NewConversation creates a transcript seeded with the given messages.
func NewConversation(initial ...model.Message) *Conversation {
	c := &Conversation{}
	c.Reset(initial...)
	return c
}

// Add appends a message to the transcript.
func (c *Conversation) Add(msg model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]model.Message, len(c.messages))
	copy(result, c.messages)
	return result
}

// Reset replaces the transcript with the given messages.
func (c *Conversation) Reset(initial ...model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = make([]model.Message, len(initial), len(initial)+8)
	copy(c.messages, initial)
}

// Len returns the number of messages in the transcript.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.messages)
}

// HasUserMessage reports whether the user has said anything yet.
func (c *Conversation) HasUserMessage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.messages {
		if m.IsUser() {
			return true
		}
	}
	return false
}
