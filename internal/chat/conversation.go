// Package chat holds the conversation shown to the user and drives one
// question/answer exchange at a time through the streaming client.
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/diogo/bookrag/internal/errors"
	"github.com/diogo/bookrag/internal/models"
)

// Conversation is the ordered message log.
//
// Updates address assistant messages by id. An update for an id that is no
// longer in the log (after Reset) or whose message is already terminal is
// ignored, so a stream that outlives its conversation cannot write into the
// new one.
type Conversation struct {
	greeting string
	messages []models.Message
	index    map[string]int
	mu       sync.RWMutex
}

// NewConversation creates a conversation seeded with greeting
func NewConversation(greeting string) *Conversation {
	c := &Conversation{greeting: greeting}
	c.reset()
	return c
}

func newMessageID(role models.Role) string {
	return role.String() + "-" + uuid.NewString()
}

func (c *Conversation) reset() {
	c.messages = []models.Message{{
		ID:        newMessageID(models.RoleAssistant),
		Role:      models.RoleAssistant,
		Content:   c.greeting,
		Status:    models.StatusComplete,
		CreatedAt: time.Now(),
	}}
	c.index = map[string]int{c.messages[0].ID: 0}
}

func (c *Conversation) busy() bool {
	for _, m := range c.messages {
		if !m.Status.Terminal() {
			return true
		}
	}
	return false
}

func (c *Conversation) append(m models.Message) {
	c.index[m.ID] = len(c.messages)
	c.messages = append(c.messages, m)
}

// AppendExchange adds a complete user message and an empty pending
// assistant message. It fails with ErrBusy while an answer is still open.
func (c *Conversation) AppendExchange(text string) (userID, assistantID string, err error) {
	if strings.TrimSpace(text) == "" {
		return "", "", apierrors.ErrEmptyQuery
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy() {
		return "", "", apierrors.ErrBusy
	}

	now := time.Now()
	user := models.Message{
		ID:        newMessageID(models.RoleUser),
		Role:      models.RoleUser,
		Content:   text,
		Status:    models.StatusComplete,
		CreatedAt: now,
	}
	assistant := models.Message{
		ID:        newMessageID(models.RoleAssistant),
		Role:      models.RoleAssistant,
		Status:    models.StatusPending,
		CreatedAt: now,
	}
	c.append(user)
	c.append(assistant)

	return user.ID, assistant.ID, nil
}

// lookup returns the position of an open message, or -1
func (c *Conversation) lookup(id string) int {
	i, ok := c.index[id]
	if !ok || c.messages[i].Status.Terminal() {
		return -1
	}
	return i
}

// ApplyUpdate replaces the content of an open assistant message. It reports
// whether the update was applied.
func (c *Conversation) ApplyUpdate(id, content string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.lookup(id)
	if i < 0 {
		return false
	}
	c.messages[i].Content = content
	c.messages[i].Status = models.StatusStreaming
	return true
}

// Finalize moves an open message to a terminal status
func (c *Conversation) Finalize(id string, status models.Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.lookup(id)
	if i < 0 || !status.Terminal() {
		return false
	}
	c.messages[i].Status = status
	return true
}

// FinalizeWith is Finalize with a content override
func (c *Conversation) FinalizeWith(id string, status models.Status, content string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.lookup(id)
	if i < 0 || !status.Terminal() {
		return false
	}
	c.messages[i].Content = content
	c.messages[i].Status = status
	return true
}

// Reset discards every message and starts over from the greeting
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Messages returns a snapshot of the log
func (c *Conversation) Messages() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Get returns the message with id
func (c *Conversation) Get(id string) (models.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return models.Message{}, false
	}
	return c.messages[i], true
}

// Busy reports whether an assistant message is still pending or streaming
func (c *Conversation) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.busy()
}

// Len returns the number of messages
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}
