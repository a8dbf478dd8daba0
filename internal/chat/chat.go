package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/diogo/bookrag/internal/api"
	"github.com/diogo/bookrag/internal/logging"
	"github.com/diogo/bookrag/internal/models"
)

// Streamer runs one chat request; api.Client implements it
type Streamer interface {
	StreamChat(ctx context.Context, query, sessionID string, onUpdate func(content string)) (*api.StreamResult, error)
}

// SessionSource provides the current session id; session.Manager implements it
type SessionSource interface {
	Current() string
	Reset() (string, error)
}

// Event reports a change to an assistant message
type Event struct {
	MessageID string
	Content   string
	Status    models.Status
	// Applied is false when the message was no longer live and the
	// change was dropped
	Applied bool
}

// Chat connects a Conversation to the streaming client
type Chat struct {
	streamer Streamer
	sessions SessionSource
	conv     *Conversation
	log      zerolog.Logger

	mu       sync.Mutex
	inflight *inflight
}

// inflight identifies one Send so that only its own cleanup clears it
type inflight struct {
	cancel context.CancelFunc
}

// Option configures a Chat
type Option func(*Chat)

// WithGreeting sets the message that seeds each conversation
func WithGreeting(greeting string) Option {
	return func(c *Chat) {
		c.conv = NewConversation(greeting)
	}
}

// WithLogger sets the chat logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Chat) {
		c.log = l
	}
}

// New creates a Chat
func New(streamer Streamer, sessions SessionSource, opts ...Option) *Chat {
	c := &Chat{
		streamer: streamer,
		sessions: sessions,
		log:      logging.Component("chat"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.conv == nil {
		c.conv = NewConversation(models.GreetingMessage)
	}
	return c
}

// Conversation returns the live conversation
func (c *Chat) Conversation() *Conversation {
	return c.conv
}

// SessionID returns the current session id
func (c *Chat) SessionID() string {
	return c.sessions.Current()
}

// Send submits text and streams the answer into the conversation. notify,
// when set, is called after every change to the assistant message.
//
// The session id is captured before the request starts. Send returns
// ErrBusy while another answer is open. Any stream error finalizes the
// answer as errored with the fallback text and is returned unchanged.
func (c *Chat) Send(ctx context.Context, text string, notify func(Event)) error {
	if notify == nil {
		notify = func(Event) {}
	}

	_, assistantID, err := c.conv.AppendExchange(text)
	if err != nil {
		return err
	}
	sessionID := c.sessions.Current()

	ctx, cancel := context.WithCancel(ctx)
	run := &inflight{cancel: cancel}
	c.mu.Lock()
	c.inflight = run
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		if c.inflight == run {
			c.inflight = nil
		}
		c.mu.Unlock()
		cancel()
	}()

	c.log.Debug().Str("message_id", assistantID).Str("session_id", sessionID).Msg("sending question")

	var last string
	_, err = c.streamer.StreamChat(ctx, text, sessionID, func(content string) {
		last = content
		applied := c.conv.ApplyUpdate(assistantID, content)
		notify(Event{MessageID: assistantID, Content: content, Status: models.StatusStreaming, Applied: applied})
	})

	if err != nil {
		applied := c.conv.FinalizeWith(assistantID, models.StatusErrored, models.FallbackMessage)
		if !applied {
			c.log.Debug().Str("message_id", assistantID).Msg("stream ended after conversation reset")
		}
		notify(Event{MessageID: assistantID, Content: models.FallbackMessage, Status: models.StatusErrored, Applied: applied})
		return err
	}

	applied := c.conv.Finalize(assistantID, models.StatusComplete)
	notify(Event{MessageID: assistantID, Content: last, Status: models.StatusComplete, Applied: applied})
	return nil
}

// NewChat starts a fresh session and conversation. An answer still
// streaming is cancelled and can no longer touch the conversation. When the
// session cannot be reset nothing changes and the answer keeps streaming.
func (c *Chat) NewChat() (string, error) {
	id, err := c.sessions.Reset()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
	c.mu.Unlock()

	c.conv.Reset()

	c.log.Debug().Str("session_id", id).Msg("new chat")
	return id, nil
}
