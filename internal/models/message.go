package models

import "time"

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the role name
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label shown next to the message
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "BookRAG"
	default:
		return string(r)
	}
}

// Status is the lifecycle state of a message
type Status string

const (
	StatusPending   Status = "pending"
	StatusStreaming Status = "streaming"
	StatusComplete  Status = "complete"
	StatusErrored   Status = "errored"
)

// Terminal reports whether no further content may be applied
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusErrored
}

// Message represents a single chat message.
// Assistant messages are mutable only while pending or streaming.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// IsUser reports whether the message was written by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// HistoryEntry is one element of the server-side history listing
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
