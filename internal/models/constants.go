// Package models contains data types and constants for the BookRAG chat service.
package models

// API paths, relative to the configured base URL
const (
	PathChat    = "/api/chat"
	PathHistory = "/api/history"
)

// CSRF and cookie names used by the service
const (
	HeaderCSRF        = "X-CSRFToken"
	CookieCSRF        = "csrf_token"
	CookieSession     = "session"
	ContentTypeJSON   = "application/json"
	ContentTypeNDJSON = "application/x-ndjson"
)

// User-facing strings shown by the chat client
const (
	// GreetingMessage seeds every new conversation.
	GreetingMessage = "Hello! I'm BookRAG. Ask me any question about your document collection."

	// FallbackMessage replaces an answer whose stream failed at the transport level.
	FallbackMessage = "Sorry, an error occurred. Please try again."
)

// DefaultHeaders returns the headers sent with every API request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": ContentTypeJSON,
		"User-Agent":   "bookrag-cli",
	}
}
