package api

// JSON paths used to read API payloads with gjson
const (
	PathEntryRole    = "role"
	PathEntryContent = "content"
	PathErrorMessage = "error"
)

// chatRequest is the body of POST /api/chat
type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}
