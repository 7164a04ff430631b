package domain

type EventType string

const (
	// Inbound events from clients.
	EventJoin           EventType = "join"
	EventCodeChange     EventType = "codeChange"
	EventLeaveRoom      EventType = "leaveRoom"
	EventTyping         EventType = "typing"
	EventLanguageChange EventType = "languageChange"
	EventActiveUsers    EventType = "activeUsers"

	// Outbound events to clients.
	EventUserJoined     EventType = "userJoined"
	EventCodeUpdate     EventType = "codeUpdate"
	EventUserTyping     EventType = "userTyping"
	EventLanguageUpdate EventType = "languageUpdate"
)

// Event is the single envelope used on the wire in both directions.
// Payload fields are populated per event type and omitted otherwise.
type Event struct {
	Type     EventType `json:"type"`
	Room     string    `json:"room,omitempty"`
	UserName string    `json:"userName,omitempty"`
	Code     string    `json:"code,omitempty"`
	Language string    `json:"language,omitempty"`
	Members  []string  `json:"members,omitempty"`
}
