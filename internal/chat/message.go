package chat

// Role identifies the author of a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one committed transcript entry. Messages are never mutated
// after commit; the in-flight draft is a separate entity owned by Session.
// Citations are set only on assistant messages and list the document pages
// most likely to support the answer.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Citations []int  `json:"citations,omitempty"`
}

// Request is the payload handed to the streaming transport.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// State is the per-turn phase of a Session.
type State string

const (
	StateIdle       State = "idle"
	StateSending    State = "sending"
	StateFinalizing State = "finalizing"
	StateCancelled  State = "cancelled"
)

// EventType tags the turn events observers receive while a turn runs.
type EventType string

const (
	// EventDelta carries the growing draft text after new tokens arrived.
	EventDelta EventType = "token"
	// EventMessage carries the committed message that ended the turn.
	EventMessage EventType = "message"
)

// Event is one observable step of an in-flight turn.
type Event struct {
	Type    EventType `json:"type"`
	Text    string    `json:"text,omitempty"`
	Message *Message  `json:"message,omitempty"`
}
