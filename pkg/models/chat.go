package models

// ChatSession holds metadata only; its messages live in the side hash
// chat:messages:{sessionID} and are merged in, sorted by timestamp, when a
// session is read.
type ChatSession struct {
	ID        string        `json:"id"`
	Visitor   string        `json:"visitor,omitempty"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
	Messages  []ChatMessage `json:"messages,omitempty"`
}

// ChatMessage is one turn in a chat session.
type ChatMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}
