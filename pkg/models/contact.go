package models

// ContactMessage has no secondary structures; listings sort by Timestamp at
// read time.
type ContactMessage struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
	Replied bool   `json:"replied"`
	// Timestamp is epoch milliseconds at intake.
	Timestamp int64 `json:"timestamp"`
}
