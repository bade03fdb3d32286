package models

// Log levels accepted by the logging service.
const (
	LogInfo    = "info"
	LogWarning = "warning"
	LogError   = "error"
	LogSuccess = "success"
)

// LogEntry is the stored shape of one application log record. Timestamp is
// epoch milliseconds; CreatedAt is the same instant in RFC 3339 form.
type LogEntry struct {
	ID        string `json:"id"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Source    string `json:"source"`
	UserEmail string `json:"user_email,omitempty"`
	Details   string `json:"details,omitempty"`
	Timestamp int64  `json:"timestamp"`
	CreatedAt string `json:"created_at"`
}
