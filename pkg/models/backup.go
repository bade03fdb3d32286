package models

// Backup statuses and types.
const (
	BackupPending   = "pending"
	BackupCompleted = "completed"
	BackupFailed    = "failed"

	BackupFull    = "full"
	BackupPartial = "partial"
)

// Backup is a snapshot record. Data carries the serialized JSON blob of
// every entity family (or an error payload when Status is failed); Size is
// the serialized length in bytes.
type Backup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	Data        string `json:"data,omitempty"`
	Size        int64  `json:"size"`
	CreatedAt   int64  `json:"created_at"`
	CompletedAt int64  `json:"completed_at,omitempty"`
}

// BackupMeta is the listing form of a Backup: everything except the blob.
type BackupMeta struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	CreatedAt   int64  `json:"created_at"`
	CompletedAt int64  `json:"completed_at,omitempty"`
}

// Meta strips the Data blob for list responses.
func (b Backup) Meta() BackupMeta {
	return BackupMeta{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Status:      b.Status,
		Type:        b.Type,
		Size:        b.Size,
		CreatedAt:   b.CreatedAt,
		CompletedAt: b.CompletedAt,
	}
}
