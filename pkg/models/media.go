package models

// MediaItem describes an uploaded file; the bytes themselves live in object
// storage, only the metadata is kept here. Tags are registered in the global
// media:tags set.
type MediaItem struct {
	ID        string   `json:"id"`
	Filename  string   `json:"filename"`
	URL       string   `json:"url"`
	Type      string   `json:"type,omitempty"`
	Size      int64    `json:"size"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}
