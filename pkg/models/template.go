package models

// ContentTemplate is indexed by category and contributes its tags to the
// global templates:tags set.
type ContentTemplate struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}
