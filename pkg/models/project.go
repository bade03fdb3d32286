package models

// Project has no secondary indexes; ordering uses the stored Order field
// and is applied at read time.
type Project struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	RepoURL      string   `json:"repo_url,omitempty"`
	LiveURL      string   `json:"live_url,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Featured     bool     `json:"featured"`
	Order        int      `json:"order"`
	CreatedAt    int64    `json:"created_at"`
	UpdatedAt    int64    `json:"updated_at"`
}
