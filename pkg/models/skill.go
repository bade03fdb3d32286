package models

// Skill is indexed by category via skills:category:{category} sets.
type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	// Proficiency is 0-100.
	Proficiency int   `json:"proficiency"`
	Featured    bool  `json:"featured"`
	Order       int   `json:"order"`
	CreatedAt   int64 `json:"created_at"`
	UpdatedAt   int64 `json:"updated_at"`
}
