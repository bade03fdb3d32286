package models

// AchievementCriteria describes how an achievement unlocks.
type AchievementCriteria struct {
	Type         string `json:"type"`
	Target       int    `json:"target"`
	CurrentValue int    `json:"current_value"`
}

// Achievement is a site-wide definition; per-user unlocks live in the
// user:achievements:{email} sets.
type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Icon        string              `json:"icon,omitempty"`
	Criteria    AchievementCriteria `json:"criteria"`
	Unlocked    bool                `json:"unlocked"`
	UnlockedAt  int64               `json:"unlocked_at,omitempty"`
	CreatedAt   int64               `json:"created_at"`
	UpdatedAt   int64               `json:"updated_at"`
}
