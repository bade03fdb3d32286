package models

// BlogPost is the primary record stored in the blog_posts hash. A post is
// always in exactly one of the published/drafts partition sets; published
// posts also appear on the blog:published:timeline sorted set with their
// publish time as score.
type BlogPost struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt,omitempty"`
	CoverImage string   `json:"cover_image,omitempty"`
	Published  bool     `json:"published"`
	Tags       []string `json:"tags,omitempty"`
	// PublishedAt is epoch milliseconds; zero while the post is a draft.
	PublishedAt int64 `json:"published_at,omitempty"`
	CreatedAt   int64 `json:"created_at"`
	UpdatedAt   int64 `json:"updated_at"`
}
