package models

// SocialLinks is deep-merged field-by-field on settings updates.
type SocialLinks struct {
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ThemeSettings is deep-merged field-by-field on settings updates.
type ThemeSettings struct {
	Mode        string `json:"mode,omitempty"` // "light" | "dark" | "system"
	AccentColor string `json:"accent_color,omitempty"`
	Particles   bool   `json:"particles"`
}

// SEOSettings is deep-merged field-by-field on settings updates.
type SEOSettings struct {
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// SiteSettings is the singleton JSON document under the site:settings key.
type SiteSettings struct {
	SiteName    string        `json:"site_name"`
	Tagline     string        `json:"tagline,omitempty"`
	Description string        `json:"description,omitempty"`
	SocialLinks SocialLinks   `json:"social_links"`
	Theme       ThemeSettings `json:"theme"`
	SEO         SEOSettings   `json:"seo"`
	UpdatedAt   int64         `json:"updated_at"`
}

// SettingsPatch carries a partial settings update. Nil fields are left
// untouched; the three sub-objects merge field-by-field rather than being
// replaced wholesale.
type SettingsPatch struct {
	SiteName    *string           `json:"site_name,omitempty"`
	Tagline     *string           `json:"tagline,omitempty"`
	Description *string           `json:"description,omitempty"`
	SocialLinks *SocialLinksPatch `json:"social_links,omitempty"`
	Theme       *ThemePatch       `json:"theme,omitempty"`
	SEO         *SEOPatch         `json:"seo,omitempty"`
}

type SocialLinksPatch struct {
	GitHub   *string `json:"github,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
	Twitter  *string `json:"twitter,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type ThemePatch struct {
	Mode        *string `json:"mode,omitempty"`
	AccentColor *string `json:"accent_color,omitempty"`
	Particles   *bool   `json:"particles,omitempty"`
}

type SEOPatch struct {
	MetaTitle       *string   `json:"meta_title,omitempty"`
	MetaDescription *string   `json:"meta_description,omitempty"`
	Keywords        *[]string `json:"keywords,omitempty"`
}
