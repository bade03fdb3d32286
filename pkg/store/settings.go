package store

import (
	"encoding/json"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
)

// DefaultSettings is the document synthesized on first read.
func DefaultSettings() models.SiteSettings {
	return models.SiteSettings{
		SiteName:    "Portfolio",
		Tagline:     "Developer portfolio",
		Description: "Personal portfolio site",
		Theme: models.ThemeSettings{
			Mode:        "system",
			AccentColor: "#6366f1",
			Particles:   true,
		},
		SEO: models.SEOSettings{
			MetaTitle:       "Portfolio",
			MetaDescription: "Personal portfolio site",
		},
	}
}

// GetSettings reads the singleton document. When the key is absent the
// defaults are persisted and returned, so the first read after a fresh
// deployment has a write side effect.
func (s *Store) GetSettings() (*models.SiteSettings, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.Get(keySiteSettings)
	if err != nil {
		logger.Error("settings_read_failed", "error", err)
		def := DefaultSettings()
		return &def, nil
	}
	if !ok {
		def := DefaultSettings()
		def.UpdatedAt = time.Now().UTC().UnixMilli()
		if err := s.writeSettings(&def); err != nil {
			logger.Error("settings_init_failed", "error", err)
		} else {
			logger.Info("settings_initialized")
		}
		return &def, nil
	}
	var out models.SiteSettings
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		logger.Error("settings_unmarshal_failed", "error", err)
		def := DefaultSettings()
		return &def, nil
	}
	return &out, nil
}

// UpdateSettings deep-merges the socialLinks, theme and seo sub-objects
// field-by-field, shallow-merges the rest, bumps UpdatedAt and persists the
// whole document under the same key.
func (s *Store) UpdateSettings(patch models.SettingsPatch) (*models.SiteSettings, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	cur, err := s.GetSettings()
	if err != nil {
		return nil, err
	}
	if patch.SiteName != nil {
		cur.SiteName = *patch.SiteName
	}
	if patch.Tagline != nil {
		cur.Tagline = *patch.Tagline
	}
	if patch.Description != nil {
		cur.Description = *patch.Description
	}
	if p := patch.SocialLinks; p != nil {
		if p.GitHub != nil {
			cur.SocialLinks.GitHub = *p.GitHub
		}
		if p.LinkedIn != nil {
			cur.SocialLinks.LinkedIn = *p.LinkedIn
		}
		if p.Twitter != nil {
			cur.SocialLinks.Twitter = *p.Twitter
		}
		if p.Email != nil {
			cur.SocialLinks.Email = *p.Email
		}
	}
	if p := patch.Theme; p != nil {
		if p.Mode != nil {
			cur.Theme.Mode = *p.Mode
		}
		if p.AccentColor != nil {
			cur.Theme.AccentColor = *p.AccentColor
		}
		if p.Particles != nil {
			cur.Theme.Particles = *p.Particles
		}
	}
	if p := patch.SEO; p != nil {
		if p.MetaTitle != nil {
			cur.SEO.MetaTitle = *p.MetaTitle
		}
		if p.MetaDescription != nil {
			cur.SEO.MetaDescription = *p.MetaDescription
		}
		if p.Keywords != nil {
			cur.SEO.Keywords = *p.Keywords
		}
	}
	cur.UpdatedAt = time.Now().UTC().UnixMilli()
	if err := s.writeSettings(cur); err != nil {
		return nil, err
	}
	logger.Info("settings_updated")
	return cur, nil
}

func (s *Store) writeSettings(v *models.SiteSettings) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(keySiteSettings, string(doc))
}
