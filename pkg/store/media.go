package store

import (
	"encoding/json"
	"sort"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

// MediaInput is the caller-supplied part of a media item.
type MediaInput struct {
	Filename string   `json:"filename"`
	URL      string   `json:"url"`
	Type     string   `json:"type"`
	Size     int64    `json:"size"`
	Tags     []string `json:"tags"`
}

// MediaPatch is a partial update; nil fields are left unchanged.
type MediaPatch struct {
	Filename *string   `json:"filename,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// MediaFilter narrows ListMedia.
type MediaFilter struct {
	Tag    string
	Type   string
	Search string
}

// CreateMedia writes the primary record and registers its tags in the
// global media tag set.
func (s *Store) CreateMedia(in MediaInput) (*models.MediaItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().UnixMilli()
	m := models.MediaItem{
		ID:        utils.GenID("media"),
		Filename:  in.Filename,
		URL:       in.URL,
		Type:      in.Type,
		Size:      in.Size,
		Tags:      in.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.writeMedia(&m); err != nil {
		return nil, err
	}
	for _, tag := range m.Tags {
		if err := s.kv.SAdd(keyMediaTags, tag); err != nil {
			return nil, err
		}
	}
	logger.Info("media_created", "id", m.ID, "filename", m.Filename)
	return &m, nil
}

// GetMedia returns nil when absent.
func (s *Store) GetMedia(id string) (*models.MediaItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.HGet(keyMedia, id)
	if err != nil {
		logger.Error("media_read_failed", "id", id, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var m models.MediaItem
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		logger.Error("media_unmarshal_failed", "id", id, "error", err)
		return nil, nil
	}
	return &m, nil
}

// ListMedia scans the hash and filters by tag, type and filename substring.
// Sorted newest-first.
func (s *Store) ListMedia(f MediaFilter) ([]models.MediaItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.kv.HGetAll(keyMedia)
	if err != nil {
		logger.Error("media_list_failed", "error", err)
		return []models.MediaItem{}, nil
	}
	out := make([]models.MediaItem, 0, len(all))
	for id, doc := range all {
		var m models.MediaItem
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			logger.Error("media_unmarshal_failed", "id", id, "error", err)
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Tag != "" && !hasTag(m.Tags, f.Tag) {
			continue
		}
		if f.Search != "" && !containsFold(m.Filename, f.Search) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// MediaTags returns the global tag registry.
func (s *Store) MediaTags() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	tags, err := s.kv.SMembers(keyMediaTags)
	if err != nil {
		logger.Error("media_tags_read_failed", "error", err)
		return []string{}, nil
	}
	return tags, nil
}

// UpdateMedia merges the patch; when tags change the global tag set is
// rebuilt from the surviving items so tag names still in use elsewhere are
// not dropped.
func (s *Store) UpdateMedia(id string, patch MediaPatch) (*models.MediaItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	m, err := s.GetMedia(id)
	if err != nil || m == nil {
		return nil, err
	}
	tagsChanged := false
	if patch.Filename != nil {
		m.Filename = *patch.Filename
	}
	if patch.Tags != nil {
		tagsChanged = true
		m.Tags = *patch.Tags
	}
	m.UpdatedAt = time.Now().UTC().UnixMilli()
	if err := s.writeMedia(m); err != nil {
		return nil, err
	}
	if tagsChanged {
		if err := s.rebuildMediaTags(); err != nil {
			return nil, err
		}
	}
	logger.Info("media_updated", "id", m.ID)
	return m, nil
}

// DeleteMedia removes the record and rebuilds the global tag set.
func (s *Store) DeleteMedia(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	m, err := s.GetMedia(id)
	if err != nil || m == nil {
		return false, err
	}
	if err := s.kv.HDel(keyMedia, id); err != nil {
		return false, err
	}
	if err := s.rebuildMediaTags(); err != nil {
		return false, err
	}
	logger.Info("media_deleted", "id", id)
	return true, nil
}

// rebuildMediaTags recomputes media:tags as the union of tags across all
// surviving items.
func (s *Store) rebuildMediaTags() error {
	items, err := s.ListMedia(MediaFilter{})
	if err != nil {
		return err
	}
	want := make(map[string]struct{})
	for _, m := range items {
		for _, tag := range m.Tags {
			want[tag] = struct{}{}
		}
	}
	have, err := s.kv.SMembers(keyMediaTags)
	if err != nil {
		return err
	}
	for _, tag := range have {
		if _, ok := want[tag]; !ok {
			if err := s.kv.SRem(keyMediaTags, tag); err != nil {
				return err
			}
		}
	}
	for tag := range want {
		if err := s.kv.SAdd(keyMediaTags, tag); err != nil {
			return err
		}
	}
	return nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s *Store) writeMedia(m *models.MediaItem) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.kv.HSet(keyMedia, m.ID, string(doc))
}
