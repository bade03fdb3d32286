package store

import (
	"encoding/json"
	"sort"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

// TemplateInput is the caller-supplied part of a content template.
type TemplateInput struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
}

// TemplatePatch is a partial update; nil fields are left unchanged.
type TemplatePatch struct {
	Name     *string   `json:"name,omitempty"`
	Category *string   `json:"category,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// CreateTemplate writes the primary record, indexes it by category and
// registers its tags in the global template tag set.
func (s *Store) CreateTemplate(in TemplateInput) (*models.ContentTemplate, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().UnixMilli()
	t := models.ContentTemplate{
		ID:        utils.GenID("tpl"),
		Name:      in.Name,
		Category:  in.Category,
		Content:   in.Content,
		Tags:      in.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.writeTemplate(&t); err != nil {
		return nil, err
	}
	if t.Category != "" {
		if err := s.kv.SAdd(prefixTplCat+t.Category, t.ID); err != nil {
			return nil, err
		}
	}
	for _, tag := range t.Tags {
		if err := s.kv.SAdd(keyTemplateTags, tag); err != nil {
			return nil, err
		}
	}
	logger.Info("template_created", "id", t.ID, "name", t.Name)
	return &t, nil
}

// GetTemplate returns nil when absent.
func (s *Store) GetTemplate(id string) (*models.ContentTemplate, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.HGet(keyTemplates, id)
	if err != nil {
		logger.Error("template_read_failed", "id", id, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var t models.ContentTemplate
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		logger.Error("template_unmarshal_failed", "id", id, "error", err)
		return nil, nil
	}
	return &t, nil
}

// ListTemplates narrows by category via the index set when given. Sorted by
// name alphabetically.
func (s *Store) ListTemplates(category string) ([]models.ContentTemplate, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var ids []string
	var err error
	if category != "" {
		ids, err = s.kv.SMembers(prefixTplCat + category)
	} else {
		var all map[string]string
		all, err = s.kv.HGetAll(keyTemplates)
		for id := range all {
			ids = append(ids, id)
		}
	}
	if err != nil {
		logger.Error("template_list_failed", "error", err)
		return []models.ContentTemplate{}, nil
	}
	out := make([]models.ContentTemplate, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTemplate(id)
		if err != nil || t == nil {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateTemplate merges the patch, moves the record between category sets
// when the category changed and rebuilds the global tag set when tags
// changed. Returns nil when absent.
func (s *Store) UpdateTemplate(id string, patch TemplatePatch) (*models.ContentTemplate, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	t, err := s.GetTemplate(id)
	if err != nil || t == nil {
		return nil, err
	}
	prevCat := t.Category
	tagsChanged := false
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Content != nil {
		t.Content = *patch.Content
	}
	if patch.Tags != nil {
		tagsChanged = true
		t.Tags = *patch.Tags
	}
	t.UpdatedAt = time.Now().UTC().UnixMilli()

	if t.Category != prevCat {
		var prev, next []string
		if prevCat != "" {
			prev = []string{prevCat}
		}
		if t.Category != "" {
			next = []string{t.Category}
		}
		if err := s.reconcileValueSets(t.ID, prev, next, func(cat string) string {
			return prefixTplCat + cat
		}); err != nil {
			return nil, err
		}
	}
	if err := s.writeTemplate(t); err != nil {
		return nil, err
	}
	if tagsChanged {
		if err := s.rebuildTemplateTags(); err != nil {
			return nil, err
		}
	}
	logger.Info("template_updated", "id", t.ID)
	return t, nil
}

// DeleteTemplate removes the category membership, the primary record and
// any tag names no longer used by surviving templates.
func (s *Store) DeleteTemplate(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	t, err := s.GetTemplate(id)
	if err != nil || t == nil {
		return false, err
	}
	if t.Category != "" {
		if err := s.kv.SRem(prefixTplCat+t.Category, id); err != nil {
			return false, err
		}
	}
	if err := s.kv.HDel(keyTemplates, id); err != nil {
		return false, err
	}
	if err := s.rebuildTemplateTags(); err != nil {
		return false, err
	}
	logger.Info("template_deleted", "id", id)
	return true, nil
}

func (s *Store) rebuildTemplateTags() error {
	items, err := s.ListTemplates("")
	if err != nil {
		return err
	}
	want := make(map[string]struct{})
	for _, t := range items {
		for _, tag := range t.Tags {
			want[tag] = struct{}{}
		}
	}
	have, err := s.kv.SMembers(keyTemplateTags)
	if err != nil {
		return err
	}
	for _, tag := range have {
		if _, ok := want[tag]; !ok {
			if err := s.kv.SRem(keyTemplateTags, tag); err != nil {
				return err
			}
		}
	}
	for tag := range want {
		if err := s.kv.SAdd(keyTemplateTags, tag); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeTemplate(t *models.ContentTemplate) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.kv.HSet(keyTemplates, t.ID, string(doc))
}
