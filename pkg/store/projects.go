package store

import (
	"encoding/json"
	"sort"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

// ProjectInput is the caller-supplied part of a project.
type ProjectInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	RepoURL      string   `json:"repo_url"`
	LiveURL      string   `json:"live_url"`
	ImageURL     string   `json:"image_url"`
	Featured     bool     `json:"featured"`
	Order        int      `json:"order"`
}

// ProjectPatch is a partial update; nil fields are left unchanged.
type ProjectPatch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Technologies *[]string `json:"technologies,omitempty"`
	RepoURL      *string   `json:"repo_url,omitempty"`
	LiveURL      *string   `json:"live_url,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Featured     *bool     `json:"featured,omitempty"`
	Order        *int      `json:"order,omitempty"`
}

// CreateProject writes the primary record. Projects carry no secondary
// indexes; ordering is the stored Order field applied at read time.
func (s *Store) CreateProject(in ProjectInput) (*models.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().UnixMilli()
	p := models.Project{
		ID:           utils.GenID("proj"),
		Title:        in.Title,
		Description:  in.Description,
		Technologies: in.Technologies,
		RepoURL:      in.RepoURL,
		LiveURL:      in.LiveURL,
		ImageURL:     in.ImageURL,
		Featured:     in.Featured,
		Order:        in.Order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.writeProject(&p); err != nil {
		return nil, err
	}
	logger.Info("project_created", "id", p.ID, "title", p.Title)
	return &p, nil
}

// GetProject returns nil when absent.
func (s *Store) GetProject(id string) (*models.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.HGet(keyProjects, id)
	if err != nil {
		logger.Error("project_read_failed", "id", id, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var p models.Project
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		logger.Error("project_unmarshal_failed", "id", id, "error", err)
		return nil, nil
	}
	return &p, nil
}

// ListProjects returns projects sorted by Order ascending, ties broken by
// creation time descending. featuredOnly narrows to featured records.
func (s *Store) ListProjects(featuredOnly bool) ([]models.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.kv.HGetAll(keyProjects)
	if err != nil {
		logger.Error("project_list_failed", "error", err)
		return []models.Project{}, nil
	}
	out := make([]models.Project, 0, len(all))
	for id, doc := range all {
		var p models.Project
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			logger.Error("project_unmarshal_failed", "id", id, "error", err)
			continue
		}
		if featuredOnly && !p.Featured {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

// UpdateProject merges the patch and bumps UpdatedAt. Returns nil when the
// project does not exist.
func (s *Store) UpdateProject(id string, patch ProjectPatch) (*models.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	p, err := s.GetProject(id)
	if err != nil || p == nil {
		return nil, err
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Technologies != nil {
		p.Technologies = *patch.Technologies
	}
	if patch.RepoURL != nil {
		p.RepoURL = *patch.RepoURL
	}
	if patch.LiveURL != nil {
		p.LiveURL = *patch.LiveURL
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if patch.Order != nil {
		p.Order = *patch.Order
	}
	p.UpdatedAt = time.Now().UTC().UnixMilli()
	if err := s.writeProject(p); err != nil {
		return nil, err
	}
	logger.Info("project_updated", "id", p.ID)
	return p, nil
}

// DeleteProject removes the primary record. Returns false when absent.
func (s *Store) DeleteProject(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	p, err := s.GetProject(id)
	if err != nil || p == nil {
		return false, err
	}
	if err := s.kv.HDel(keyProjects, id); err != nil {
		return false, err
	}
	logger.Info("project_deleted", "id", id)
	return true, nil
}

func (s *Store) writeProject(p *models.Project) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.kv.HSet(keyProjects, p.ID, string(doc))
}
