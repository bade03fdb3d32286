package store

import (
	"encoding/json"
	"sort"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

// SkillInput is the caller-supplied part of a skill.
type SkillInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency int    `json:"proficiency"`
	Featured    bool   `json:"featured"`
	Order       int    `json:"order"`
}

// SkillPatch is a partial update; nil fields are left unchanged.
type SkillPatch struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Proficiency *int    `json:"proficiency,omitempty"`
	Featured    *bool   `json:"featured,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

// CreateSkill writes the primary record and registers the skill in its
// category index set.
func (s *Store) CreateSkill(in SkillInput) (*models.Skill, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().UnixMilli()
	sk := models.Skill{
		ID:          utils.GenID("skill"),
		Name:        in.Name,
		Category:    in.Category,
		Proficiency: in.Proficiency,
		Featured:    in.Featured,
		Order:       in.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.writeSkill(&sk); err != nil {
		return nil, err
	}
	if sk.Category != "" {
		if err := s.kv.SAdd(prefixSkillCat+sk.Category, sk.ID); err != nil {
			return nil, err
		}
	}
	logger.Info("skill_created", "id", sk.ID, "name", sk.Name)
	return &sk, nil
}

// GetSkill returns nil when absent.
func (s *Store) GetSkill(id string) (*models.Skill, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.HGet(keySkills, id)
	if err != nil {
		logger.Error("skill_read_failed", "id", id, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var sk models.Skill
	if err := json.Unmarshal([]byte(doc), &sk); err != nil {
		logger.Error("skill_unmarshal_failed", "id", id, "error", err)
		return nil, nil
	}
	return &sk, nil
}

// ListSkills narrows by category via the index set when given, otherwise
// scans the hash. Sorted by Order ascending then name.
func (s *Store) ListSkills(category string) ([]models.Skill, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var ids []string
	var err error
	if category != "" {
		ids, err = s.kv.SMembers(prefixSkillCat + category)
	} else {
		var all map[string]string
		all, err = s.kv.HGetAll(keySkills)
		for id := range all {
			ids = append(ids, id)
		}
	}
	if err != nil {
		logger.Error("skill_list_failed", "error", err)
		return []models.Skill{}, nil
	}
	out := make([]models.Skill, 0, len(ids))
	for _, id := range ids {
		sk, err := s.GetSkill(id)
		if err != nil || sk == nil {
			continue
		}
		out = append(out, *sk)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// UpdateSkill merges the patch and, when the category changed, moves the
// skill between category index sets. Returns nil when absent.
func (s *Store) UpdateSkill(id string, patch SkillPatch) (*models.Skill, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	sk, err := s.GetSkill(id)
	if err != nil || sk == nil {
		return nil, err
	}
	prevCat := sk.Category
	if patch.Name != nil {
		sk.Name = *patch.Name
	}
	if patch.Category != nil {
		sk.Category = *patch.Category
	}
	if patch.Proficiency != nil {
		sk.Proficiency = *patch.Proficiency
	}
	if patch.Featured != nil {
		sk.Featured = *patch.Featured
	}
	if patch.Order != nil {
		sk.Order = *patch.Order
	}
	sk.UpdatedAt = time.Now().UTC().UnixMilli()

	if sk.Category != prevCat {
		var prev, next []string
		if prevCat != "" {
			prev = []string{prevCat}
		}
		if sk.Category != "" {
			next = []string{sk.Category}
		}
		if err := s.reconcileValueSets(sk.ID, prev, next, func(cat string) string {
			return prefixSkillCat + cat
		}); err != nil {
			return nil, err
		}
	}
	if err := s.writeSkill(sk); err != nil {
		return nil, err
	}
	logger.Info("skill_updated", "id", sk.ID)
	return sk, nil
}

// DeleteSkill removes the category membership then the primary record.
func (s *Store) DeleteSkill(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	sk, err := s.GetSkill(id)
	if err != nil || sk == nil {
		return false, err
	}
	if sk.Category != "" {
		if err := s.kv.SRem(prefixSkillCat+sk.Category, id); err != nil {
			return false, err
		}
	}
	if err := s.kv.HDel(keySkills, id); err != nil {
		return false, err
	}
	logger.Info("skill_deleted", "id", id)
	return true, nil
}

func (s *Store) writeSkill(sk *models.Skill) error {
	doc, err := json.Marshal(sk)
	if err != nil {
		return err
	}
	return s.kv.HSet(keySkills, sk.ID, string(doc))
}
