package store

import (
	"encoding/json"
	"sort"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

// AchievementInput is the caller-supplied part of an achievement.
type AchievementInput struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Icon        string                     `json:"icon"`
	Criteria    models.AchievementCriteria `json:"criteria"`
}

// AchievementPatch is a partial update; nil fields are left unchanged.
type AchievementPatch struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	CurrentValue *int    `json:"current_value,omitempty"`
	Unlocked     *bool   `json:"unlocked,omitempty"`
}

// CreateAchievement writes the primary record.
func (s *Store) CreateAchievement(in AchievementInput) (*models.Achievement, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().UnixMilli()
	a := models.Achievement{
		ID:          utils.GenID("ach"),
		Title:       in.Title,
		Description: in.Description,
		Icon:        in.Icon,
		Criteria:    in.Criteria,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.writeAchievement(&a); err != nil {
		return nil, err
	}
	logger.Info("achievement_created", "id", a.ID, "title", a.Title)
	return &a, nil
}

// GetAchievement returns nil when absent.
func (s *Store) GetAchievement(id string) (*models.Achievement, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.HGet(keyAchieves, id)
	if err != nil {
		logger.Error("achievement_read_failed", "id", id, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var a models.Achievement
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		logger.Error("achievement_unmarshal_failed", "id", id, "error", err)
		return nil, nil
	}
	return &a, nil
}

// ListAchievements returns all achievements sorted by creation time.
func (s *Store) ListAchievements() ([]models.Achievement, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.kv.HGetAll(keyAchieves)
	if err != nil {
		logger.Error("achievement_list_failed", "error", err)
		return []models.Achievement{}, nil
	}
	out := make([]models.Achievement, 0, len(all))
	for id, doc := range all {
		var a models.Achievement
		if err := json.Unmarshal([]byte(doc), &a); err != nil {
			logger.Error("achievement_unmarshal_failed", "id", id, "error", err)
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// UpdateAchievement merges the patch. Setting Unlocked stamps UnlockedAt;
// clearing it resets the stamp. Returns nil when absent.
func (s *Store) UpdateAchievement(id string, patch AchievementPatch) (*models.Achievement, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	a, err := s.GetAchievement(id)
	if err != nil || a == nil {
		return nil, err
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.Icon != nil {
		a.Icon = *patch.Icon
	}
	if patch.CurrentValue != nil {
		a.Criteria.CurrentValue = *patch.CurrentValue
	}
	a.UpdatedAt = time.Now().UTC().UnixMilli()
	if patch.Unlocked != nil && *patch.Unlocked != a.Unlocked {
		a.Unlocked = *patch.Unlocked
		if a.Unlocked {
			a.UnlockedAt = a.UpdatedAt
		} else {
			a.UnlockedAt = 0
		}
	}
	if err := s.writeAchievement(a); err != nil {
		return nil, err
	}
	logger.Info("achievement_updated", "id", a.ID, "unlocked", a.Unlocked)
	return a, nil
}

// DeleteAchievement removes the record and its membership in every user's
// unlocked set.
func (s *Store) DeleteAchievement(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	a, err := s.GetAchievement(id)
	if err != nil || a == nil {
		return false, err
	}
	users, err := s.kv.HGetAll(keyUsers)
	if err == nil {
		for email := range users {
			if err := s.kv.SRem(prefixUserAchSet+email, id); err != nil {
				return false, err
			}
		}
	}
	if err := s.kv.HDel(keyAchieves, id); err != nil {
		return false, err
	}
	logger.Info("achievement_deleted", "id", id)
	return true, nil
}

// UnlockForUser records an unlocked achievement in the per-user set.
func (s *Store) UnlockForUser(email, achievementID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.kv.SAdd(prefixUserAchSet+email, achievementID)
}

// UserAchievements returns the unlocked achievement IDs for one user.
func (s *Store) UserAchievements(email string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ids, err := s.kv.SMembers(prefixUserAchSet + email)
	if err != nil {
		logger.Error("user_achievements_read_failed", "email", email, "error", err)
		return []string{}, nil
	}
	return ids, nil
}

func (s *Store) writeAchievement(a *models.Achievement) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.kv.HSet(keyAchieves, a.ID, string(doc))
}
