package store

import (
	"encoding/json"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
)

// RebuildIndexes recomputes every secondary index from the primary hashes.
// Restore replaces primary records wholesale and leaves indexes stale, so
// this is the recovery step to run (offline) afterwards. Existing index
// keys are cleared first; per-tag and per-category sets that no longer have
// members simply never get recreated.
func (s *Store) RebuildIndexes() error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.clearIndexKeys(); err != nil {
		return err
	}
	if err := s.rebuildBlogIndexes(); err != nil {
		return err
	}
	if err := s.rebuildSkillIndexes(); err != nil {
		return err
	}
	if err := s.rebuildTemplateIndexes(); err != nil {
		return err
	}
	if err := s.rebuildMediaTags(); err != nil {
		return err
	}
	logger.Info("indexes_rebuilt")
	return nil
}

// clearIndexKeys wipes the fixed index keys and every prefixed index set
// found in the set keyspace.
func (s *Store) clearIndexKeys() error {
	for _, key := range []string{keySlugSet, keyPublishedSet, keyDraftsSet, keyMediaTags, keyTemplateTags} {
		members, err := s.kv.SMembers(key)
		if err != nil {
			return err
		}
		if len(members) > 0 {
			if err := s.kv.SRem(key, members...); err != nil {
				return err
			}
		}
	}
	timeline, err := s.kv.ZRevRange(keyPubTimeline, 0, -1)
	if err != nil {
		return err
	}
	if len(timeline) > 0 {
		if err := s.kv.ZRem(keyPubTimeline, timeline...); err != nil {
			return err
		}
	}
	for _, prefix := range []string{prefixBlogTag, prefixSkillCat, prefixTplCat} {
		keys, err := s.kv.SetKeys(prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			members, err := s.kv.SMembers(key)
			if err != nil {
				return err
			}
			if len(members) > 0 {
				if err := s.kv.SRem(key, members...); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Store) rebuildBlogIndexes() error {
	all, err := s.kv.HGetAll(keyPosts)
	if err != nil {
		return err
	}
	for id, doc := range all {
		var post models.BlogPost
		if err := json.Unmarshal([]byte(doc), &post); err != nil {
			logger.Warn("reindex_skipping_record", "family", keyPosts, "id", id, "error", err)
			continue
		}
		if err := s.kv.SAdd(keySlugSet, post.Slug); err != nil {
			return err
		}
		if post.Published {
			if err := s.kv.SAdd(keyPublishedSet, post.ID); err != nil {
				return err
			}
			if err := s.kv.ZAdd(keyPubTimeline, post.PublishedAt, post.ID); err != nil {
				return err
			}
		} else {
			if err := s.kv.SAdd(keyDraftsSet, post.ID); err != nil {
				return err
			}
		}
		for _, tag := range post.Tags {
			if err := s.kv.SAdd(prefixBlogTag+tag, post.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) rebuildSkillIndexes() error {
	all, err := s.kv.HGetAll(keySkills)
	if err != nil {
		return err
	}
	for id, doc := range all {
		var sk models.Skill
		if err := json.Unmarshal([]byte(doc), &sk); err != nil {
			logger.Warn("reindex_skipping_record", "family", keySkills, "id", id, "error", err)
			continue
		}
		if sk.Category == "" {
			continue
		}
		if err := s.kv.SAdd(prefixSkillCat+sk.Category, sk.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) rebuildTemplateIndexes() error {
	all, err := s.kv.HGetAll(keyTemplates)
	if err != nil {
		return err
	}
	for id, doc := range all {
		var t models.ContentTemplate
		if err := json.Unmarshal([]byte(doc), &t); err != nil {
			logger.Warn("reindex_skipping_record", "family", keyTemplates, "id", id, "error", err)
			continue
		}
		if t.Category != "" {
			if err := s.kv.SAdd(prefixTplCat+t.Category, t.ID); err != nil {
				return err
			}
		}
	}
	return s.rebuildTemplateTags()
}
