// Package store implements the entity repositories: primary hash records
// plus the hand-maintained secondary index sets and timelines that make
// filtered listing possible without a scan. Index bookkeeping for every
// update/delete path goes through the helpers in index.go so the
// reconciliation logic exists once.
package store

import (
	"strings"

	"foliodb/pkg/kv"
)

// Primary hash names, one per entity family. Each is a single big hash
// keyed by entity ID with a JSON document value.
const (
	keyPosts     = "blog_posts"
	keyProjects  = "projects"
	keySkills    = "skills"
	keyAchieves  = "achievements"
	keyMedia     = "media"
	keyTemplates = "templates"
	keyContact   = "contact_messages"
	keySessions  = "chat_sessions"
	keyUsers     = "users"

	keySlugSet       = "blog:slugs"
	keyPublishedSet  = "blog:published"
	keyDraftsSet     = "blog:drafts"
	keyPubTimeline   = "blog:published:timeline"
	keyMediaTags     = "media:tags"
	keyTemplateTags  = "templates:tags"
	keySiteSettings  = "site:settings"
	prefixBlogTag    = "blog:tag:"
	prefixSkillCat   = "skills:category:"
	prefixTplCat     = "templates:category:"
	prefixChatMsgs   = "chat:messages:"
	prefixUserAchSet = "user:achievements:"
)

// Store owns one kv client and exposes every repository. The client is
// constructed once at startup and passed in; a nil client is the
// not-configured sentinel and every call on it reports kv.ErrNotConfigured.
type Store struct {
	kv kv.Client
}

// New returns a Store over the given client. c may be nil.
func New(c kv.Client) *Store {
	return &Store{kv: c}
}

// Ready reports whether a client is configured.
func (s *Store) Ready() bool {
	return s != nil && s.kv != nil
}

func (s *Store) ready() error {
	if !s.Ready() {
		return kv.ErrNotConfigured
	}
	return nil
}

// KV exposes the underlying client for the components layered on top of the
// repositories (logging service, backup orchestrator, session store).
func (s *Store) KV() kv.Client {
	if s == nil {
		return nil
	}
	return s.kv
}

// Families lists every primary hash included in a full backup. Settings is
// a scalar and handled separately by the orchestrator.
func Families() []string {
	return []string{
		keyPosts, keyProjects, keySkills, keyAchieves,
		keyMedia, keyTemplates, keyContact, keySessions,
	}
}

// RawFamily returns the raw id -> JSON contents of one primary hash.
func (s *Store) RawFamily(name string) (map[string]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.kv.HGetAll(name)
}

// ReplaceFamily deletes every existing member of a primary hash and writes
// back the supplied contents. The replace is not atomic: a crash mid-way
// leaves some members replaced and some not. Secondary indexes are not
// rebuilt here.
func (s *Store) ReplaceFamily(name string, contents map[string]string) error {
	if err := s.ready(); err != nil {
		return err
	}
	existing, err := s.kv.HGetAll(name)
	if err != nil {
		return err
	}
	for id := range existing {
		if err := s.kv.HDel(name, id); err != nil {
			return err
		}
	}
	for id, doc := range contents {
		if err := s.kv.HSet(name, id, doc); err != nil {
			return err
		}
	}
	return nil
}

// RawSettings returns the settings scalar document, if present.
func (s *Store) RawSettings() (string, bool, error) {
	if err := s.ready(); err != nil {
		return "", false, err
	}
	return s.kv.Get(keySiteSettings)
}

// ReplaceSettings writes the settings scalar document wholesale.
func (s *Store) ReplaceSettings(doc string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.kv.Set(keySiteSettings, doc)
}

// containsFold reports a case-insensitive substring match, the filter used
// for free-text search fields.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
