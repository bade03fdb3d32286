package store

import (
	"encoding/json"
	"testing"

	"foliodb/pkg/models"
)

// Replacing a primary family wholesale (the restore path) leaves every
// secondary index describing the old records. RebuildIndexes recomputes
// them from what the hashes actually hold.
func TestRebuildIndexesAfterFamilyReplace(t *testing.T) {
	s, m := newTestStore(t)

	kept, err := s.CreatePost(PostInput{Title: "Kept", Published: true, Tags: []string{"go"}})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	dropped, err := s.CreatePost(PostInput{Title: "Dropped", Tags: []string{"db"}})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if _, err := s.CreateSkill(SkillInput{Name: "Go", Category: "backend"}); err != nil {
		t.Fatalf("CreateSkill: %v", err)
	}
	if _, err := s.CreateMedia(MediaInput{Filename: "a.png", URL: "/a.png", Tags: []string{"hero"}}); err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}

	// Swap the blog family for one with only the kept post, retagged.
	kept.Tags = []string{"web"}
	doc, err := json.Marshal(kept)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := s.ReplaceFamily("blog_posts", map[string]string{kept.ID: string(doc)}); err != nil {
		t.Fatalf("ReplaceFamily: %v", err)
	}

	// Indexes are stale now: the dropped post is still everywhere.
	if ok, _ := m.SIsMember("blog:drafts", dropped.ID); !ok {
		t.Fatalf("expected stale drafts membership before rebuild")
	}

	if err := s.RebuildIndexes(); err != nil {
		t.Fatalf("RebuildIndexes: %v", err)
	}

	if ok, _ := m.SIsMember("blog:slugs", "dropped"); ok {
		t.Fatalf("dropped slug survived rebuild")
	}
	if ok, _ := m.SIsMember("blog:slugs", "kept"); !ok {
		t.Fatalf("kept slug missing after rebuild")
	}
	if ok, _ := m.SIsMember("blog:drafts", dropped.ID); ok {
		t.Fatalf("dropped post survived in drafts partition")
	}
	if ok, _ := m.SIsMember("blog:published", kept.ID); !ok {
		t.Fatalf("kept post missing from published partition")
	}
	if tl, _ := m.ZRevRange("blog:published:timeline", 0, -1); len(tl) != 1 || tl[0] != kept.ID {
		t.Fatalf("timeline after rebuild: %v", tl)
	}

	// Old tag sets are gone; the new tag is indexed.
	for _, stale := range []string{"blog:tag:go", "blog:tag:db"} {
		if members, _ := m.SMembers(stale); len(members) != 0 {
			t.Fatalf("stale tag set %q: %v", stale, members)
		}
	}
	if ok, _ := m.SIsMember("blog:tag:web", kept.ID); !ok {
		t.Fatalf("retagged membership missing")
	}

	// Untouched families come out unchanged.
	skills, err := s.ListSkills("backend")
	if err != nil || len(skills) != 1 {
		t.Fatalf("skills after rebuild: %v %v", skills, err)
	}
	tags, err := s.MediaTags()
	if err != nil || len(tags) != 1 || tags[0] != "hero" {
		t.Fatalf("media tags after rebuild: %v %v", tags, err)
	}

	// The repositories agree with the rebuilt indexes.
	published, err := s.ListPosts(PostFilter{OnlyPublished: true})
	if err != nil || len(published) != 1 || published[0].ID != kept.ID {
		t.Fatalf("published listing after rebuild: %v %v", published, err)
	}
}

func TestRebuildIndexesSkipsCorruptRecords(t *testing.T) {
	s, m := newTestStore(t)
	good, err := s.CreatePost(PostInput{Title: "Good", Published: true})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if err := m.HSet("blog_posts", "post_bad", "{not json"); err != nil {
		t.Fatalf("HSet: %v", err)
	}
	if err := s.RebuildIndexes(); err != nil {
		t.Fatalf("RebuildIndexes: %v", err)
	}
	if ok, _ := m.SIsMember("blog:published", good.ID); !ok {
		t.Fatalf("good record not reindexed")
	}
	if ok, _ := m.SIsMember("blog:published", "post_bad"); ok {
		t.Fatalf("corrupt record indexed")
	}
}

func TestSettingsPatchZeroValueDistinct(t *testing.T) {
	// Sanity on the patch types: an explicit empty string is applied, a nil
	// pointer is not.
	s, _ := newTestStore(t)
	if _, err := s.UpdateSettings(models.SettingsPatch{Tagline: strPtr("set")}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	got, err := s.UpdateSettings(models.SettingsPatch{Tagline: strPtr("")})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if got.Tagline != "" {
		t.Fatalf("explicit empty tagline not applied: %q", got.Tagline)
	}
}
