package store

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a title and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "post"
	}
	return s
}

// uniqueSlug checks the slug set and appends -2, -3, ... until the slug is
// free. Disambiguation happens on the slug, not the title, so stored titles
// never grow suffixes.
func (s *Store) uniqueSlug(base string) (string, error) {
	slug := base
	for n := 2; ; n++ {
		taken, err := s.kv.SIsMember(keySlugSet, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

// PostInput is the caller-supplied part of a blog post.
type PostInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"cover_image"`
	Published  bool     `json:"published"`
	Tags       []string `json:"tags"`
}

// PostPatch is a partial update; nil fields are left unchanged.
type PostPatch struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Excerpt    *string   `json:"excerpt,omitempty"`
	CoverImage *string   `json:"cover_image,omitempty"`
	Published  *bool     `json:"published,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
}

// PostFilter narrows ListPosts. Search applies a case-insensitive substring
// match on title and content after index resolution.
type PostFilter struct {
	OnlyPublished bool
	Tag           string
	Search        string
}

// CreatePost generates the ID, slug and timestamps, writes the primary
// record and updates every index the input implies: slug set, the
// published/drafts partition, the publish timeline and per-tag sets.
func (s *Store) CreatePost(in PostInput) (*models.BlogPost, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().UnixMilli()
	slug, err := s.uniqueSlug(Slugify(in.Title))
	if err != nil {
		return nil, err
	}
	post := models.BlogPost{
		ID:         utils.GenID("post"),
		Slug:       slug,
		Title:      in.Title,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		CoverImage: in.CoverImage,
		Published:  in.Published,
		Tags:       in.Tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if post.Published {
		post.PublishedAt = now
	}
	if err := s.writePost(&post); err != nil {
		return nil, err
	}
	if err := s.kv.SAdd(keySlugSet, post.Slug); err != nil {
		return nil, err
	}
	if post.Published {
		if err := s.kv.SAdd(keyPublishedSet, post.ID); err != nil {
			return nil, err
		}
		if err := s.kv.ZAdd(keyPubTimeline, post.PublishedAt, post.ID); err != nil {
			return nil, err
		}
	} else {
		if err := s.kv.SAdd(keyDraftsSet, post.ID); err != nil {
			return nil, err
		}
	}
	for _, tag := range post.Tags {
		if err := s.kv.SAdd(prefixBlogTag+tag, post.ID); err != nil {
			return nil, err
		}
	}
	logger.Info("post_created", "id", post.ID, "slug", post.Slug, "published", post.Published)
	return &post, nil
}

// GetPost returns nil (not an error) when the post is absent.
func (s *Store) GetPost(id string) (*models.BlogPost, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.HGet(keyPosts, id)
	if err != nil {
		logger.Error("post_read_failed", "id", id, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var post models.BlogPost
	if err := json.Unmarshal([]byte(doc), &post); err != nil {
		logger.Error("post_unmarshal_failed", "id", id, "error", err)
		return nil, nil
	}
	return &post, nil
}

// GetPostBySlug resolves a slug by scanning the primary hash.
func (s *Store) GetPostBySlug(slug string) (*models.BlogPost, error) {
	posts, err := s.ListPosts(PostFilter{})
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Slug == slug {
			return &posts[i], nil
		}
	}
	return nil, nil
}

// ListPosts resolves the narrowest applicable index, loads the records and
// applies the remaining filters. Results are sorted newest-first: published
// listings by publish time, everything else by creation time.
func (s *Store) ListPosts(f PostFilter) ([]models.BlogPost, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var ids []string
	var err error
	switch {
	case f.Tag != "":
		ids, err = s.kv.SMembers(prefixBlogTag + f.Tag)
	case f.OnlyPublished:
		ids, err = s.kv.ZRevRange(keyPubTimeline, 0, -1)
	default:
		var all map[string]string
		all, err = s.kv.HGetAll(keyPosts)
		for id := range all {
			ids = append(ids, id)
		}
	}
	if err != nil {
		logger.Error("post_list_failed", "error", err)
		return []models.BlogPost{}, nil
	}
	out := make([]models.BlogPost, 0, len(ids))
	for _, id := range ids {
		post, err := s.GetPost(id)
		if err != nil || post == nil {
			continue
		}
		if f.OnlyPublished && !post.Published {
			continue
		}
		if f.Search != "" && !containsFold(post.Title, f.Search) && !containsFold(post.Content, f.Search) {
			continue
		}
		out = append(out, *post)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		if f.OnlyPublished {
			a, b = out[i].PublishedAt, out[j].PublishedAt
		}
		return a > b
	})
	return out, nil
}

// UpdatePost merges the patch, bumps UpdatedAt and reconciles every index
// whose underlying field changed: the published/drafts partition, the
// publish timeline and the per-tag sets. Returns nil when the post does not
// exist.
func (s *Store) UpdatePost(id string, patch PostPatch) (*models.BlogPost, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	post, err := s.GetPost(id)
	if err != nil || post == nil {
		return nil, err
	}
	prevTags := post.Tags
	prevPublished := post.Published

	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		post.Excerpt = *patch.Excerpt
	}
	if patch.CoverImage != nil {
		post.CoverImage = *patch.CoverImage
	}
	if patch.Published != nil {
		post.Published = *patch.Published
	}
	if patch.Tags != nil {
		post.Tags = *patch.Tags
	}
	post.UpdatedAt = time.Now().UTC().UnixMilli()

	switch {
	case post.Published && !prevPublished:
		post.PublishedAt = post.UpdatedAt
		if err := s.movePartition(post.ID, keyDraftsSet, keyPublishedSet); err != nil {
			return nil, err
		}
		if err := s.kv.ZAdd(keyPubTimeline, post.PublishedAt, post.ID); err != nil {
			return nil, err
		}
	case !post.Published && prevPublished:
		post.PublishedAt = 0
		if err := s.movePartition(post.ID, keyPublishedSet, keyDraftsSet); err != nil {
			return nil, err
		}
		if err := s.kv.ZRem(keyPubTimeline, post.ID); err != nil {
			return nil, err
		}
	}
	if patch.Tags != nil {
		if err := s.reconcileValueSets(post.ID, prevTags, post.Tags, func(tag string) string {
			return prefixBlogTag + tag
		}); err != nil {
			return nil, err
		}
	}
	if err := s.writePost(post); err != nil {
		return nil, err
	}
	logger.Info("post_updated", "id", post.ID, "published", post.Published)
	return post, nil
}

// DeletePost fetches the record first to learn its current slug, partition
// and tags, removes those index memberships, then deletes the primary
// record. Returns false when the post does not exist.
func (s *Store) DeletePost(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	post, err := s.GetPost(id)
	if err != nil || post == nil {
		return false, err
	}
	if err := s.kv.SRem(keySlugSet, post.Slug); err != nil {
		return false, err
	}
	if post.Published {
		if err := s.kv.SRem(keyPublishedSet, id); err != nil {
			return false, err
		}
		if err := s.kv.ZRem(keyPubTimeline, id); err != nil {
			return false, err
		}
	} else {
		if err := s.kv.SRem(keyDraftsSet, id); err != nil {
			return false, err
		}
	}
	for _, tag := range post.Tags {
		if err := s.kv.SRem(prefixBlogTag+tag, id); err != nil {
			return false, err
		}
	}
	if err := s.kv.HDel(keyPosts, id); err != nil {
		return false, err
	}
	logger.Info("post_deleted", "id", id)
	return true, nil
}

func (s *Store) writePost(post *models.BlogPost) error {
	doc, err := json.Marshal(post)
	if err != nil {
		return err
	}
	return s.kv.HSet(keyPosts, post.ID, string(doc))
}
