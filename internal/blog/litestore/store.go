// Package litestore is a single file content store on SQLite, for local
// development and for tests that do not want a Postgres instance.
package litestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/2beens/serjblog/internal/blog"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/internal/trigram"
	"github.com/2beens/serjblog/pkg"
)

var _ blog.ContentStore = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and makes sure the
// blog tables exist. Use "file:<name>?mode=memory&cache=shared" for an
// in-memory database.
func Open(path string) (*Store, error) {
	if !strings.HasPrefix(path, "file:") {
		exists, err := pkg.PathExists(path, false)
		if err != nil {
			return nil, fmt.Errorf("stat sqlite [%s]: %w", path, err)
		}
		if !exists {
			log.Infof("sqlite db [%s] not found, creating a new one", path)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite [%s]: %w", path, err)
	}

	if err := db.AutoMigrate(&Author{}, &Tag{}, &Post{}, &Comment{}); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	log.Debugf("sqlite content store ready: %s", path)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func published(db *gorm.DB) *gorm.DB {
	return db.Where("blog_post.status = ?", string(blog.StatusPublished))
}

func taggedWith(tagID int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tagID <= 0 {
			return db
		}
		return db.Where(
			"blog_post.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("blog_post_tags").
				Select("post_id").
				Where("tag_id = ?", tagID),
		)
	}
}

func (s *Store) posts(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&Post{}).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("blog_tag.name")
		})
}

func (s *Store) TagBySlug(ctx context.Context, slug string) (*blog.Tag, error) {
	var t Tag
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, blog.ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}

	res := t.toBlog()
	return &res, nil
}

func (s *Store) CountPublished(ctx context.Context, tagID int) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&Post{}).
		Scopes(published, taggedWith(tagID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *Store) ListPublished(ctx context.Context, tagID, limit, offset int) ([]*blog.Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "liteStore.ListPublished")
	defer span.End()

	var posts []Post
	if err := s.posts(ctx).
		Scopes(published, taggedWith(tagID)).
		Order("blog_post.publish DESC, blog_post.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts2blog(posts), nil
}

// PublishedBySlug matches the publish window in Go, timestamps are stored as
// text in SQLite.
func (s *Store) PublishedBySlug(ctx context.Context, slug string, from, to time.Time) (*blog.Post, error) {
	var posts []Post
	if err := s.posts(ctx).
		Scopes(published).
		Where("blog_post.slug = ?", slug).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	for i := range posts {
		publish := posts[i].Publish.UTC()
		if !publish.Before(from) && publish.Before(to) {
			return posts[i].toBlog(), nil
		}
	}

	return nil, blog.ErrPostNotFound
}

func (s *Store) PublishedByID(ctx context.Context, id int) (*blog.Post, error) {
	return s.postByID(ctx, id, published)
}

// PostByID returns the post regardless of its status.
func (s *Store) PostByID(ctx context.Context, id int) (*blog.Post, error) {
	return s.postByID(ctx, id)
}

func (s *Store) postByID(ctx context.Context, id int, scopes ...func(*gorm.DB) *gorm.DB) (*blog.Post, error) {
	var p Post
	err := s.posts(ctx).Scopes(scopes...).Where("blog_post.id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, blog.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return p.toBlog(), nil
}

func (s *Store) AllPublished(ctx context.Context) ([]*blog.Post, error) {
	var posts []Post
	if err := s.posts(ctx).
		Scopes(published).
		Order("blog_post.publish DESC, blog_post.id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts2blog(posts), nil
}

func (s *Store) ActiveComments(ctx context.Context, postID int) ([]*blog.Comment, error) {
	var comments []Comment
	if err := s.db.WithContext(ctx).
		Where("post_id = ? AND active = ?", postID, true).
		Order("created, id").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	res := make([]*blog.Comment, 0, len(comments))
	for i := range comments {
		res = append(res, comments[i].toBlog())
	}
	return res, nil
}

func (s *Store) SimilarPublished(ctx context.Context, postID int, tagIDs []int, limit int) ([]*blog.Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "liteStore.SimilarPublished")
	defer span.End()

	if len(tagIDs) == 0 {
		return []*blog.Post{}, nil
	}

	var posts []Post
	if err := s.posts(ctx).
		Select("blog_post.*, COUNT(pt.tag_id) AS same_tags").
		Joins("JOIN blog_post_tags pt ON pt.post_id = blog_post.id").
		Scopes(published).
		Where("pt.tag_id IN ? AND blog_post.id <> ?", tagIDs, postID).
		Group("blog_post.id").
		Order("same_tags DESC, blog_post.publish DESC, blog_post.id DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts2blog(posts), nil
}

// SearchPublished ranks every published title in process with the same
// trigram similarity pg_trgm uses.
func (s *Store) SearchPublished(ctx context.Context, query string, threshold float64) ([]*blog.SearchResult, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "liteStore.SearchPublished")
	defer span.End()

	posts, err := s.AllPublished(ctx)
	if err != nil {
		return nil, err
	}

	return blog.RankByTitle(posts, query, threshold, trigram.Similarity), nil
}

func (s *Store) AddComment(ctx context.Context, comment *blog.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Post{}).Where("id = ?", comment.PostID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return blog.ErrPostNotFound
		}

		if comment.Created.IsZero() {
			comment.Created = time.Now().UTC()
		}
		if comment.Updated.IsZero() {
			comment.Updated = comment.Created
		}

		c := &Comment{
			PostID:  uint(comment.PostID),
			Name:    comment.Name,
			Email:   comment.Email,
			Body:    comment.Body,
			Created: comment.Created.UTC(),
			Updated: comment.Updated.UTC(),
			Active:  comment.Active,
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}

		comment.ID = int(c.ID)
		return nil
	})
}

func (s *Store) SetCommentActive(ctx context.Context, id int, active bool) error {
	res := s.db.WithContext(ctx).
		Model(&Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":  active,
			"updated": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return blog.ErrCommentNotFound
	}
	return nil
}

func (s *Store) AddAuthor(ctx context.Context, username string) (*blog.Author, error) {
	a := Author{Username: username}
	if err := s.db.WithContext(ctx).Where(Author{Username: username}).FirstOrCreate(&a).Error; err != nil {
		return nil, fmt.Errorf("add author [%s]: %w", username, err)
	}
	return &blog.Author{ID: int(a.ID), Username: a.Username}, nil
}

func (s *Store) AuthorByUsername(ctx context.Context, username string) (*blog.Author, error) {
	var a Author
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, blog.ErrAuthorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &blog.Author{ID: int(a.ID), Username: a.Username}, nil
}

// AddPost stores the post with its tags in one transaction. A slug can be
// used once per UTC publish day.
func (s *Store) AddPost(ctx context.Context, post *blog.Post) error {
	if post.Title == "" || post.Slug == "" {
		return errors.New("post title or slug empty")
	}
	if !post.Status.Valid() {
		post.Status = blog.StatusDraft
	}
	now := time.Now().UTC()
	if post.Publish.IsZero() {
		post.Publish = now
	}
	post.Publish = post.Publish.UTC()
	post.Created, post.Updated = now, now

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author Author
		err := tx.First(&author, post.AuthorID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return blog.ErrAuthorNotFound
		}
		if err != nil {
			return err
		}

		if taken, err := slugTaken(tx, post.Slug, post.Publish); err != nil {
			return err
		} else if taken {
			return blog.ErrSlugTaken
		}

		tags, err := upsertTags(tx, post.Tags)
		if err != nil {
			return err
		}

		p := &Post{
			Title:    post.Title,
			Slug:     post.Slug,
			AuthorID: author.ID,
			Body:     post.Body,
			Publish:  post.Publish,
			Created:  post.Created,
			Updated:  post.Updated,
			Status:   string(post.Status),
			Tags:     tags,
		}
		if err := tx.Omit("Author").Create(p).Error; err != nil {
			return fmt.Errorf("insert post: %w", err)
		}

		post.ID = int(p.ID)
		post.Author = author.Username
		post.Tags = p.toBlog().Tags
		return nil
	})
}

func slugTaken(tx *gorm.DB, slug string, publish time.Time) (bool, error) {
	var posts []Post
	if err := tx.Select("id", "publish").Where("slug = ?", slug).Find(&posts).Error; err != nil {
		return false, err
	}

	y, m, d := publish.UTC().Date()
	for _, p := range posts {
		py, pm, pd := p.Publish.UTC().Date()
		if py == y && pm == m && pd == d {
			return true, nil
		}
	}
	return false, nil
}

// upsertTags matches tags by slug and creates the missing ones.
func upsertTags(tx *gorm.DB, tags []blog.Tag) ([]Tag, error) {
	stored := make([]Tag, 0, len(tags))
	for _, t := range tags {
		tag := Tag{Name: t.Name, Slug: t.Slug}
		if err := tx.Where(Tag{Slug: t.Slug}).Attrs(Tag{Name: t.Name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, fmt.Errorf("upsert tag [%s]: %w", t.Slug, err)
		}
		stored = append(stored, tag)
	}
	return stored, nil
}

// TagPost adds tags to an existing post.
func (s *Store) TagPost(ctx context.Context, postID int, tags []blog.Tag) ([]blog.Tag, error) {
	var stored []Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p := Post{}
		err := tx.First(&p, postID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return blog.ErrPostNotFound
		}
		if err != nil {
			return err
		}

		stored, err = upsertTags(tx, tags)
		if err != nil {
			return err
		}
		if len(stored) == 0 {
			return nil
		}

		return tx.Model(&p).Association("Tags").Append(stored)
	})
	if err != nil {
		return nil, err
	}

	res := make([]blog.Tag, 0, len(stored))
	for _, t := range stored {
		res = append(res, t.toBlog())
	}
	return res, nil
}

// Publish moves a draft to published. Publishing twice is a no-op.
func (s *Store) Publish(ctx context.Context, id int) error {
	return s.updatePost(ctx, id, map[string]any{
		"status": string(blog.StatusPublished),
	})
}

// UpdatePost edits title and body in place; slug and publish date stay.
func (s *Store) UpdatePost(ctx context.Context, id int, title, body string) error {
	if title == "" || body == "" {
		return errors.New("post title or body empty")
	}
	return s.updatePost(ctx, id, map[string]any{
		"title": title,
		"body":  body,
	})
}

func (s *Store) updatePost(ctx context.Context, id int, fields map[string]any) error {
	fields["updated"] = time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&Post{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return blog.ErrPostNotFound
	}
	return nil
}
