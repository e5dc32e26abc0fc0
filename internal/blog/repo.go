package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/pkg"
)

// manual caching of prepared statements not needed:
// https://github.com/jackc/pgx/wiki/Automatic-Prepared-Statement-Caching

const postColumns = `
	p.id, p.title, p.slug, p.author_id, a.username, p.body,
	p.publish, p.created, p.updated, p.status
`

const postFrom = `
	FROM blog_post p
	JOIN blog_author a ON a.id = p.author_id
`

// ContentStore is everything the HTTP layer needs from storage. Implemented
// by the Postgres Repo and by the SQLite litestore.
type ContentStore interface {
	postsRepo
	commentsRepo
	AllPublished(ctx context.Context) ([]*Post, error)
}

var _ ContentStore = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) TagBySlug(ctx context.Context, slug string) (*Tag, error) {
	var t Tag
	err := r.db.QueryRow(
		ctx,
		`SELECT id, name, slug FROM blog_tag WHERE slug = $1`,
		slug,
	).Scan(&t.ID, &t.Name, &t.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tag by slug [%s]: %w", slug, err)
	}
	return &t, nil
}

func (r *Repo) CountPublished(ctx context.Context, tagID int) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.CountPublished")
	defer span.End()

	var (
		count int
		err   error
	)
	if tagID > 0 {
		err = r.db.QueryRow(
			ctx,
			`
				SELECT COUNT(*) FROM blog_post p
				JOIN blog_post_tags pt ON pt.post_id = p.id
				WHERE p.status = $1 AND pt.tag_id = $2
			`,
			StatusPublished, tagID,
		).Scan(&count)
	} else {
		err = r.db.QueryRow(
			ctx,
			`SELECT COUNT(*) FROM blog_post WHERE status = $1`,
			StatusPublished,
		).Scan(&count)
	}
	if err != nil {
		return -1, err
	}

	return count, nil
}

func (r *Repo) ListPublished(ctx context.Context, tagID, limit, offset int) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.ListPublished")
	span.SetAttributes(attribute.Int("tag", tagID))
	span.SetAttributes(attribute.Int("limit", limit))
	span.SetAttributes(attribute.Int("offset", offset))
	defer span.End()

	log.Tracef("listing published posts, tag %d, limit %d, offset %d", tagID, limit, offset)

	var (
		rows pgx.Rows
		err  error
	)
	if tagID > 0 {
		rows, err = r.db.Query(
			ctx,
			`SELECT `+postColumns+postFrom+`
				JOIN blog_post_tags pt ON pt.post_id = p.id
				WHERE p.status = $1 AND pt.tag_id = $2
				ORDER BY p.publish DESC, p.id DESC
				LIMIT $3 OFFSET $4`,
			StatusPublished, tagID, limit, offset,
		)
	} else {
		rows, err = r.db.Query(
			ctx,
			`SELECT `+postColumns+postFrom+`
				WHERE p.status = $1
				ORDER BY p.publish DESC, p.id DESC
				LIMIT $2 OFFSET $3`,
			StatusPublished, limit, offset,
		)
	}
	if err != nil {
		return nil, err
	}

	posts, err := rows2posts(rows)
	if err != nil {
		return nil, err
	}

	return posts, r.attachTags(ctx, posts)
}

func (r *Repo) PublishedBySlug(ctx context.Context, slug string, from, to time.Time) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.PublishedBySlug")
	span.SetAttributes(attribute.String("slug", slug))
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+postColumns+postFrom+`
			WHERE p.status = $1 AND p.slug = $2
			AND p.publish >= $3 AND p.publish < $4`,
		StatusPublished, slug, from, to,
	)
	if err != nil {
		return nil, err
	}

	return r.singlePost(ctx, rows)
}

func (r *Repo) PublishedByID(ctx context.Context, id int) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.PublishedByID")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+postColumns+postFrom+` WHERE p.status = $1 AND p.id = $2`,
		StatusPublished, id,
	)
	if err != nil {
		return nil, err
	}

	return r.singlePost(ctx, rows)
}

// PostByID returns the post regardless of its status.
func (r *Repo) PostByID(ctx context.Context, id int) (*Post, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT `+postColumns+postFrom+` WHERE p.id = $1`,
		id,
	)
	if err != nil {
		return nil, err
	}

	return r.singlePost(ctx, rows)
}

func (r *Repo) AllPublished(ctx context.Context) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.AllPublished")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+postColumns+postFrom+` WHERE p.status = $1 ORDER BY p.publish DESC, p.id DESC`,
		StatusPublished,
	)
	if err != nil {
		return nil, err
	}

	return rows2posts(rows)
}

func (r *Repo) ActiveComments(ctx context.Context, postID int) ([]*Comment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.ActiveComments")
	span.SetAttributes(attribute.Int("post.id", postID))
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, post_id, name, email, body, created, updated, active
			FROM blog_comment
			WHERE post_id = $1 AND active
			ORDER BY created, id
		`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.Created, &c.Updated, &c.Active,
		); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}

	return comments, rows.Err()
}

// SimilarPublished returns posts sharing tags with the given post, the ones
// sharing the most tags first, then the newest, then the highest id.
func (r *Repo) SimilarPublished(ctx context.Context, postID int, tagIDs []int, limit int) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.SimilarPublished")
	span.SetAttributes(attribute.Int("post.id", postID))
	defer span.End()

	if len(tagIDs) == 0 {
		return []*Post{}, nil
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+postColumns+`, COUNT(pt.tag_id) AS same_tags`+postFrom+`
			JOIN blog_post_tags pt ON pt.post_id = p.id
			WHERE p.status = $1 AND pt.tag_id = ANY($2) AND p.id <> $3
			GROUP BY p.id, a.username
			ORDER BY same_tags DESC, p.publish DESC, p.id DESC
			LIMIT $4`,
		StatusPublished, tagIDs, postID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*Post{}
	for rows.Next() {
		var sameTags int
		p, err := scanPost(rows, &sameTags)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	return posts, r.attachTags(ctx, posts)
}

// SearchPublished ranks by pg_trgm similarity of the title.
func (r *Repo) SearchPublished(ctx context.Context, query string, threshold float64) ([]*SearchResult, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.SearchPublished")
	span.SetAttributes(attribute.String("query", query))
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+postColumns+`, similarity(p.title, $2) AS sim`+postFrom+`
			WHERE p.status = $1 AND similarity(p.title, $2) > $3
			ORDER BY sim DESC, p.publish DESC`,
		StatusPublished, query, threshold,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		results = []*SearchResult{}
		posts   []*Post
	)
	for rows.Next() {
		var sim float32
		p, err := scanPost(rows, &sim)
		if err != nil {
			return nil, err
		}
		results = append(results, &SearchResult{Post: p, Similarity: float64(sim)})
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	return results, r.attachTags(ctx, posts)
}

func (r *Repo) AddComment(ctx context.Context, comment *Comment) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.AddComment")
	span.SetAttributes(attribute.Int("post.id", comment.PostID))
	defer span.End()

	if comment.Created.IsZero() {
		comment.Created = time.Now().UTC()
	}
	if comment.Updated.IsZero() {
		comment.Updated = comment.Created
	}

	err := r.db.QueryRow(
		ctx,
		`
			INSERT INTO blog_comment (post_id, name, email, body, created, updated, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`,
		comment.PostID, comment.Name, comment.Email, comment.Body,
		comment.Created, comment.Updated, comment.Active,
	).Scan(&comment.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrPostNotFound
		}
		return err
	}

	return nil
}

func (r *Repo) SetCommentActive(ctx context.Context, id int, active bool) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE blog_comment SET active = $1, updated = now() WHERE id = $2`,
		active, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *Repo) AddAuthor(ctx context.Context, username string) (*Author, error) {
	a := &Author{Username: username}
	err := r.db.QueryRow(
		ctx,
		`
			INSERT INTO blog_author (username) VALUES ($1)
			ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
			RETURNING id
		`,
		username,
	).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("add author [%s]: %w", username, err)
	}
	return a, nil
}

func (r *Repo) AuthorByUsername(ctx context.Context, username string) (*Author, error) {
	a := &Author{}
	err := r.db.QueryRow(
		ctx,
		`SELECT id, username FROM blog_author WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AddPost stores the post with its tags in one transaction.
// Tags are matched by slug and created when missing.
func (r *Repo) AddPost(ctx context.Context, post *Post) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.AddPost")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if post.Title == "" || post.Slug == "" {
		return errors.New("post title or slug empty")
	}
	if !post.Status.Valid() {
		post.Status = StatusDraft
	}
	now := time.Now().UTC()
	if post.Publish.IsZero() {
		post.Publish = now
	}
	post.Created, post.Updated = now, now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Errorf("add post, rollback: %s", rbErr)
			}
		}
	}()

	err = tx.QueryRow(
		ctx,
		`
			INSERT INTO blog_post (title, slug, author_id, body, publish, created, updated, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`,
		post.Title, post.Slug, post.AuthorID, post.Body,
		post.Publish, post.Created, post.Updated, post.Status,
	).Scan(&post.ID)
	switch {
	case pkg.IsUniqueViolationError(err):
		return ErrSlugTaken
	case pkg.IsForeignKeyViolationError(err):
		return ErrAuthorNotFound
	case err != nil:
		return fmt.Errorf("insert post: %w", err)
	}

	post.Tags, err = tagPost(ctx, tx, post.ID, post.Tags)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// TagPost adds tags to an existing post.
func (r *Repo) TagPost(ctx context.Context, postID int, tags []Tag) (_ []Tag, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Errorf("tag post, rollback: %s", rbErr)
			}
		}
	}()

	stored, err := tagPost(ctx, tx, postID, tags)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}

func tagPost(ctx context.Context, tx pgx.Tx, postID int, tags []Tag) ([]Tag, error) {
	stored := make([]Tag, 0, len(tags))
	for _, t := range tags {
		err := tx.QueryRow(
			ctx,
			`
				INSERT INTO blog_tag (name, slug) VALUES ($1, $2)
				ON CONFLICT (slug) DO UPDATE SET name = blog_tag.name
				RETURNING id, name
			`,
			t.Name, t.Slug,
		).Scan(&t.ID, &t.Name)
		if err != nil {
			return nil, fmt.Errorf("upsert tag [%s]: %w", t.Slug, err)
		}

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO blog_post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, t.ID,
		); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return nil, ErrPostNotFound
			}
			return nil, fmt.Errorf("tag post %d with [%s]: %w", postID, t.Slug, err)
		}
		stored = append(stored, t)
	}
	return stored, nil
}

// Publish moves a draft to published. Publishing twice is a no-op.
func (r *Repo) Publish(ctx context.Context, id int) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE blog_post SET status = $1, updated = now() WHERE id = $2`,
		StatusPublished, id,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrSlugTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

// UpdatePost edits title and body in place; slug and publish date stay.
func (r *Repo) UpdatePost(ctx context.Context, id int, title, body string) error {
	if title == "" || body == "" {
		return errors.New("post title or body empty")
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE blog_post SET title = $1, body = $2, updated = now() WHERE id = $3`,
		title, body, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *Repo) singlePost(ctx context.Context, rows pgx.Rows) (*Post, error) {
	posts, err := rows2posts(rows)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrPostNotFound
	}
	if err := r.attachTags(ctx, posts[:1]); err != nil {
		return nil, err
	}
	return posts[0], nil
}

func (r *Repo) attachTags(ctx context.Context, posts []*Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]int, 0, len(posts))
	byID := make(map[int]*Post, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Tags = []Tag{}
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT pt.post_id, t.id, t.name, t.slug
			FROM blog_post_tags pt
			JOIN blog_tag t ON t.id = pt.tag_id
			WHERE pt.post_id = ANY($1)
			ORDER BY t.name
		`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID int
			t      Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug); err != nil {
			return err
		}
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, t)
		}
	}

	return rows.Err()
}

func rows2posts(rows pgx.Rows) ([]*Post, error) {
	defer rows.Close()

	posts := []*Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

func scanPost(rows pgx.Rows, extra ...any) (*Post, error) {
	var (
		p      Post
		status string
	)
	dest := []any{
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Author, &p.Body,
		&p.Publish, &p.Created, &p.Updated, &status,
	}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.Status = Status(status)
	return &p, nil
}
