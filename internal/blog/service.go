package blog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/telemetry/tracing"
)

const (
	SimilarPostsLimit = 4
	// SearchThreshold is the minimal title similarity a search hit must exceed.
	SearchThreshold = 0.1
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=blog_test

// postsRepo only ever returns published posts.
type postsRepo interface {
	TagBySlug(ctx context.Context, slug string) (*Tag, error)
	// CountPublished and ListPublished filter by tag when tagID > 0.
	CountPublished(ctx context.Context, tagID int) (int, error)
	ListPublished(ctx context.Context, tagID, limit, offset int) ([]*Post, error)
	// PublishedBySlug finds the post with the slug published in [from, to).
	PublishedBySlug(ctx context.Context, slug string, from, to time.Time) (*Post, error)
	PublishedByID(ctx context.Context, id int) (*Post, error)
	ActiveComments(ctx context.Context, postID int) ([]*Comment, error)
	SimilarPublished(ctx context.Context, postID int, tagIDs []int, limit int) ([]*Post, error)
	SearchPublished(ctx context.Context, query string, threshold float64) ([]*SearchResult, error)
}

type Service struct {
	repo     postsRepo
	pageSize int
}

func NewService(repo postsRepo) *Service {
	return &Service{
		repo:     repo,
		pageSize: DefaultPageSize,
	}
}

type ListResult struct {
	Posts []*Post `json:"posts"`
	Page  Page    `json:"page"`
	Tag   *Tag    `json:"tag"`
}

// List returns one page of published posts, newest first, optionally
// only the ones tagged with tagSlug.
func (s *Service) List(ctx context.Context, tagSlug, pageToken string) (_ *ListResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogService.List")
	defer tracing.EndSpanWithErrCheck(span, &err)
	span.SetAttributes(
		attribute.String("tag", tagSlug),
		attribute.String("page", pageToken),
	)

	var tag *Tag
	tagID := 0
	if tagSlug != "" {
		tag, err = s.repo.TagBySlug(ctx, tagSlug)
		if err != nil {
			return nil, err
		}
		tagID = tag.ID
	}

	count, err := s.repo.CountPublished(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("count published: %w", err)
	}

	page := Paginate(count, s.pageSize, pageToken)
	log.Tracef("listing posts, tag [%s], page %d/%d, total %d", tagSlug, page.Number, page.NumPages, count)

	posts := []*Post{}
	if count > 0 {
		posts, err = s.repo.ListPublished(ctx, tagID, page.Limit(), page.Offset())
		if err != nil {
			return nil, fmt.Errorf("list published: %w", err)
		}
	}

	return &ListResult{
		Posts: posts,
		Page:  page,
		Tag:   tag,
	}, nil
}

type DetailResult struct {
	Post         *Post       `json:"post"`
	Comments     []*Comment  `json:"comments"`
	Form         CommentForm `json:"form"`
	SimilarPosts []*Post     `json:"similar_posts"`
}

// Detail finds a published post by its slug and exact UTC publish day.
func (s *Service) Detail(ctx context.Context, year, month, day int, slug string) (_ *DetailResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogService.Detail")
	defer tracing.EndSpanWithErrCheck(span, &err)
	span.SetAttributes(attribute.String("slug", slug))

	from, ok := publishDay(year, month, day)
	if !ok {
		return nil, ErrPostNotFound
	}

	post, err := s.repo.PublishedBySlug(ctx, slug, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.ActiveComments(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("active comments of %d: %w", post.ID, err)
	}
	if comments == nil {
		comments = []*Comment{}
	}

	similar := []*Post{}
	if len(post.Tags) > 0 {
		similar, err = s.repo.SimilarPublished(ctx, post.ID, post.TagIDs(), SimilarPostsLimit)
		if err != nil {
			return nil, fmt.Errorf("similar posts of %d: %w", post.ID, err)
		}
	}

	return &DetailResult{
		Post:         post,
		Comments:     comments,
		Form:         CommentForm{},
		SimilarPosts: similar,
	}, nil
}

// publishDay returns the UTC midnight of the given date, and false when the
// date does not exist (e.g. 2023/2/30).
func publishDay(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// Search ranks published posts by trigram similarity of their title to query.
// An empty query yields no results.
func (s *Service) Search(ctx context.Context, query string) (_ []*SearchResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogService.Search")
	defer tracing.EndSpanWithErrCheck(span, &err)

	query = strings.TrimSpace(query)
	span.SetAttributes(attribute.String("query", query))
	if query == "" {
		return []*SearchResult{}, nil
	}

	results, err := s.repo.SearchPublished(ctx, query, SearchThreshold)
	if err != nil {
		return nil, fmt.Errorf("search [%s]: %w", query, err)
	}
	if results == nil {
		results = []*SearchResult{}
	}

	return results, nil
}

func (s *Service) PublishedPost(ctx context.Context, id int) (*Post, error) {
	return s.repo.PublishedByID(ctx, id)
}

// RankByTitle scores every post title against query, keeps the ones
// strictly above threshold and orders them by score, then by publish date,
// both descending. Used by stores that cannot rank in the database.
func RankByTitle(
	posts []*Post,
	query string,
	threshold float64,
	similarity func(a, b string) float64,
) []*SearchResult {
	results := make([]*SearchResult, 0, len(posts))
	for _, p := range posts {
		sim := similarity(p.Title, query)
		if sim > threshold {
			results = append(results, &SearchResult{Post: p, Similarity: sim})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Post.Publish.After(results[j].Post.Publish)
	})

	return results
}
