package blog

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrTagNotFound     = errors.New("tag not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrAuthorNotFound  = errors.New("author not found")
	ErrSlugTaken       = errors.New("slug already used for this publish date")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Author struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Post struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	AuthorID int       `json:"author_id"`
	Author   string    `json:"author"`
	Body     string    `json:"body"`
	Publish  time.Time `json:"publish"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
	Status   Status    `json:"status"`
	Tags     []Tag     `json:"tags"`
}

// AbsolutePath is the public path of the post: /blog/{year}/{month}/{day}/{slug}/
// with the publish date taken in UTC and not zero padded.
func (p *Post) AbsolutePath() string {
	publish := p.Publish.UTC()
	return fmt.Sprintf(
		"/blog/%d/%d/%d/%s/",
		publish.Year(), int(publish.Month()), publish.Day(), p.Slug,
	)
}

func (p *Post) TagIDs() []int {
	ids := make([]int, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

type Comment struct {
	ID      int       `json:"id"`
	PostID  int       `json:"post_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Body    string    `json:"body"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Active  bool      `json:"active"`
}

type SearchResult struct {
	Post       *Post   `json:"post"`
	Similarity float64 `json:"similarity"`
}
