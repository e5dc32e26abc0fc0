//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/serjblog/internal/blog"
)

type listResponse struct {
	Posts []*blog.Post `json:"posts"`
	Page  blog.Page    `json:"page"`
	Tag   *blog.Tag    `json:"tag"`
}

type detailResponse struct {
	Post         *blog.Post      `json:"post"`
	Comments     []*blog.Comment `json:"comments"`
	SimilarPosts []*blog.Post    `json:"similar_posts"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Post       *blog.Post `json:"post"`
		Similarity float64    `json:"similarity"`
	} `json:"results"`
}

func (s *IntegrationTestSuite) addPost(ctx context.Context, author *blog.Author, title string, publish time.Time, tags ...blog.Tag) *blog.Post {
	p := &blog.Post{
		Title:    title,
		Slug:     fmt.Sprintf("%s-%d", gofakeit.LetterN(10), gofakeit.Number(1, 1_000_000)),
		AuthorID: author.ID,
		Body:     gofakeit.Paragraph(1, 3, 10, " "),
		Publish:  publish,
		Status:   blog.StatusPublished,
		Tags:     tags,
	}
	require.NoError(s.T(), s.repo.AddPost(ctx, p))
	return p
}

func (s *IntegrationTestSuite) newAuthor(ctx context.Context) *blog.Author {
	author, err := s.repo.AddAuthor(ctx, "author-"+gofakeit.LetterN(8))
	require.NoError(s.T(), err)
	return author
}

func (s *IntegrationTestSuite) getJSON(ctx context.Context, path string, target any) int {
	req, err := http.NewRequestWithContext(ctx, "GET", serverEndpoint+path, nil)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && target != nil {
		require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(target))
	}
	return resp.StatusCode
}

func (s *IntegrationTestSuite) postForm(ctx context.Context, path, clientIP string, form url.Values) *http.Response {
	req, err := http.NewRequestWithContext(ctx, "POST", serverEndpoint+path, strings.NewReader(form.Encode()))
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Real-Ip", clientIP)

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	return resp
}

func (s *IntegrationTestSuite) TestBlog_ListByTag() {
	ctx := context.Background()
	author := s.newAuthor(ctx)
	tag := blog.Tag{Name: "Tag " + gofakeit.LetterN(8)}
	tag.Slug = strings.ToLower(strings.ReplaceAll(tag.Name, " ", "-"))

	base := time.Now().Add(-48 * time.Hour).UTC().Truncate(time.Second)
	var added []*blog.Post
	for i := range 4 {
		added = append(added, s.addPost(ctx, author, gofakeit.Sentence(4), base.Add(time.Duration(i)*time.Hour), tag))
	}

	var first listResponse
	s.Require().Equal(http.StatusOK, s.getJSON(ctx, "/blog/tag/"+tag.Slug+"/", &first))
	s.Require().Len(first.Posts, 3)
	s.Equal(added[3].ID, first.Posts[0].ID)
	s.Equal(added[1].ID, first.Posts[2].ID)
	s.Equal(2, first.Page.NumPages)
	s.True(first.Page.HasNext)
	s.Require().NotNil(first.Tag)
	s.Equal(tag.Slug, first.Tag.Slug)

	var last listResponse
	s.Require().Equal(http.StatusOK, s.getJSON(ctx, "/blog/tag/"+tag.Slug+"/?page=42", &last))
	s.Require().Len(last.Posts, 1)
	s.Equal(added[0].ID, last.Posts[0].ID)
	s.Equal(2, last.Page.Number)

	s.Equal(http.StatusNotFound, s.getJSON(ctx, "/blog/tag/no-such-tag-"+gofakeit.LetterN(6)+"/", nil))
}

func (s *IntegrationTestSuite) TestBlog_DetailAndComments() {
	ctx := context.Background()
	author := s.newAuthor(ctx)
	tag := blog.Tag{Name: "go", Slug: "go"}

	publish := time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second)
	post := s.addPost(ctx, author, gofakeit.Sentence(5), publish, tag)
	similar := s.addPost(ctx, author, gofakeit.Sentence(5), publish.Add(-time.Hour), tag)

	var detail detailResponse
	s.Require().Equal(http.StatusOK, s.getJSON(ctx, post.AbsolutePath(), &detail))
	s.Equal(post.ID, detail.Post.ID)
	s.Equal(author.Username, detail.Post.Author)
	s.Empty(detail.Comments)
	s.LessOrEqual(len(detail.SimilarPosts), 4)
	similarIDs := make([]int, 0, len(detail.SimilarPosts))
	for _, p := range detail.SimilarPosts {
		s.NotEqual(post.ID, p.ID)
		similarIDs = append(similarIDs, p.ID)
	}
	s.Contains(similarIDs, similar.ID)

	commentPath := fmt.Sprintf("/blog/%d/comment/", post.ID)
	clientIP := testClientIP()
	resp := s.postForm(ctx, commentPath, clientIP, url.Values{
		"name":  {"Ana"},
		"email": {"ana@example.com"},
		"body":  {"<b>Great</b> post!"},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var created struct {
		Comment *blog.Comment `json:"comment"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&created))
	s.Require().NoError(resp.Body.Close())
	s.True(created.Comment.Active)
	s.Equal("Great post!", created.Comment.Body)

	resp = s.postForm(ctx, commentPath, clientIP, url.Values{"name": {"Ana"}, "email": {"not-an-email"}})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Require().NoError(resp.Body.Close())

	detail = detailResponse{}
	s.Require().Equal(http.StatusOK, s.getJSON(ctx, post.AbsolutePath(), &detail))
	s.Require().Len(detail.Comments, 1)
	s.Equal(created.Comment.ID, detail.Comments[0].ID)

	s.Require().NoError(s.repo.SetCommentActive(ctx, created.Comment.ID, false))
	detail = detailResponse{}
	s.Require().Equal(http.StatusOK, s.getJSON(ctx, post.AbsolutePath(), &detail))
	s.Empty(detail.Comments)

	wrongDay := publish.AddDate(0, 0, -1)
	s.Equal(http.StatusNotFound, s.getJSON(ctx, fmt.Sprintf(
		"/blog/%d/%d/%d/%s/", wrongDay.Year(), int(wrongDay.Month()), wrongDay.Day(), post.Slug,
	), nil))
}

func (s *IntegrationTestSuite) TestBlog_CommentRateLimited() {
	ctx := context.Background()
	post := s.addPost(ctx, s.newAuthor(ctx), gofakeit.Sentence(3), time.Now().Add(-time.Hour))

	clientIP := testClientIP()
	commentPath := fmt.Sprintf("/blog/%d/comment/", post.ID)
	form := url.Values{
		"name":  {"Bob"},
		"email": {"bob@example.com"},
		"body":  {"spam"},
	}
	for range testCommentsAllowedPerMin {
		resp := s.postForm(ctx, commentPath, clientIP, form)
		s.Equal(http.StatusCreated, resp.StatusCode)
		s.Require().NoError(resp.Body.Close())
	}

	resp := s.postForm(ctx, commentPath, clientIP, form)
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.Require().NoError(resp.Body.Close())

	// other clients are not affected
	resp = s.postForm(ctx, commentPath, testClientIP(), form)
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Require().NoError(resp.Body.Close())
}

func (s *IntegrationTestSuite) TestBlog_Share() {
	ctx := context.Background()
	post := s.addPost(ctx, s.newAuthor(ctx), gofakeit.Sentence(3), time.Now().Add(-time.Hour))
	sharePath := fmt.Sprintf("/blog/%d/share/", post.ID)

	s.Equal(http.StatusOK, s.getJSON(ctx, sharePath, nil))

	resp := s.postForm(ctx, sharePath, testClientIP(), url.Values{
		"name":     {"Ana"},
		"email":    {"ana@example.com"},
		"to":       {"bob@example.com"},
		"comments": {"worth a read"},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var shared struct {
		Sent bool `json:"sent"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&shared))
	s.Require().NoError(resp.Body.Close())
	s.True(shared.Sent)

	resp = s.postForm(ctx, sharePath, testClientIP(), url.Values{"name": {"Ana"}})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Require().NoError(resp.Body.Close())
}

func (s *IntegrationTestSuite) TestBlog_Search() {
	ctx := context.Background()
	author := s.newAuthor(ctx)
	title := "Quokka " + gofakeit.LetterN(12)
	post := s.addPost(ctx, author, title, time.Now().Add(-time.Hour))

	var res searchResponse
	s.Require().Equal(http.StatusOK, s.getJSON(ctx, "/blog/search/?query="+url.QueryEscape(title), &res))
	s.Equal(title, res.Query)
	s.Require().NotEmpty(res.Results)
	s.Equal(post.ID, res.Results[0].Post.ID)
	s.InDelta(1.0, res.Results[0].Similarity, 0.0001)
	for _, r := range res.Results {
		s.Greater(r.Similarity, 0.1)
	}

	res = searchResponse{}
	s.Require().Equal(http.StatusOK, s.getJSON(ctx, "/blog/search/", &res))
	s.Empty(res.Results)
}

func (s *IntegrationTestSuite) TestSitemap() {
	ctx := context.Background()
	post := s.addPost(ctx, s.newAuthor(ctx), gofakeit.Sentence(3), time.Now().Add(-time.Hour))

	req, err := http.NewRequestWithContext(ctx, "GET", serverEndpoint+"/sitemap.xml", nil)
	s.Require().NoError(err)
	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	assert.Contains(s.T(), string(body), "<loc>https://blog.serj-tubin.com"+post.AbsolutePath()+"</loc>")
	assert.Contains(s.T(), string(body), "<changefreq>weekly</changefreq>")
	assert.Contains(s.T(), string(body), "<priority>0.9</priority>")
}

func (s *IntegrationTestSuite) TestCors() {
	ctx := context.Background()
	req, err := http.NewRequestWithContext(ctx, "GET", serverEndpoint+"/blog/", nil)
	s.Require().NoError(err)
	req.Header.Set("Origin", "https://evil.example.com")

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	s.Require().NoError(resp.Body.Close())
	s.Equal(http.StatusForbidden, resp.StatusCode)

	req.Header.Set("Origin", "https://www.serj-tubin.com")
	resp, err = s.httpClient.Do(req)
	s.Require().NoError(err)
	s.Require().NoError(resp.Body.Close())
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("https://www.serj-tubin.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

// testClientIP returns a random public address, so each test gets its own
// rate limiting bucket.
func testClientIP() string {
	return fmt.Sprintf("84.%d.%d.%d", gofakeit.Number(0, 255), gofakeit.Number(0, 255), gofakeit.Number(1, 254))
}
