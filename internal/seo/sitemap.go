// Package seo builds the XML sitemap of published blog posts.
package seo

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/2beens/serjblog/internal/blog"
)

const (
	XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	PostChangeFreq = "weekly"
	PostPriority   = "0.9"
)

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type SitemapBuilder struct {
	siteURL string
	urls    []URL
}

func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		urls:    make([]URL, 0),
	}
}

// AddPost adds the post page; lastmod is the last time the post was edited.
func (b *SitemapBuilder) AddPost(post *blog.Post) {
	u := URL{
		Loc:        b.siteURL + post.AbsolutePath(),
		ChangeFreq: PostChangeFreq,
		Priority:   PostPriority,
	}
	if !post.Updated.IsZero() {
		u.LastMod = post.Updated.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, u)
}

func (b *SitemapBuilder) AddPosts(posts []*blog.Post) {
	for _, p := range posts {
		if p.Status != blog.StatusPublished {
			continue
		}
		b.AddPost(p)
	}
}

func (b *SitemapBuilder) Build() ([]byte, error) {
	xmlBytes, err := xml.MarshalIndent(URLSet{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), xmlBytes...), nil
}
