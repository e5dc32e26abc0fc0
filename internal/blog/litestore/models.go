package litestore

import (
	"time"

	"github.com/2beens/serjblog/internal/blog"
)

type Author struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"size:150;uniqueIndex;not null"`
}

func (Author) TableName() string { return "blog_author" }

type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;not null"`
	Slug string `gorm:"size:100;uniqueIndex;not null"`
}

func (Tag) TableName() string { return "blog_tag" }

type Post struct {
	ID       uint      `gorm:"primaryKey"`
	Title    string    `gorm:"size:250;not null"`
	Slug     string    `gorm:"size:250;not null;index"`
	AuthorID uint      `gorm:"not null"`
	Author   Author    `gorm:"constraint:OnDelete:RESTRICT"`
	Body     string    `gorm:"not null"`
	Publish  time.Time `gorm:"not null;index"`
	Created  time.Time `gorm:"not null"`
	Updated  time.Time `gorm:"not null"`
	Status   string    `gorm:"size:10;not null;index"`
	Tags     []Tag     `gorm:"many2many:blog_post_tags;"`
}

func (Post) TableName() string { return "blog_post" }

type Comment struct {
	ID      uint      `gorm:"primaryKey"`
	PostID  uint      `gorm:"not null;index"`
	Name    string    `gorm:"size:80;not null"`
	Email   string    `gorm:"size:254;not null"`
	Body    string    `gorm:"not null"`
	Created time.Time `gorm:"not null;index"`
	Updated time.Time `gorm:"not null"`
	Active  bool      `gorm:"not null"`
}

func (Comment) TableName() string { return "blog_comment" }

func (p *Post) toBlog() *blog.Post {
	tags := make([]blog.Tag, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, t.toBlog())
	}

	return &blog.Post{
		ID:       int(p.ID),
		Title:    p.Title,
		Slug:     p.Slug,
		AuthorID: int(p.AuthorID),
		Author:   p.Author.Username,
		Body:     p.Body,
		Publish:  p.Publish.UTC(),
		Created:  p.Created.UTC(),
		Updated:  p.Updated.UTC(),
		Status:   blog.Status(p.Status),
		Tags:     tags,
	}
}

func (t Tag) toBlog() blog.Tag {
	return blog.Tag{
		ID:   int(t.ID),
		Name: t.Name,
		Slug: t.Slug,
	}
}

func (c *Comment) toBlog() *blog.Comment {
	return &blog.Comment{
		ID:      int(c.ID),
		PostID:  int(c.PostID),
		Name:    c.Name,
		Email:   c.Email,
		Body:    c.Body,
		Created: c.Created.UTC(),
		Updated: c.Updated.UTC(),
		Active:  c.Active,
	}
}

func posts2blog(posts []Post) []*blog.Post {
	res := make([]*blog.Post, 0, len(posts))
	for i := range posts {
		res = append(res, posts[i].toBlog())
	}
	return res
}
