package models

import (
	"io"
	"time"
)

type Hashtag struct {
	ID   int    `json:"hashtag_id"`
	Name string `json:"name"`
}

type Image struct {
	ID  int    `json:"image_id"`
	URL string `json:"image_url"`
}

// Post is an engagement-bearing entity. LikeCount and IsLiked are observed
// for the identity attached to the request that fetched it.
type Post struct {
	ID        int       `json:"post_id"`
	Content   string    `json:"content"`
	UserID    int       `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	LikeCount int       `json:"like_count"`
	IsLiked   bool      `json:"is_liked"`
	Hashtags  []Hashtag `json:"hashtags"`
	Images    []Image   `json:"images"`
}

// Author returns the display name of the post's author, falling back to the
// numeric id when the API did not embed the user.
func (p Post) Author() string {
	if p.User != nil && p.User.Username != "" {
		return p.User.Username
	}
	return "user#" + itoa(p.UserID)
}

// File is an attachment uploaded with a new post.
type File struct {
	Name string
	// ContentType defaults to application/octet-stream when empty.
	ContentType string
	Reader      io.Reader
}

type PostCreate struct {
	Content string
	Files   []File
}

type PostUpdate struct {
	Content *string `json:"content,omitempty"`
}
