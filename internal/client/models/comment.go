package models

import "time"

type Comment struct {
	ID        int       `json:"comment_id"`
	Content   string    `json:"content"`
	PostID    int       `json:"post_id"`
	UserID    int       `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Comment) Author() string {
	if c.User != nil && c.User.Username != "" {
		return c.User.Username
	}
	return "user#" + itoa(c.UserID)
}

type CommentCreate struct {
	Content string `json:"content"`
}

type CommentUpdate struct {
	Content string `json:"content"`
}
