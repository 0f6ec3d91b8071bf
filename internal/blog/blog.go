package blog

import (
	"errors"
	"time"
)

// DateLayout is how a post's publication date is stamped when it is created
const DateLayout = "January 02, 2006"

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrPostTitleTaken = errors.New("post title already exists")
)

type Post struct {
	ID         int    `json:"id"`
	AuthorID   int    `json:"author_id"`
	AuthorName string `json:"author_name"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Date       string `json:"date"`
	Body       string `json:"body"`
	ImgURL     string `json:"img_url"`
}

type Comment struct {
	ID          int
	PostID      int
	AuthorID    int
	AuthorName  string
	AuthorEmail string
	Text        string
	CreatedAt   time.Time
}
