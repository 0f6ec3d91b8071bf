package blog

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ blogRepo = (*repoMock)(nil)

type repoMock struct {
	Posts    map[int]*Post
	Comments map[int][]*Comment
	// author names, resolved on insert like the join in the real repo
	Authors map[int]string

	lastID int
	calls  map[string]int
	mutex  sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Posts:    make(map[int]*Post),
		Comments: make(map[int][]*Comment),
		Authors:  map[int]string{1: "Admin", 2: "Ana"},
		calls:    make(map[string]int),
	}
}

func (r *repoMock) PostsCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.Posts)
}

func (r *repoMock) Calls(method string) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.calls[method]
}

func (r *repoMock) ResetCalls() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls = make(map[string]int)
}

func (r *repoMock) titleTaken(title string, exceptID int) bool {
	for id, p := range r.Posts {
		if p.Title == title && id != exceptID {
			return true
		}
	}
	return false
}

func (r *repoMock) AddPost(_ context.Context, post *Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls["AddPost"]++

	if r.titleTaken(post.Title, 0) {
		return ErrPostTitleTaken
	}

	r.lastID++
	post.ID = r.lastID
	post.AuthorName = r.Authors[post.AuthorID]
	stored := *post
	r.Posts[post.ID] = &stored
	return nil
}

func (r *repoMock) UpdatePost(_ context.Context, post *Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls["UpdatePost"]++

	stored, ok := r.Posts[post.ID]
	if !ok {
		return ErrPostNotFound
	}
	if r.titleTaken(post.Title, post.ID) {
		return ErrPostTitleTaken
	}

	stored.Title = post.Title
	stored.Subtitle = post.Subtitle
	stored.Body = post.Body
	stored.ImgURL = post.ImgURL
	return nil
}

func (r *repoMock) DeletePost(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls["DeletePost"]++

	if _, ok := r.Posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(r.Posts, id)
	delete(r.Comments, id)
	return nil
}

func (r *repoMock) All(_ context.Context) ([]*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls["All"]++

	var posts []*Post
	for _, p := range r.Posts {
		post := *p
		posts = append(posts, &post)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (r *repoMock) GetPost(_ context.Context, id int) (*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls["GetPost"]++

	p, ok := r.Posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	post := *p
	return &post, nil
}

func (r *repoMock) AddComment(_ context.Context, comment *Comment) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls["AddComment"]++

	if _, ok := r.Posts[comment.PostID]; !ok {
		return ErrPostNotFound
	}

	comment.ID = len(r.Comments[comment.PostID]) + 1
	comment.AuthorName = r.Authors[comment.AuthorID]
	comment.CreatedAt = time.Now()
	r.Comments[comment.PostID] = append(r.Comments[comment.PostID], comment)
	return nil
}

func (r *repoMock) PostComments(_ context.Context, postID int) ([]*Comment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.calls["PostComments"]++

	return append([]*Comment(nil), r.Comments[postID]...), nil
}
