package blog

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPostNotFound = errors.New("blog not found")
	ErrForbidden    = errors.New("not authorized")
	ErrValidation   = errors.New("validation error")
)

// StorageError wraps any unexpected failure of the backing store
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [%s]: %s", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Post is the normalized blog post, as returned to clients
type Post struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	AuthorID  string     `json:"authorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
	IsPublic  bool       `json:"isPublic"`
	Tags      []string   `json:"tags"`
}

// Record is a blog post as it is kept in the store. Optional fields may be
// absent on older records; project() is the only place defaults are applied.
type Record struct {
	ID        string
	Title     string
	Content   string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt *time.Time
	IsPublic  *bool
	Tags      []string
}

// NewPostRequest is the body of a create request. Content may be empty but
// not absent or null.
type NewPostRequest struct {
	Title    string   `json:"title"`
	Content  *string  `json:"content"`
	IsPublic *bool    `json:"isPublic"`
	Tags     []string `json:"tags"`
}

// PostPatch holds the fields of a partial update. A nil field is left untouched,
// a non-nil one is applied even if empty or false.
type PostPatch struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	IsPublic *bool     `json:"isPublic"`
	Tags     *[]string `json:"tags"`
}

func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.IsPublic == nil && p.Tags == nil
}

// ListFilter selects posts for a listing; the result is always newest first
type ListFilter struct {
	AuthorID   string
	PublicOnly bool
}

func project(rec *Record) *Post {
	post := &Post{
		ID:        rec.ID,
		Title:     rec.Title,
		Content:   rec.Content,
		AuthorID:  rec.AuthorID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		IsPublic:  true,
		Tags:      []string{},
	}
	if rec.IsPublic != nil {
		post.IsPublic = *rec.IsPublic
	}
	if len(rec.Tags) > 0 {
		post.Tags = append(post.Tags, rec.Tags...)
	}
	return post
}

func projectAll(recs []*Record) []*Post {
	posts := make([]*Post, 0, len(recs))
	for _, rec := range recs {
		posts = append(posts, project(rec))
	}
	return posts
}
