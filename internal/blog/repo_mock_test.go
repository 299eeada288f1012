package blog

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

var _ postsRepo = (*repoMock)(nil)

// repoMock is an in-memory postsRepo; records are copied in and out
type repoMock struct {
	Posts  map[string]*Record
	nextID int
	mutex  sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Posts: make(map[string]*Record),
	}
}

func (r *repoMock) PostsCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.Posts)
}

func (r *repoMock) Add(_ context.Context, rec *Record) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.nextID++
	id := strconv.Itoa(r.nextID)
	stored := copyRecord(rec)
	stored.ID = id
	r.Posts[id] = stored

	return id, nil
}

func (r *repoMock) Get(_ context.Context, id string) (*Record, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec, ok := r.Posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	return copyRecord(rec), nil
}

func (r *repoMock) List(_ context.Context, filter ListFilter) ([]*Record, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var recs []*Record
	for _, rec := range r.Posts {
		if filter.PublicOnly && rec.IsPublic != nil && !*rec.IsPublic {
			continue
		}
		if filter.AuthorID != "" && rec.AuthorID != filter.AuthorID {
			continue
		}
		recs = append(recs, copyRecord(rec))
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	return recs, nil
}

func (r *repoMock) Update(_ context.Context, id string, patch PostPatch, updatedAt time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec, ok := r.Posts[id]
	if !ok {
		return ErrPostNotFound
	}

	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Content != nil {
		rec.Content = *patch.Content
	}
	if patch.IsPublic != nil {
		isPublic := *patch.IsPublic
		rec.IsPublic = &isPublic
	}
	if patch.Tags != nil {
		rec.Tags = append([]string{}, *patch.Tags...)
	}
	rec.UpdatedAt = &updatedAt

	return nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(r.Posts, id)
	return nil
}

func copyRecord(rec *Record) *Record {
	c := *rec
	if rec.UpdatedAt != nil {
		updatedAt := *rec.UpdatedAt
		c.UpdatedAt = &updatedAt
	}
	if rec.IsPublic != nil {
		isPublic := *rec.IsPublic
		c.IsPublic = &isPublic
	}
	if rec.Tags != nil {
		c.Tags = append([]string{}, rec.Tags...)
	}
	return &c
}
