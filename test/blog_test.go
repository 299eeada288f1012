//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/blogtracker/internal/blog"
	"github.com/2beens/blogtracker/pkg"
)

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	t *testing.T,
	method, path, token string,
	body any,
) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	return resp
}

func strPtr(s string) *string {
	return &s
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *IntegrationTestSuite) createPost(ctx context.Context, t *testing.T, token string, req blog.NewPostRequest) blog.Post {
	t.Helper()
	resp := s.doRequest(ctx, t, http.MethodPost, "/blogs/", token, req)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[blog.Post](t, resp)
}

func (s *IntegrationTestSuite) TestBlogSchema() {
	var columns []string
	rows, err := s.internals.DB.Query(
		`SELECT column_name FROM information_schema.columns
		WHERE table_name = 'blog_post' ORDER BY ordinal_position`,
	)
	s.Require().NoError(err)
	defer rows.Close()

	for rows.Next() {
		var column string
		s.Require().NoError(rows.Scan(&column))
		columns = append(columns, column)
	}
	s.Require().NoError(rows.Err())

	s.ElementsMatch(
		[]string{"id", "title", "content", "author_id", "created_at", "updated_at", "is_public", "tags"},
		columns,
	)
}

func (s *IntegrationTestSuite) TestBlogs() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.T().Run("create without credential", func(t *testing.T) {
		resp := s.doRequest(ctx, t, http.MethodPost, "/blogs/", "", blog.NewPostRequest{
			Title:   "t",
			Content: strPtr("c"),
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Authorization header missing", decodeBody[pkg.ErrorResponse](t, resp).Detail)
	})

	s.T().Run("create with invalid body", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverEndpoint+"/blogs/", bytes.NewBufferString("{not json"))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tokenAna)

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	s.T().Run("create with empty title", func(t *testing.T) {
		resp := s.doRequest(ctx, t, http.MethodPost, "/blogs", tokenAna, blog.NewPostRequest{
			Title:   "  ",
			Content: strPtr("c"),
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	private := false
	postPublic := s.createPost(ctx, s.T(), tokenAna, blog.NewPostRequest{
		Title:   gofakeit.Sentence(4),
		Content: strPtr(gofakeit.Paragraph(1, 3, 10, " ")),
	})
	postPrivate := s.createPost(ctx, s.T(), tokenAna, blog.NewPostRequest{
		Title:    gofakeit.Sentence(4),
		Content:  strPtr(gofakeit.Paragraph(1, 3, 10, " ")),
		IsPublic: &private,
		Tags:     []string{"draft", "go"},
	})
	postBojan := s.createPost(ctx, s.T(), tokenBojan, blog.NewPostRequest{
		Title:   gofakeit.Sentence(4),
		Content: strPtr(gofakeit.Paragraph(1, 3, 10, " ")),
		Tags:    []string{"travel"},
	})

	s.T().Run("created posts", func(t *testing.T) {
		assert.Equal(t, "uid-ana", postPublic.AuthorID)
		assert.True(t, postPublic.IsPublic)
		assert.NotNil(t, postPublic.Tags)
		assert.Empty(t, postPublic.Tags)
		assert.Nil(t, postPublic.UpdatedAt)
		assert.False(t, postPublic.CreatedAt.IsZero())

		assert.False(t, postPrivate.IsPublic)
		assert.Equal(t, []string{"draft", "go"}, postPrivate.Tags)
		assert.Equal(t, "uid-bojan", postBojan.AuthorID)
	})

	s.T().Run("public listing", func(t *testing.T) {
		resp := s.doRequest(ctx, t, http.MethodGet, "/blogs/public", "", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		posts := decodeBody[[]blog.Post](t, resp)
		require.Len(t, posts, 2)
		// newest first
		assert.Equal(t, postBojan.ID, posts[0].ID)
		assert.Equal(t, postPublic.ID, posts[1].ID)
	})

	s.T().Run("my posts", func(t *testing.T) {
		resp := s.doRequest(ctx, t, http.MethodGet, "/blogs/me", tokenAna, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		posts := decodeBody[[]blog.Post](t, resp)
		require.Len(t, posts, 2)
		assert.Equal(t, postPrivate.ID, posts[0].ID)
		assert.Equal(t, postPublic.ID, posts[1].ID)

		resp = s.doRequest(ctx, t, http.MethodGet, "/blogs/me", "", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	s.T().Run("get by id", func(t *testing.T) {
		resp := s.doRequest(ctx, t, http.MethodGet, "/blogs/"+postPublic.ID, "", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, postPublic.Title, decodeBody[blog.Post](t, resp).Title)

		// private post is hidden from anonymous callers and other users
		resp = s.doRequest(ctx, t, http.MethodGet, "/blogs/"+postPrivate.ID, "", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = s.doRequest(ctx, t, http.MethodGet, "/blogs/"+postPrivate.ID, tokenBojan, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = s.doRequest(ctx, t, http.MethodGet, "/blogs/"+postPrivate.ID, tokenAna, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// a bad credential is rejected even where auth is optional
		resp = s.doRequest(ctx, t, http.MethodGet, "/blogs/"+postPublic.ID, "bad-token", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	s.T().Run("update", func(t *testing.T) {
		newTitle := "updated title"
		emptyTags := []string{}
		patch := blog.PostPatch{Title: &newTitle, Tags: &emptyTags}

		resp := s.doRequest(ctx, t, http.MethodPut, "/blogs/"+postPrivate.ID, tokenBojan, patch)
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Not authorized", decodeBody[pkg.ErrorResponse](t, resp).Detail)

		resp = s.doRequest(ctx, t, http.MethodPut, "/blogs/"+postPrivate.ID, tokenAna, patch)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		updated := decodeBody[blog.Post](t, resp)
		assert.Equal(t, postPrivate.ID, updated.ID)
		assert.Equal(t, newTitle, updated.Title)
		assert.Equal(t, postPrivate.Content, updated.Content)
		assert.Equal(t, "uid-ana", updated.AuthorID)
		assert.True(t, postPrivate.CreatedAt.Equal(updated.CreatedAt))
		require.NotNil(t, updated.UpdatedAt)
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
		assert.Empty(t, updated.Tags)
		assert.False(t, updated.IsPublic)

		resp = s.doRequest(ctx, t, http.MethodPut, "/blogs/00000000-0000-0000-0000-000000000000", tokenAna, patch)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Blog not found", decodeBody[pkg.ErrorResponse](t, resp).Detail)

		resp = s.doRequest(ctx, t, http.MethodPut, "/blogs/not-an-id", tokenAna, patch)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	s.T().Run("delete", func(t *testing.T) {
		resp := s.doRequest(ctx, t, http.MethodDelete, "/blogs/"+postBojan.ID, tokenAna, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = s.doRequest(ctx, t, http.MethodDelete, "/blogs/"+postBojan.ID, tokenBojan, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Blog deleted successfully", decodeBody[blog.MessageResponse](t, resp).Message)

		resp = s.doRequest(ctx, t, http.MethodDelete, "/blogs/"+postBojan.ID, tokenBojan, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = s.doRequest(ctx, t, http.MethodGet, "/blogs/public", "", nil)
		defer resp.Body.Close()
		posts := decodeBody[[]blog.Post](t, resp)
		require.Len(t, posts, 1)
		assert.Equal(t, postPublic.ID, posts[0].ID)
	})
}
