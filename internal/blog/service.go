package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/2beens/blogtracker/internal/auth"
	"github.com/2beens/blogtracker/internal/telemetry/metrics"
	"github.com/2beens/blogtracker/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=repo_mocks_test.go -package=blog

// postsRepo is the raw-record storage facade; implementations report missing or
// unparsable ids as ErrPostNotFound
type postsRepo interface {
	Add(ctx context.Context, rec *Record) (string, error)
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
	Update(ctx context.Context, id string, patch PostPatch, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo           postsRepo
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(repo postsRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (s *Service) Create(ctx context.Context, principal *auth.Principal, req NewPostRequest) (_ *Post, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogService.Create")
	defer func() {
		s.endOp(span, "create", err)
	}()

	if principal == nil {
		return nil, auth.ErrMissingCredential
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.Content == nil {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	tags := []string{}
	if req.Tags != nil {
		tags = append(tags, req.Tags...)
	}

	rec := &Record{
		Title:     req.Title,
		Content:   *req.Content,
		AuthorID:  principal.SubjectID,
		CreatedAt: s.timestamp(),
		IsPublic:  &isPublic,
		Tags:      tags,
	}

	id, err := s.repo.Add(ctx, rec)
	if err != nil {
		return nil, &StorageError{Op: "add", Err: err}
	}
	span.SetAttributes(attribute.String("id", id))

	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "get created", Err: err}
	}

	log.Tracef("new blog post %s [%s] added by %s", id, rec.Title, rec.AuthorID)

	return project(stored), nil
}

func (s *Service) ListPublic(ctx context.Context) (_ []*Post, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogService.ListPublic")
	defer func() {
		s.endOp(span, "list_public", err)
	}()

	recs, err := s.repo.List(ctx, ListFilter{PublicOnly: true})
	if err != nil {
		return nil, &StorageError{Op: "list public", Err: err}
	}

	return projectAll(recs), nil
}

func (s *Service) ListMine(ctx context.Context, principal *auth.Principal) (_ []*Post, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogService.ListMine")
	defer func() {
		s.endOp(span, "list_mine", err)
	}()

	if principal == nil {
		return nil, auth.ErrMissingCredential
	}

	recs, err := s.repo.List(ctx, ListFilter{AuthorID: principal.SubjectID})
	if err != nil {
		return nil, &StorageError{Op: "list mine", Err: err}
	}

	return projectAll(recs), nil
}

// Get returns a public post to anyone, and a private one only to its author.
// Private posts of other authors are reported as not found.
func (s *Service) Get(ctx context.Context, principal *auth.Principal, id string) (_ *Post, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogService.Get")
	span.SetAttributes(attribute.String("id", id))
	defer func() {
		s.endOp(span, "get", err)
	}()

	rec, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	post := project(rec)
	if !post.IsPublic && (principal == nil || principal.SubjectID != post.AuthorID) {
		return nil, ErrPostNotFound
	}

	return post, nil
}

func (s *Service) Update(ctx context.Context, principal *auth.Principal, id string, patch PostPatch) (_ *Post, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogService.Update")
	span.SetAttributes(attribute.String("id", id))
	defer func() {
		s.endOp(span, "update", err)
	}()

	existing, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}

	// updatedAt never goes back, not even when the clock does
	updatedAt := s.timestamp()
	if updatedAt.Before(existing.CreatedAt) {
		updatedAt = existing.CreatedAt
	}
	if existing.UpdatedAt != nil && updatedAt.Before(*existing.UpdatedAt) {
		updatedAt = *existing.UpdatedAt
	}

	if err := s.repo.Update(ctx, id, patch, updatedAt); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			// deleted concurrently
			return nil, ErrPostNotFound
		}
		return nil, &StorageError{Op: "update", Err: err}
	}

	updated, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Tracef("blog post %s updated by %s", id, principal.SubjectID)

	return project(updated), nil
}

func (s *Service) Delete(ctx context.Context, principal *auth.Principal, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogService.Delete")
	span.SetAttributes(attribute.String("id", id))
	defer func() {
		s.endOp(span, "delete", err)
	}()

	if _, err := s.owned(ctx, principal, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return ErrPostNotFound
		}
		return &StorageError{Op: "delete", Err: err}
	}

	log.Tracef("blog post %s deleted by %s", id, principal.SubjectID)

	return nil
}

// owned fetches the post and checks it belongs to the principal.
// Existence is checked first, so unknown ids never yield ErrForbidden.
func (s *Service) owned(ctx context.Context, principal *auth.Principal, id string) (*Record, error) {
	if principal == nil {
		return nil, auth.ErrMissingCredential
	}

	rec, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.AuthorID != principal.SubjectID {
		return nil, ErrForbidden
	}

	return rec, nil
}

func (s *Service) fetch(ctx context.Context, id string) (*Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, &StorageError{Op: "get", Err: err}
	}
	return rec, nil
}

// timestamp is the current time in UTC, truncated to what both stores keep
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) endOp(span trace.Span, op string, err error) {
	outcome := opOutcome(err)
	s.metricsManager.PostOp(op, outcome)
	if outcome == "error" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// opOutcome tells store failures apart from requests rejected because of the caller
func opOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return "error"
	}
	return "rejected"
}
