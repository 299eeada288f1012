package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogtracker/internal/telemetry/tracing"
)

const postColumns = `id::text, title, content, author_id, created_at, updated_at, is_public, tags`

var _ postsRepo = (*PsqlRepo)(nil)

// PsqlRepo keeps blog posts in the postgres blog_post table
type PsqlRepo struct {
	db *pgxpool.Pool
}

func NewPsqlRepo(db *pgxpool.Pool) *PsqlRepo {
	return &PsqlRepo{
		db: db,
	}
}

func (r *PsqlRepo) Add(ctx context.Context, rec *Record) (string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Add")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO blog_post (title, content, author_id, created_at, updated_at, is_public, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id::text;`,
		rec.Title, rec.Content, rec.AuthorID, rec.CreatedAt, rec.UpdatedAt, rec.IsPublic, rec.Tags,
	)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", err
		}
		return "", errors.New("unexpected error, failed to insert blog post")
	}

	var id string
	if err := rows.Scan(&id); err != nil {
		return "", fmt.Errorf("rows scan: %w", err)
	}

	return id, nil
}

func (r *PsqlRepo) Get(ctx context.Context, id string) (*Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Get")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	postID, err := uuid.Parse(id)
	if err != nil {
		log.Tracef("get blog post, invalid id [%s]: %s", id, err)
		return nil, ErrPostNotFound
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+postColumns+` FROM blog_post WHERE id = $1;`,
		postID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs, err := r.rows2records(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrPostNotFound
	}

	return recs[0], nil
}

func (r *PsqlRepo) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.List")
	span.SetAttributes(attribute.Bool("public_only", filter.PublicOnly))
	defer span.End()

	var conditions []string
	var args []interface{}
	if filter.PublicOnly {
		// absent is_public counts as public, same as in project()
		conditions = append(conditions, "COALESCE(is_public, TRUE)")
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM blog_post`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2records(rows)
}

// Update applies the non-nil patch fields and sets updated_at, in one statement
func (r *PsqlRepo) Update(ctx context.Context, id string, patch PostPatch, updatedAt time.Time) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Update")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	postID, err := uuid.Parse(id)
	if err != nil {
		return ErrPostNotFound
	}

	args := []interface{}{updatedAt}
	sets := []string{"updated_at = $1"}
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.Content != nil {
		addSet("content", *patch.Content)
	}
	if patch.IsPublic != nil {
		addSet("is_public", *patch.IsPublic)
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		addSet("tags", tags)
	}

	args = append(args, postID.String())
	query := fmt.Sprintf(
		`UPDATE blog_post SET %s WHERE id = $%d;`,
		strings.Join(sets, ", "), len(args),
	)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

func (r *PsqlRepo) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Delete")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	postID, err := uuid.Parse(id)
	if err != nil {
		return ErrPostNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM blog_post WHERE id = $1`, postID.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PsqlRepo) rows2records(rows pgx.Rows) ([]*Record, error) {
	var recs []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(
			&rec.ID,
			&rec.Title,
			&rec.Content,
			&rec.AuthorID,
			&rec.CreatedAt,
			&rec.UpdatedAt,
			&rec.IsPublic,
			&rec.Tags,
		); err != nil {
			return nil, err
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		if rec.UpdatedAt != nil {
			updatedAt := rec.UpdatedAt.UTC()
			rec.UpdatedAt = &updatedAt
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
