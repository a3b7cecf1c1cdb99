package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContentStore persists events and updates in one posts table keyed by kind.
type ContentStore struct {
	pool *pgxpool.Pool
}

func NewContentStore(pool *pgxpool.Pool) *ContentStore {
	return &ContentStore{pool: pool}
}

const postColumns = `id, kind, title, body, created_at`

func (s *ContentStore) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	q := `
		INSERT INTO posts (kind, title, body)
		VALUES ($1, $2, $3)
		RETURNING ` + postColumns

	created, err := scanPost(s.pool.QueryRow(ctx, q, string(p.Kind), p.Title, p.Body))
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

func (s *ContentStore) GetPost(ctx context.Context, kind domain.PostKind, id string) (domain.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE kind = $1 AND id = $2`
	p, err := scanPost(s.pool.QueryRow(ctx, q, string(kind), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

var postFilterColumns = map[string]string{
	"title":     "title",
	"createdAt": "created_at",
}

func (s *ContentStore) ListPosts(ctx context.Context, kind domain.PostKind, params domain.ListParams) ([]domain.Post, error) {
	base := `SELECT ` + postColumns + ` FROM posts`
	q, args := buildListQuery(base, []string{"kind = $1"}, []any{string(kind)}, postFilterColumns, "created_at", params)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var out []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}

func (s *ContentStore) UpdatePost(ctx context.Context, kind domain.PostKind, id string, title, body *string) (domain.Post, error) {
	sets := []string{}
	args := []any{string(kind), id}
	if title != nil {
		args = append(args, *title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if body != nil {
		args = append(args, *body)
		sets = append(sets, fmt.Sprintf("body = $%d", len(args)))
	}
	if len(sets) == 0 {
		return s.GetPost(ctx, kind, id)
	}

	q := `UPDATE posts SET ` + strings.Join(sets, ", ") + ` WHERE kind = $1 AND id = $2 RETURNING ` + postColumns
	p, err := scanPost(s.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

func (s *ContentStore) DeletePost(ctx context.Context, kind domain.PostKind, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var (
		p      domain.Post
		idUUID pgtype.UUID
		kind   string
	)
	if err := row.Scan(&idUUID, &kind, &p.Title, &p.Body, &p.CreatedAt); err != nil {
		return domain.Post{}, err
	}
	p.ID = uuidOrEmpty(idUUID)
	p.Kind = domain.PostKind(kind)
	return p, nil
}
