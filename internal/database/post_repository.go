package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Roopaish/post-it/internal/domain"
)

// postColumns must match the Scan order in scanPost. The trailing value
// column is the viewer's ledger entry, NULL for anonymous viewers.
const postColumns = `p.id, p.title, p.text, p.score, p.creator_id, p.created_at, u.username, v.value`

// PostRepo implements domain.PostRepository backed by PostgreSQL.
type PostRepo struct {
	pool *pgxpool.Pool
}

// NewPostRepo creates a PostRepo from the shared connection pool.
func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID, &post.Title, &post.Text, &post.Score,
		&post.CreatorID, &post.CreatedAt, &post.Creator, &post.VoteStatus,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepo) Create(ctx context.Context, creatorID int64, title, text string) (*domain.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO posts (title, text, creator_id)
			VALUES ($1, $2, $3)
			RETURNING id, title, text, score, creator_id, created_at
		)
		SELECT p.id, p.title, p.text, p.score, p.creator_id, p.created_at, u.username, NULL::smallint
		FROM inserted p
		JOIN users u ON u.id = p.creator_id
	`, title, text, creatorID))
	if isPgError(err, pgForeignKeyViolation) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (r *PostRepo) GetByID(ctx context.Context, id int64, viewerID *int64) (*domain.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		LEFT JOIN vote_ledger v ON v.post_id = p.id AND v.user_id = $2
		WHERE p.id = $1
	`, id, viewerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}
	return post, nil
}

// Update modifies a post's title and text, scoped to its creator.
// A missing post and someone else's post are indistinguishable to the caller.
func (r *PostRepo) Update(ctx context.Context, creatorID, id int64, title, text string) (*domain.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE posts
			SET title = $1, text = $2
			WHERE id = $3 AND creator_id = $4
			RETURNING id, title, text, score, creator_id, created_at
		)
		SELECT p.id, p.title, p.text, p.score, p.creator_id, p.created_at, u.username, NULL::smallint
		FROM updated p
		JOIN users u ON u.id = p.creator_id
	`, title, text, id, creatorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

// Delete removes a post, scoped to its creator. Ledger rows cascade.
func (r *PostRepo) Delete(ctx context.Context, creatorID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM posts WHERE id = $1 AND creator_id = $2`, id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// ListNewest fetches posts ordered by creation time descending, restricted to
// rows created strictly before the boundary when non-nil. The id tie-break
// keeps the order stable when two posts share a timestamp.
func (r *PostRepo) ListNewest(ctx context.Context, limit int, before *time.Time, viewerID *int64) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		LEFT JOIN vote_ledger v ON v.post_id = p.id AND v.user_id = $1
		WHERE $2::timestamptz IS NULL OR p.created_at < $2
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3
	`, viewerID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}
	return posts, nil
}
