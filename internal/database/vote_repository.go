package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Roopaish/post-it/internal/domain"
)

// VoteRepo implements domain.VoteRepository backed by PostgreSQL.
//
// Cast and Switch pair the ledger mutation with the compensating score update
// in one transaction, so a post's score always equals the signed sum of its
// ledger entries. The score update runs as an in-database increment, never a
// read-modify-write, so concurrent voters cannot lose updates.
type VoteRepo struct {
	pool *pgxpool.Pool
}

// NewVoteRepo creates a VoteRepo from the shared connection pool.
func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

func (r *VoteRepo) Get(ctx context.Context, userID, postID int64) (*domain.Vote, error) {
	var vote domain.Vote
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, post_id, value
		FROM vote_ledger
		WHERE user_id = $1 AND post_id = $2
	`, userID, postID).Scan(&vote.UserID, &vote.PostID, &vote.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}

// Cast records a first vote. The (user_id, post_id) primary key is the
// serialization point for concurrent votes by the same user: exactly one
// insert wins, the loser gets ErrVoteExists.
func (r *VoteRepo) Cast(ctx context.Context, userID, postID int64, value int16) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, `
		INSERT INTO vote_ledger (user_id, post_id, value)
		VALUES ($1, $2, $3)
	`, userID, postID, value)
	switch {
	case isPgError(err, pgUniqueViolation):
		return domain.ErrVoteExists
	case isPgError(err, pgForeignKeyViolation):
		return domain.ErrPostNotFound
	case err != nil:
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE posts SET score = score + $1 WHERE id = $2`, value, postID)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Switch flips an existing vote to value and adjusts the score by 2*value:
// one unit cancels the prior vote, one applies the new one.
func (r *VoteRepo) Switch(ctx context.Context, userID, postID int64, value int16) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx, `
		UPDATE vote_ledger
		SET value = $1
		WHERE user_id = $2 AND post_id = $3
	`, value, userID, postID)
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVoteNotFound
	}

	tag, err = tx.Exec(ctx,
		`UPDATE posts SET score = score + $1 WHERE id = $2`, 2*value, postID)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
