package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL, runs
// migrations, and truncates all tables. Tests using it are skipped when the
// variable is unset so the suite stays runnable without infrastructure.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrationsWithLock(ctx, pool))

	_, err = pool.Exec(ctx, `TRUNCATE users, posts, vote_ledger RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, username string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, password_hash)
		VALUES ($1, 'x')
		RETURNING id
	`, username).Scan(&id)
	require.NoError(t, err)
	return id
}

func createTestPost(t *testing.T, pool *pgxpool.Pool, creatorID int64, title string) int64 {
	t.Helper()
	return createTestPostAt(t, pool, creatorID, title, time.Now().UTC())
}

// createTestPostAt pins created_at so pagination tests control the ordering.
func createTestPostAt(t *testing.T, pool *pgxpool.Pool, creatorID int64, title string, createdAt time.Time) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO posts (title, text, creator_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, title, fmt.Sprintf("body of %s", title), creatorID, createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

func postScore(t *testing.T, pool *pgxpool.Pool, postID int64) int64 {
	t.Helper()

	var score int64
	err := pool.QueryRow(context.Background(),
		`SELECT score FROM posts WHERE id = $1`, postID).Scan(&score)
	require.NoError(t, err)
	return score
}

func ledgerSum(t *testing.T, pool *pgxpool.Pool, postID int64) int64 {
	t.Helper()

	var sum int64
	err := pool.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(value), 0) FROM vote_ledger WHERE post_id = $1`, postID).Scan(&sum)
	require.NoError(t, err)
	return sum
}
