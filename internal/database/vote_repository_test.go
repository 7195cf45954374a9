package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roopaish/post-it/internal/domain"
)

func TestVoteRepo_CastUpdatesScoreAndLedger(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewVoteRepo(pool)
	ctx := context.Background()

	alice := createTestUser(t, pool, "alice")
	bob := createTestUser(t, pool, "bob")
	post := createTestPost(t, pool, alice, "first")

	require.NoError(t, repo.Cast(ctx, alice, post, 1))
	require.NoError(t, repo.Cast(ctx, bob, post, -1))

	assert.Equal(t, int64(0), postScore(t, pool, post))
	assert.Equal(t, ledgerSum(t, pool, post), postScore(t, pool, post))

	vote, err := repo.Get(ctx, alice, post)
	require.NoError(t, err)
	assert.Equal(t, int16(1), vote.Value)
}

func TestVoteRepo_CastDuplicateFails(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewVoteRepo(pool)
	ctx := context.Background()

	alice := createTestUser(t, pool, "alice")
	post := createTestPost(t, pool, alice, "first")

	require.NoError(t, repo.Cast(ctx, alice, post, 1))
	err := repo.Cast(ctx, alice, post, -1)
	assert.ErrorIs(t, err, domain.ErrVoteExists)

	// The failed cast must not leak a score update.
	assert.Equal(t, int64(1), postScore(t, pool, post))
}

func TestVoteRepo_CastUnknownPost(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewVoteRepo(pool)

	alice := createTestUser(t, pool, "alice")

	err := repo.Cast(context.Background(), alice, 9999, 1)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestVoteRepo_SwitchFlipsScoreByTwo(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewVoteRepo(pool)
	ctx := context.Background()

	alice := createTestUser(t, pool, "alice")
	post := createTestPost(t, pool, alice, "first")

	require.NoError(t, repo.Cast(ctx, alice, post, 1))
	require.NoError(t, repo.Switch(ctx, alice, post, -1))

	assert.Equal(t, int64(-1), postScore(t, pool, post))
	assert.Equal(t, ledgerSum(t, pool, post), postScore(t, pool, post))

	vote, err := repo.Get(ctx, alice, post)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), vote.Value)
}

func TestVoteRepo_SwitchWithoutVote(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewVoteRepo(pool)

	alice := createTestUser(t, pool, "alice")
	post := createTestPost(t, pool, alice, "first")

	err := repo.Switch(context.Background(), alice, post, 1)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)
	assert.Equal(t, int64(0), postScore(t, pool, post))
}

func TestVoteRepo_GetMissing(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewVoteRepo(pool)

	alice := createTestUser(t, pool, "alice")
	post := createTestPost(t, pool, alice, "first")

	_, err := repo.Get(context.Background(), alice, post)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)
}

func TestVoteRepo_ConcurrentVotersKeepScoreConsistent(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewVoteRepo(pool)
	ctx := context.Background()

	author := createTestUser(t, pool, "author")
	post := createTestPost(t, pool, author, "popular")

	const voters = 20
	voterIDs := make([]int64, voters)
	for i := range voterIDs {
		voterIDs[i] = createTestUser(t, pool, fmt.Sprintf("voter%d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i, id := range voterIDs {
		wg.Add(1)
		value := int16(1)
		if i%2 == 0 {
			value = -1
		}
		go func(userID int64, v int16) {
			defer wg.Done()
			errs <- repo.Cast(ctx, userID, post, v)
		}(id, value)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, ledgerSum(t, pool, post), postScore(t, pool, post))
	assert.Equal(t, int64(0), postScore(t, pool, post))
}

func TestVoteRepo_ConcurrentDuplicateCast_ExactlyOneWins(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewVoteRepo(pool)
	ctx := context.Background()

	alice := createTestUser(t, pool, "alice")
	post := createTestPost(t, pool, alice, "first")

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Cast(ctx, alice, post, 1)
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrVoteExists):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)
	assert.Equal(t, int64(1), postScore(t, pool, post))
	assert.Equal(t, int64(1), ledgerSum(t, pool, post))
}
