package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/Roopaish/post-it/internal/domain"
	"github.com/Roopaish/post-it/internal/metrics"
)

// maxPageSize bounds a feed page regardless of the caller-requested limit.
const maxPageSize = 50

// Service is the application layer — the only component that references
// multiple domain components. It orchestrates all use cases.
type Service struct {
	users   domain.UserRepository
	posts   domain.PostRepository
	votes   domain.VoteRepository
	limiter domain.VoteRateLimiter
	clock   clockwork.Clock
	metrics *metrics.VoteMetrics
}

// NewService creates the application layer service.
// limiter may be nil if vote rate limiting is not configured.
// voteMetrics may be nil in tests.
func NewService(users domain.UserRepository, posts domain.PostRepository, votes domain.VoteRepository, limiter domain.VoteRateLimiter, clock clockwork.Clock, voteMetrics *metrics.VoteMetrics) *Service {
	return &Service{
		users:   users,
		posts:   posts,
		votes:   votes,
		limiter: limiter,
		clock:   clock,
		metrics: voteMetrics,
	}
}

// --- Users ---

// Register creates a user with a bcrypt digest as credential material.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.Create(ctx, username, string(hash))
}

// Authenticate verifies a username/password pair. Unknown usernames and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrBadCredentials
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// --- Posts ---

// CreatePost stores a new post for the given creator.
func (s *Service) CreatePost(ctx context.Context, creatorID int64, title, text string) (*domain.Post, error) {
	return s.posts.Create(ctx, creatorID, title, text)
}

// GetPost retrieves a post by ID, annotated with the viewer's vote when present.
func (s *Service) GetPost(ctx context.Context, id int64, viewerID *int64) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id, viewerID)
}

// UpdatePost modifies a post's title and text, scoped to its creator.
func (s *Service) UpdatePost(ctx context.Context, callerID, id int64, title, text string) (*domain.Post, error) {
	return s.posts.Update(ctx, callerID, id, title, text)
}

// DeletePost removes a post, scoped to its creator.
func (s *Service) DeletePost(ctx context.Context, callerID, id int64) error {
	return s.posts.Delete(ctx, callerID, id)
}

// --- Votes ---

// ApplyVote applies a vote by userID on postID. Exactly one of three outcomes
// happens, decided by the caller's current ledger entry:
//
//   - no entry: a first vote is cast, score moves by the vote value
//   - same direction: no-op — repeating a vote never double-counts and never
//     toggles it off
//   - opposite direction: the vote is switched, score moves by twice the value
//
// A cast that loses the ledger's uniqueness race to a concurrent vote by the
// same user is retried once as a re-read, never surfaced to the caller.
func (s *Service) ApplyVote(ctx context.Context, userID, postID int64, direction domain.VoteDirection) error {
	value, ok := direction.Value()
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrBadDirection, direction)
	}

	start := s.clock.Now()
	result, err := s.applyVote(ctx, userID, postID, value)
	if s.metrics != nil {
		s.metrics.VotesProcessed.WithLabelValues(result).Inc()
		s.metrics.ProcessingDuration.Observe(s.clock.Since(start).Seconds())
		if err == nil && result != resultRepeat {
			s.metrics.VotesByTarget.WithLabelValues(string(direction)).Inc()
		}
	}
	return err
}

const (
	resultApplied  = "applied"
	resultSwitched = "switched"
	resultRepeat   = "repeat"
	resultRejected = "rejected"
	resultError    = "error"
)

func (s *Service) applyVote(ctx context.Context, userID, postID int64, value int16) (string, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			return resultError, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return resultRejected, domain.ErrRateLimited
		}
	}

	existing, err := s.votes.Get(ctx, userID, postID)
	switch {
	case err == nil:
		return s.settleExisting(ctx, existing, value)

	case errors.Is(err, domain.ErrVoteNotFound):
		err = s.votes.Cast(ctx, userID, postID, value)
		if errors.Is(err, domain.ErrVoteExists) {
			// Lost the insert race to a concurrent vote by the same user.
			// The entry now exists, so fall back to the update path.
			existing, err = s.votes.Get(ctx, userID, postID)
			if err != nil {
				return resultError, err
			}
			return s.settleExisting(ctx, existing, value)
		}
		if err != nil {
			return resultError, err
		}
		return resultApplied, nil

	default:
		return resultError, err
	}
}

func (s *Service) settleExisting(ctx context.Context, existing *domain.Vote, value int16) (string, error) {
	if existing.Value == value {
		return resultRepeat, nil
	}
	if err := s.votes.Switch(ctx, existing.UserID, existing.PostID, value); err != nil {
		return resultError, err
	}
	return resultSwitched, nil
}

// --- Feed ---

// ListFeed returns one page of the reverse-chronological feed. The limit is
// clamped to maxPageSize; one extra row is fetched to decide HasMore and is
// never emitted.
func (s *Service) ListFeed(ctx context.Context, limit int, cursor string, viewerID *int64) (*domain.FeedPage, error) {
	if limit < 1 {
		return nil, domain.ErrBadLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	before, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListNewest(ctx, limit+1, before, viewerID)
	if err != nil {
		return nil, err
	}

	page := &domain.FeedPage{
		Posts:   posts,
		HasMore: len(posts) == limit+1,
	}
	if page.HasMore {
		page.Posts = posts[:limit]
		page.NextCursor = EncodeCursor(page.Posts[limit-1].CreatedAt)
	}
	if s.metrics != nil {
		s.metrics.FeedPageSize.Observe(float64(len(page.Posts)))
	}
	return page, nil
}
