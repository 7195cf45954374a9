package domain

import (
	"context"
	"time"
)

// --- Model types ---

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type Post struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Text      string    `db:"text"`
	Score     int64     `db:"score"`
	CreatorID int64     `db:"creator_id"`
	Creator   string    `db:"creator_username"`
	CreatedAt time.Time `db:"created_at"`

	// VoteStatus is the viewing user's own ledger value for this post
	// (+1 or -1), nil for anonymous viewers or when no vote exists.
	// Not to be confused with Score, the aggregate over all voters.
	VoteStatus *int16
}

const snippetLength = 100

// Snippet returns the leading portion of the post body for feed rendering.
func (p *Post) Snippet() string {
	runes := []rune(p.Text)
	if len(runes) <= snippetLength {
		return p.Text
	}
	return string(runes[:snippetLength])
}

// Vote is one user's current ledger entry for one post.
// At most one entry exists per (UserID, PostID).
type Vote struct {
	UserID int64 `db:"user_id"`
	PostID int64 `db:"post_id"`
	Value  int16 `db:"value"`
}

// VoteDirection is the wire representation of a vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Value normalizes the direction to a signed unit.
func (d VoteDirection) Value() (int16, bool) {
	switch d {
	case VoteUp:
		return 1, true
	case VoteDown:
		return -1, true
	default:
		return 0, false
	}
}

// FeedPage is one page of the reverse-chronological feed.
type FeedPage struct {
	Posts      []Post
	HasMore    bool
	NextCursor string
}

// --- Interfaces ---

// UserRepository abstracts user persistence.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// PostRepository abstracts post persistence and the feed query.
type PostRepository interface {
	Create(ctx context.Context, creatorID int64, title, text string) (*Post, error)
	GetByID(ctx context.Context, id int64, viewerID *int64) (*Post, error)
	Update(ctx context.Context, creatorID, id int64, title, text string) (*Post, error)
	Delete(ctx context.Context, creatorID, id int64) error

	// ListNewest returns up to limit posts ordered by creation time descending,
	// restricted to posts created strictly before the boundary when non-nil.
	// Each row carries the viewer's VoteStatus when viewerID is non-nil.
	ListNewest(ctx context.Context, limit int, before *time.Time, viewerID *int64) ([]Post, error)
}

// VoteRepository abstracts the vote ledger. Cast and Switch pair the ledger
// mutation with the compensating score update in a single transaction.
type VoteRepository interface {
	Get(ctx context.Context, userID, postID int64) (*Vote, error)

	// Cast inserts a first vote and adjusts the post score by value.
	// Returns ErrVoteExists if an entry already exists for (userID, postID).
	Cast(ctx context.Context, userID, postID int64, value int16) error

	// Switch flips an existing vote to value and adjusts the post score by
	// 2*value (one unit cancels the prior vote, one applies the new one).
	Switch(ctx context.Context, userID, postID int64, value int16) error
}

// VoteRateLimiter bounds the sustained vote rate per user.
type VoteRateLimiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}

// BoardService is the application layer consumed by the HTTP server.
type BoardService interface {
	Register(ctx context.Context, username, password string) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)

	CreatePost(ctx context.Context, creatorID int64, title, text string) (*Post, error)
	GetPost(ctx context.Context, id int64, viewerID *int64) (*Post, error)
	UpdatePost(ctx context.Context, callerID, id int64, title, text string) (*Post, error)
	DeletePost(ctx context.Context, callerID, id int64) error

	ApplyVote(ctx context.Context, userID, postID int64, direction VoteDirection) error
	ListFeed(ctx context.Context, limit int, cursor string, viewerID *int64) (*FeedPage, error)
}
