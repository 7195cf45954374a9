package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roopaish/post-it/internal/config"
	"github.com/Roopaish/post-it/internal/domain"
	apperrors "github.com/Roopaish/post-it/internal/errors"
)

// mockBoardService implements domain.BoardService with overridable funcs.
type mockBoardService struct {
	registerFn     func(ctx context.Context, username, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, username, password string) (*domain.User, error)
	getUserFn      func(ctx context.Context, id int64) (*domain.User, error)
	createPostFn   func(ctx context.Context, creatorID int64, title, text string) (*domain.Post, error)
	getPostFn      func(ctx context.Context, id int64, viewerID *int64) (*domain.Post, error)
	updatePostFn   func(ctx context.Context, callerID, id int64, title, text string) (*domain.Post, error)
	deletePostFn   func(ctx context.Context, callerID, id int64) error
	applyVoteFn    func(ctx context.Context, userID, postID int64, direction domain.VoteDirection) error
	listFeedFn     func(ctx context.Context, limit int, cursor string, viewerID *int64) (*domain.FeedPage, error)
}

func (m *mockBoardService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return m.registerFn(ctx, username, password)
}

func (m *mockBoardService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	return m.authenticateFn(ctx, username, password)
}

func (m *mockBoardService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return m.getUserFn(ctx, id)
}

func (m *mockBoardService) CreatePost(ctx context.Context, creatorID int64, title, text string) (*domain.Post, error) {
	return m.createPostFn(ctx, creatorID, title, text)
}

func (m *mockBoardService) GetPost(ctx context.Context, id int64, viewerID *int64) (*domain.Post, error) {
	return m.getPostFn(ctx, id, viewerID)
}

func (m *mockBoardService) UpdatePost(ctx context.Context, callerID, id int64, title, text string) (*domain.Post, error) {
	return m.updatePostFn(ctx, callerID, id, title, text)
}

func (m *mockBoardService) DeletePost(ctx context.Context, callerID, id int64) error {
	return m.deletePostFn(ctx, callerID, id)
}

func (m *mockBoardService) ApplyVote(ctx context.Context, userID, postID int64, direction domain.VoteDirection) error {
	return m.applyVoteFn(ctx, userID, postID, direction)
}

func (m *mockBoardService) ListFeed(ctx context.Context, limit int, cursor string, viewerID *int64) (*domain.FeedPage, error) {
	return m.listFeedFn(ctx, limit, cursor, viewerID)
}

// stubPinger satisfies the health-check interfaces.
type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func newTestServer(app domain.BoardService) *Server {
	cfg := &config.Config{
		AppEnv:        "test",
		Port:          "0",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		SessionMaxAge: time.Hour,
	}
	return NewServer(cfg, app, stubPinger{}, nil, nil)
}

// callHandler invokes a handler and renders any returned error the way the
// error middleware would, so tests can assert on the recorded status code.
func callHandler(h echo.HandlerFunc, c echo.Context) error {
	err := h(c)
	if err == nil {
		return nil
	}
	structured := apperrors.AsStructuredError(err)
	return c.JSON(structured.HTTPStatus(), structured.ToResponse())
}

func testPost(id int64, createdAt time.Time) *domain.Post {
	return &domain.Post{
		ID:        id,
		Title:     "hello",
		Text:      "world",
		Score:     3,
		CreatorID: 1,
		Creator:   "alice",
		CreatedAt: createdAt,
	}
}
