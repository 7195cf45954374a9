package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roopaish/post-it/internal/domain"
	apperrors "github.com/Roopaish/post-it/internal/errors"
)

const defaultFeedLimit = 20

type postResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Text        string `json:"text,omitempty"`
	TextSnippet string `json:"textSnippet"`
	Score       int64  `json:"score"`
	VoteStatus  *int16 `json:"voteStatus"`
	CreatorID   int64  `json:"creatorId"`
	Creator     string `json:"creatorUsername"`
	CreatedAt   string `json:"createdAt"`
}

type feedResponse struct {
	Posts      []postResponse `json:"posts"`
	HasMore    bool           `json:"hasMore"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

func toPostResponse(post *domain.Post, includeText bool) postResponse {
	resp := postResponse{
		ID:          post.ID,
		Title:       post.Title,
		TextSnippet: post.Snippet(),
		Score:       post.Score,
		VoteStatus:  post.VoteStatus,
		CreatorID:   post.CreatorID,
		Creator:     post.Creator,
		CreatedAt:   post.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if includeText {
		resp.Text = post.Text
	}
	return resp
}

func parsePostID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.ValidationError("invalid post ID").WithField("id", c.Param("id"))
	}
	return id, nil
}

// --- Voting ---

type voteRequest struct {
	Direction domain.VoteDirection `json:"direction"`
}

func (s *Server) handleVote(c echo.Context) error {
	userID, ok := callerID(c)
	if !ok {
		return apperrors.InternalError("invalid user ID in context", nil)
	}

	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	err = s.app.ApplyVote(c.Request().Context(), userID, postID, req.Direction)
	switch {
	case errors.Is(err, domain.ErrBadDirection):
		return apperrors.ValidationError(`direction must be "up" or "down"`).WithField("direction", string(req.Direction))
	case errors.Is(err, domain.ErrPostNotFound):
		return apperrors.NotFoundError("post not found").WithField("post_id", postID)
	case errors.Is(err, domain.ErrRateLimited):
		return apperrors.RateLimitedError("vote rate limit exceeded").WithField("user_id", userID)
	case err != nil:
		return apperrors.StorageError("failed to apply vote", err).WithField("post_id", postID)
	}

	if err := c.JSON(200, map[string]bool{"ok": true}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// --- Feed ---

func (s *Server) handleFeed(c echo.Context) error {
	limit := defaultFeedLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("limit must be an integer").WithField("limit", raw)
		}
		limit = parsed
	}

	page, err := s.app.ListFeed(c.Request().Context(), limit, c.QueryParam("cursor"), viewerID(c))
	switch {
	case errors.Is(err, domain.ErrBadLimit):
		return apperrors.ValidationError("limit must be positive").WithField("limit", limit)
	case errors.Is(err, domain.ErrBadCursor):
		return apperrors.ValidationError("malformed cursor").WithField("cursor", c.QueryParam("cursor"))
	case err != nil:
		return apperrors.StorageError("failed to load feed", err)
	}

	resp := feedResponse{
		Posts:      make([]postResponse, 0, len(page.Posts)),
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	}
	for i := range page.Posts {
		resp.Posts = append(resp.Posts, toPostResponse(&page.Posts[i], false))
	}

	if err := c.JSON(200, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// --- Post CRUD ---

type postInput struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func validatePostInput(input *postInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return apperrors.ValidationError("title must not be empty")
	}
	if input.Text == "" {
		return apperrors.ValidationError("text must not be empty")
	}
	return nil
}

func (s *Server) handleGetPost(c echo.Context) error {
	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := s.app.GetPost(c.Request().Context(), postID, viewerID(c))
	if errors.Is(err, domain.ErrPostNotFound) {
		return apperrors.NotFoundError("post not found").WithField("post_id", postID)
	}
	if err != nil {
		return apperrors.StorageError("failed to load post", err).WithField("post_id", postID)
	}

	if err := c.JSON(200, toPostResponse(post, true)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCreatePost(c echo.Context) error {
	userID, ok := callerID(c)
	if !ok {
		return apperrors.InternalError("invalid user ID in context", nil)
	}

	var input postInput
	if err := c.Bind(&input); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validatePostInput(&input); err != nil {
		return err
	}

	post, err := s.app.CreatePost(c.Request().Context(), userID, input.Title, input.Text)
	if err != nil {
		return apperrors.StorageError("failed to create post", err)
	}

	if err := c.JSON(201, toPostResponse(post, true)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdatePost(c echo.Context) error {
	userID, ok := callerID(c)
	if !ok {
		return apperrors.InternalError("invalid user ID in context", nil)
	}

	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	var input postInput
	if err := c.Bind(&input); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validatePostInput(&input); err != nil {
		return err
	}

	post, err := s.app.UpdatePost(c.Request().Context(), userID, postID, input.Title, input.Text)
	if errors.Is(err, domain.ErrPostNotFound) {
		// Someone else's post is indistinguishable from a missing one.
		return apperrors.NotFoundError("post not found").WithField("post_id", postID)
	}
	if err != nil {
		return apperrors.StorageError("failed to update post", err).WithField("post_id", postID)
	}

	if err := c.JSON(200, toPostResponse(post, true)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeletePost(c echo.Context) error {
	userID, ok := callerID(c)
	if !ok {
		return apperrors.InternalError("invalid user ID in context", nil)
	}

	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	err = s.app.DeletePost(c.Request().Context(), userID, postID)
	if errors.Is(err, domain.ErrPostNotFound) {
		return apperrors.NotFoundError("post not found").WithField("post_id", postID)
	}
	if err != nil {
		return apperrors.StorageError("failed to delete post", err).WithField("post_id", postID)
	}

	if err := c.JSON(200, map[string]bool{"ok": true}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
