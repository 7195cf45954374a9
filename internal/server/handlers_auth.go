package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Roopaish/post-it/internal/domain"
	apperrors "github.com/Roopaish/post-it/internal/errors"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func toUserResponse(user *domain.User) userResponse {
	return userResponse{ID: user.ID, Username: user.Username}
}

func validateCredentials(req *credentialsRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 {
		return apperrors.ValidationError("username must be at least 3 characters")
	}
	if strings.ContainsAny(req.Username, " \t\n") {
		return apperrors.ValidationError("username must not contain whitespace")
	}
	if len(req.Password) < 8 {
		return apperrors.ValidationError("password must be at least 8 characters")
	}
	return nil
}

func (s *Server) saveSession(c echo.Context, userID int64) error {
	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	session.Values[sessionKeyUserID] = userID
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}
	return nil
}

func (s *Server) handleRegister(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validateCredentials(&req); err != nil {
		return err
	}

	user, err := s.app.Register(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrUsernameTaken) {
		return apperrors.ConflictError("username already taken").WithField("username", req.Username)
	}
	if err != nil {
		return apperrors.StorageError("failed to register user", err)
	}

	// Registering logs the user in.
	if err := s.saveSession(c, user.ID); err != nil {
		return err
	}

	if err := c.JSON(201, toUserResponse(user)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	user, err := s.app.Authenticate(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrBadCredentials) {
		return apperrors.UnauthorizedError("invalid username or password")
	}
	if err != nil {
		return apperrors.StorageError("failed to authenticate", err)
	}

	if err := s.saveSession(c, user.ID); err != nil {
		return err
	}

	if err := c.JSON(200, toUserResponse(user)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, sessionKeyUserID)
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to clear session", err)
	}

	if err := c.JSON(200, map[string]bool{"ok": true}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleMe(c echo.Context) error {
	userID, ok := callerID(c)
	if !ok {
		return apperrors.InternalError("invalid user ID in context", nil)
	}

	user, err := s.app.GetUser(c.Request().Context(), userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return apperrors.NotFoundError("user not found").WithField("user_id", userID)
	}
	if err != nil {
		return apperrors.StorageError("failed to load user", err)
	}

	if err := c.JSON(200, toUserResponse(user)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
