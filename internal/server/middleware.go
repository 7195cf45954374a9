package server

import (
	"github.com/labstack/echo/v4"

	"github.com/Roopaish/post-it/internal/correlation"
	apperrors "github.com/Roopaish/post-it/internal/errors"
)

// Session keys
const (
	sessionName      = "post-it-session"
	sessionKeyUserID = "userID"
)

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// sessionUserID reads the caller's user ID from the cookie session.
func (s *Server) sessionUserID(c echo.Context) (int64, bool) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return 0, false
	}
	userID, ok := session.Values[sessionKeyUserID].(int64)
	return userID, ok
}

// requireAuth rejects unauthenticated callers before the service is invoked.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := s.sessionUserID(c)
		if !ok {
			return apperrors.UnauthorizedError("not authenticated")
		}
		c.Set("userID", userID)
		return next(c)
	}
}

// optionalAuth injects the caller identity when a session exists, but lets
// anonymous requests through.
func (s *Server) optionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if userID, ok := s.sessionUserID(c); ok {
			c.Set("userID", userID)
		}
		return next(c)
	}
}

// callerID returns the authenticated caller's ID from the request context.
func callerID(c echo.Context) (int64, bool) {
	userID, ok := c.Get("userID").(int64)
	return userID, ok
}

// viewerID returns the caller's ID as an optional value for feed annotation.
func viewerID(c echo.Context) *int64 {
	if userID, ok := callerID(c); ok {
		return &userID
	}
	return nil
}
