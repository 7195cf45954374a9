package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roopaish/post-it/internal/domain"
)

func TestHandleRegister_Success(t *testing.T) {
	app := &mockBoardService{
		registerFn: func(_ context.Context, username, password string) (*domain.User, error) {
			assert.Equal(t, "alice", username)
			assert.Equal(t, "hunter2hunter2", password)
			return &domain.User{ID: 1, Username: username}, nil
		},
	}

	srv := newTestServer(app)
	req := jsonRequest(http.MethodPost, "/api/register", `{"username":"alice","password":"hunter2hunter2"}`)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := srv.handleRegister(c)

	require.NoError(t, err)
	assert.Equal(t, 201, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	// Registering logs the user in.
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestHandleRegister_ValidationFailures(t *testing.T) {
	cases := map[string]string{
		"short username":       `{"username":"al","password":"hunter2hunter2"}`,
		"whitespace username":  `{"username":"a lice","password":"hunter2hunter2"}`,
		"short password":       `{"username":"alice","password":"short"}`,
		"missing request body": `{}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			app := &mockBoardService{
				registerFn: func(_ context.Context, _, _ string) (*domain.User, error) {
					t.Fatal("service must not be invoked for invalid input")
					return nil, nil
				},
			}

			srv := newTestServer(app)
			req := jsonRequest(http.MethodPost, "/api/register", body)
			rec := httptest.NewRecorder()
			c := srv.echo.NewContext(req, rec)

			_ = callHandler(srv.handleRegister, c)
			assert.Equal(t, 400, rec.Code)
		})
	}
}

func TestHandleRegister_UsernameTaken(t *testing.T) {
	app := &mockBoardService{
		registerFn: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrUsernameTaken
		},
	}

	srv := newTestServer(app)
	req := jsonRequest(http.MethodPost, "/api/register", `{"username":"alice","password":"hunter2hunter2"}`)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	_ = callHandler(srv.handleRegister, c)
	assert.Equal(t, 409, rec.Code)
}

func TestHandleLogin_Success(t *testing.T) {
	app := &mockBoardService{
		authenticateFn: func(_ context.Context, username, password string) (*domain.User, error) {
			return &domain.User{ID: 5, Username: username}, nil
		},
	}

	srv := newTestServer(app)
	req := jsonRequest(http.MethodPost, "/api/login", `{"username":"alice","password":"hunter2hunter2"}`)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := srv.handleLogin(c)

	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":5`)
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestHandleLogin_BadCredentials(t *testing.T) {
	app := &mockBoardService{
		authenticateFn: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrBadCredentials
		},
	}

	srv := newTestServer(app)
	req := jsonRequest(http.MethodPost, "/api/login", `{"username":"alice","password":"wrongwrong"}`)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	_ = callHandler(srv.handleLogin, c)
	assert.Equal(t, 401, rec.Code)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestHandleLogout_ExpiresSession(t *testing.T) {
	srv := newTestServer(&mockBoardService{})
	req := jsonRequest(http.MethodPost, "/api/logout", ``)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := srv.handleLogout(c)

	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestHandleMe_Success(t *testing.T) {
	app := &mockBoardService{
		getUserFn: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Username: "alice"}, nil
		},
	}

	srv := newTestServer(app)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.Set("userID", int64(5))

	err := srv.handleMe(c)

	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":5`)
}

func TestHandleMe_Unauthenticated(t *testing.T) {
	srv := newTestServer(&mockBoardService{})
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, 401, rec.Code)
}

func TestRegisterThenMe_SessionRoundTrip(t *testing.T) {
	app := &mockBoardService{
		registerFn: func(_ context.Context, username, _ string) (*domain.User, error) {
			return &domain.User{ID: 8, Username: username}, nil
		},
		getUserFn: func(_ context.Context, id int64) (*domain.User, error) {
			require.Equal(t, int64(8), id)
			return &domain.User{ID: id, Username: "carol"}, nil
		},
	}

	srv := newTestServer(app)

	regReq := jsonRequest(http.MethodPost, "/api/register", `{"username":"carol","password":"hunter2hunter2"}`)
	regRec := httptest.NewRecorder()
	srv.echo.ServeHTTP(regRec, regReq)
	require.Equal(t, 201, regRec.Code)

	cookies := regRec.Result().Cookies()
	require.NotEmpty(t, cookies)

	meReq := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, cookie := range cookies {
		meReq.AddCookie(cookie)
	}
	meRec := httptest.NewRecorder()
	srv.echo.ServeHTTP(meRec, meReq)

	assert.Equal(t, 200, meRec.Code)
	assert.Contains(t, meRec.Body.String(), `"username":"carol"`)
}
