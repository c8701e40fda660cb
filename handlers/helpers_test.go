package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sketchboard/handlers"
	"sketchboard/middleware"
	"sketchboard/routes"
	"sketchboard/token"
)

type testServer struct {
	router   *gin.Engine
	users    *fakeUserStore
	posts    *fakePostStore
	comments *fakeCommentStore
	tokens   *token.Service
}

// newRouter wires arbitrary store implementations through the real route
// table, so tests can substitute failing or racing stores.
func newRouter(users handlers.UserStore, posts handlers.PostStore, comments handlers.CommentStore, tokens *token.Service, limiter *middleware.IPRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return routes.SetupRouter(routes.Dependencies{
		Auth:     &handlers.Auth{Users: users, Tokens: tokens},
		Posts:    &handlers.Posts{Posts: posts, Comments: comments},
		Comments: &handlers.Comments{Comments: comments, Posts: posts},
		Tokens:   tokens,
		Limiter:  limiter,
	})
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users, posts, comments := newFakeStores()
	tokens := token.New("test-secret")
	router := newRouter(users, posts, comments, tokens, middleware.NewIPRateLimiter(1000, time.Minute))

	return &testServer{
		router:   router,
		users:    users,
		posts:    posts,
		comments: comments,
		tokens:   tokens,
	}
}

func (ts *testServer) do(t *testing.T, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp := httptest.NewRecorder()
	ts.router.ServeHTTP(resp, req)
	return resp
}

// registerAndLogin creates the user through the API and returns a live token.
func (ts *testServer) registerAndLogin(t *testing.T, username, password string) string {
	t.Helper()

	resp := ts.do(t, http.MethodPost, "/auth/register", "",
		`{"username":"`+username+`","password":"`+password+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%s)", username, resp.Code, resp.Body.String())
	}

	resp = ts.do(t, http.MethodPost, "/auth/login", "",
		`{"username":"`+username+`","password":"`+password+`"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", username, resp.Code, resp.Body.String())
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("login response parse: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("login returned empty token")
	}
	return payload.Token
}

func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
		t.Fatalf("json parse: %v (body: %s)", err, resp.Body.String())
	}
}
