package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"codefusion/internal/auth"
	"codefusion/internal/repository/memory"
	"codefusion/internal/service"
	"codefusion/internal/storage"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithStorage(t, nil)
}

func newTestServerWithStorage(t *testing.T, store storage.Service) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens := auth.NewTokenService(testSecret, time.Hour)
	handler := NewHandler(
		service.NewUserService(memory.NewUserRepository()),
		service.NewSnippetService(memory.NewSnippetRepository()),
		tokens,
		store,
		time.Hour,
		[]string{"http://localhost:5173"},
		logger,
	)

	router := gin.New()
	require.NoError(t, handler.RegisterRoutes(router))

	return &testServer{router: router, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: cookie})
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signUp(t *testing.T, username string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/sign-up", gin.H{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "hunter2hunter2",
		"school":    "Lane Tech",
		"firstName": "Alice",
		"birthCity": "chicago",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSignUpAndLogin(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp(t, "alice")

	rec := srv.do(t, http.MethodPost, "/api/login", gin.H{
		"username": "alice",
		"password": "hunter2hunter2",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])

	var tokenCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookieName {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie, "login must set the token cookie")
	require.True(t, tokenCookie.HttpOnly)

	claims, err := srv.tokens.Verify(tokenCookie.Value)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp(t, "alice")

	rec := srv.do(t, http.MethodPost, "/api/login", gin.H{
		"username": "alice",
		"password": "not-the-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestSignUpValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/sign-up", gin.H{
		"username": "alice",
		"email":    "not-an-email",
		"password": "short",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["errors"])
}

func TestSignUpDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp(t, "alice")

	rec := srv.do(t, http.MethodPost, "/api/sign-up", gin.H{
		"username":  "alice",
		"email":     "other@example.com",
		"password":  "hunter2hunter2",
		"school":    "s",
		"firstName": "f",
		"birthCity": "b",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestForgotPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp(t, "alice")

	// stored birthCity is "chicago"; a differently-cased answer must match
	rec := srv.do(t, http.MethodPost, "/api/forgot-password", gin.H{
		"username":  "alice",
		"school":    "LANE TECH",
		"firstName": "alice",
		"birthCity": "Chicago",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, true, decodeBody(t, rec)["success"])

	rec = srv.do(t, http.MethodPost, "/api/forgot-password", gin.H{
		"username":  "alice",
		"school":    "Lane Tech",
		"firstName": "Alice",
		"birthCity": "Springfield",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/forgot-password", gin.H{
		"username":  "nobody",
		"school":    "s",
		"firstName": "f",
		"birthCity": "b",
	}, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChangePassword(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp(t, "alice")

	rec := srv.do(t, http.MethodPost, "/api/change-password", gin.H{
		"username": "alice",
		"password": "brand-new-pass",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/login", gin.H{
		"username": "alice",
		"password": "hunter2hunter2",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code, "old password must stop working")

	rec = srv.do(t, http.MethodPost, "/api/login", gin.H{
		"username": "alice",
		"password": "brand-new-pass",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePasswordAcceptsAnyNewPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp(t, "alice")

	// recovery flow imposes no minimum length; anything non-empty is hashed
	rec := srv.do(t, http.MethodPost, "/api/change-password", gin.H{
		"username": "alice",
		"password": "abc",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/login", gin.H{
		"username": "alice",
		"password": "abc",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/change-password", gin.H{
		"username": "nobody",
		"password": "brand-new-pass",
	}, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/logout", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tokenCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookieName {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	require.Empty(t, tokenCookie.Value)
	require.Negative(t, tokenCookie.MaxAge, "logout must expire the cookie")
}

func TestSnippetLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token, err := srv.tokens.Issue("alice")
	require.NoError(t, err)

	rec := srv.do(t, http.MethodPost, "/api/save-new-code", gin.H{
		"username": "alice",
		"title":    "landing page",
		"htmlCode": "<h1>hi</h1>",
		"cssCode":  "h1{color:red}",
		"jsCode":   "console.log(1)",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].(map[string]any)
	id := int64(data["id"].(float64))
	require.Positive(t, id)

	// fetch-by-id is public: snippets are shareable by link
	rec = srv.do(t, http.MethodPost, "/api/fetch-code/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeBody(t, rec)["data"].(map[string]any)
	require.Equal(t, "<h1>hi</h1>", fetched["htmlCode"])

	rec = srv.do(t, http.MethodPost, "/api/save/1", gin.H{
		"htmlCode": "<h1>bye</h1>",
		"cssCode":  "",
		"jsCode":   "",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/search?title=landing&username=alice", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeBody(t, rec)["data"].([]any)
	require.Len(t, results, 1)

	rec = srv.do(t, http.MethodPost, "/api/all-codes/1", gin.H{"username": "alice"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchRequiresTitle(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/search?username=alice", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
