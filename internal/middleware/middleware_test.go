package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulanjanabandara/job-recommender-system/internal/config"
	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	appErrors "github.com/dulanjanabandara/job-recommender-system/pkg/errors"
	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(development bool, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(development), Recovery(), RequestID())
	r.Use(middleware...)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func perform(r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		for _, value := range v {
			req.Header.Add(k, value)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandlerMapping(t *testing.T) {
	type payload struct {
		Company string `json:"company" validate:"required"`
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantState  string
		wantMsg    string
	}{
		{"app error", appErrors.NotFound("nope"), http.StatusNotFound, "fail", "nope"},
		{"validation", utils.ValidateStruct(payload{}), http.StatusBadRequest, "fail", "Invalid input data. company is required"},
		{"invalid id", &resource.InvalidIDError{ID: "abc"}, http.StatusBadRequest, "fail", "Invalid id: abc."},
		{"not found", resource.ErrNotFound, http.StatusNotFound, "fail", "No document found with that ID"},
		{"duplicate user", domainUser.ErrUserAlreadyExists, http.StatusConflict, "fail", "Duplicate field value: email. Please use another value!"},
		{"duplicate", resource.ErrDuplicate, http.StatusBadRequest, "fail", "Duplicate field value. Please use another value!"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "error", msgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(false)
			r.GET("/", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := perform(r, http.MethodGet, "/", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.wantState, body["status"])
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.NotContains(t, body, "error")
		})
	}
}

func TestErrorHandlerDevelopmentAddsError(t *testing.T) {
	r := newEngine(true)
	r.GET("/", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })

	w := perform(r, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "boom", body["message"])
	assert.Equal(t, "boom", body["error"])
}

func TestRecoveryRecordsServerError(t *testing.T) {
	r := newEngine(false)
	r.GET("/", func(c *gin.Context) { panic("kaboom") })

	w := perform(r, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgUnexpected, decode(t, w)["message"])
}

func TestRequestID(t *testing.T) {
	r := newEngine(false)
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := perform(r, http.MethodGet, "/", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	for _, bad := range []string{strings.Repeat("x", 100), "abc\tforged=1", "id with spaces"} {
		w = perform(r, http.MethodGet, "/", http.Header{RequestIDHeader: {bad}})
		assert.Len(t, w.Header().Get(RequestIDHeader), 36, bad)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(false, SecurityHeadersMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := perform(r, http.MethodGet, "/", nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestBodyLimit(t *testing.T) {
	r := newEngine(false, BodyLimit(8))
	r.POST("/", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"company":"acme"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", decode(t, w)["message"])

	req = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader(`{"company":"acme"}`)))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, "undeclared length")

	req = httptest.NewRequest(http.MethodGet, "/", strings.NewReader(`{"company":"acme"}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSExposesAPIHeaders(t *testing.T) {
	r := newEngine(false, CORS(&config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/", http.Header{"Origin": {"http://jobs.example.com"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	exposed := w.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{RequestIDHeader, "X-RateLimit-Remaining", "Retry-After"} {
		assert.Contains(t, strings.ToLower(exposed), strings.ToLower(h))
	}

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://jobs.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestMemoryRateLimit(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Hour)
	defer limiter.Close()

	r := newEngine(false, RateLimitMiddleware(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := perform(r, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	}

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, RateLimitMessage, decode(t, w)["message"])
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Hour)
	defer limiter.Close()
	ctx := context.Background()

	d, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	d, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryLimiterFixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter(2, time.Hour)
	defer limiter.Close()
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}

	now = start.Add(59 * time.Minute)
	d, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed, "no requests regained inside the window")
	assert.Equal(t, time.Minute, d.RetryAfter)

	now = start.Add(time.Hour)
	d, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}

func TestMemoryLimiterExpire(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	defer limiter.Close()

	start := time.Now()
	limiter.now = func() time.Time { return start }
	_, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)

	limiter.expire(start.Add(30 * time.Second))
	assert.Len(t, limiter.windows, 1)

	limiter.expire(start.Add(time.Minute))
	assert.Empty(t, limiter.windows)
}

func TestForPathPrefix(t *testing.T) {
	var hits []string
	mark := func(c *gin.Context) {
		hits = append(hits, c.Request.URL.Path)
		c.Next()
	}

	r := newEngine(false, ForPathPrefix("/api/", mark))
	r.GET("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api", "/api/v1/jobs", "/apiary", "/health"} {
		require.Equal(t, http.StatusOK, perform(r, http.MethodGet, path, nil).Code, path)
	}
	assert.Equal(t, []string{"/api", "/api/v1/jobs"}, hits)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := newEngine(false, RateLimitMiddleware(failingLimiter{}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
}

type stubAuthenticator struct {
	user *domainUser.User
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*domainUser.User, error) {
	if token != "good" {
		return nil, appErrors.Unauthorized("You are not logged in! Please log in to get access.")
	}
	return s.user, nil
}

func TestAuthAndRole(t *testing.T) {
	auth := stubAuthenticator{user: &domainUser.User{ID: "u1", Role: domainUser.RoleUser}}

	r := newEngine(false)
	r.GET("/me", AuthMiddleware(auth), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, user.ID)
	})
	r.GET("/admin", AuthMiddleware(auth), AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", nil).Code)

	w := perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer good"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = perform(r, http.MethodGet, "/admin", http.Header{"Authorization": {"Bearer good"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You do not have permission to perform this action", decode(t, w)["message"])
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken(""))
}

func TestNotFoundHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *"), 0o600))

	r := newEngine(false)
	r.NoRoute(NotFoundHandler(dir))

	w := perform(r, http.MethodGet, "/robots.txt", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User-agent: *", w.Body.String())

	w = perform(r, http.MethodGet, "/api/v1/nothing?x=1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Can't find /api/v1/nothing?x=1 on the server!", decode(t, w)["message"])

	w = perform(r, http.MethodPost, "/robots.txt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
