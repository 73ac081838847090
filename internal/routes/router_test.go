package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/config"
	domainJob "github.com/dulanjanabandara/job-recommender-system/internal/domain/job"
	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	"github.com/dulanjanabandara/job-recommender-system/internal/domain/user/mocks"
	"github.com/dulanjanabandara/job-recommender-system/internal/events"
	"github.com/dulanjanabandara/job-recommender-system/internal/infrastructure/mailer"
	"github.com/dulanjanabandara/job-recommender-system/internal/middleware"
	jobUsecase "github.com/dulanjanabandara/job-recommender-system/internal/usecase/job"
	userUsecase "github.com/dulanjanabandara/job-recommender-system/internal/usecase/user"
	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type jobStore struct {
	mu     sync.Mutex
	nextID int
	jobs   map[string]*domainJob.Job
}

func (s *jobStore) FindByID(_ context.Context, id string) (*domainJob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := strconv.Atoi(id); err != nil {
		return nil, &resource.InvalidIDError{ID: id}
	}
	j, ok := s.jobs[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	return j, nil
}

func (s *jobStore) Find(context.Context, *query.Query) ([]*domainJob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domainJob.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (s *jobStore) Create(_ context.Context, j *domainJob.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	j.ID = strconv.Itoa(s.nextID)
	j.CreatedAt = time.Now().UTC()
	j.UpdatedAt = j.CreatedAt
	s.jobs[j.ID] = j
	return nil
}

func (s *jobStore) UpdateByID(_ context.Context, id string, patch resource.Patch) (*domainJob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	if v, ok := patch["company"].(string); ok {
		j.Company = v
	}
	if v, ok := patch["position"].(string); ok {
		j.Position = v
	}
	if v, ok := patch["status"].(string); ok {
		j.Status = domainJob.Status(v)
	}
	return j, nil
}

func (s *jobStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return resource.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

type healthStub struct{ err error }

func (h healthStub) Health(context.Context) error { return h.err }

func newTestRouter(t *testing.T, limit int, health HealthChecker) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Server:    config.ServerConfig{Environment: "test", StaticDir: t.TempDir(), MaxBodyBytes: 1 << 20},
		JWT:       config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour},
		RateLimit: config.RateLimitConfig{Max: limit, Window: time.Hour},
	}

	users := mocks.NewMockRepository(gomock.NewController(t))
	limiter := middleware.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
	t.Cleanup(limiter.Close)

	services := Services{
		Jobs:      jobUsecase.NewService(&jobStore{jobs: map[string]*domainJob.Job{}}, events.Noop{}),
		Users:     userUsecase.NewService(users, mailer.NewLogMailer(zap.NewNop()), cfg),
		UserAdmin: userUsecase.NewAdminService(users, events.Noop{}),
	}

	return SetupRoutes(cfg, services, limiter, health)
}

func do(r http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func TestJobLifecycle(t *testing.T) {
	r := newTestRouter(t, 100, healthStub{})

	w, body := do(r, http.MethodPost, "/api/v1/jobs", `{"company":"Acme","position":"Engineer"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "success", body["status"])

	doc := body["data"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "Acme", doc["company"])
	assert.Equal(t, "pending", doc["status"])
	assert.Equal(t, "full-time", doc["jobType"])
	assert.Equal(t, "my city", doc["location"])
	id := doc["id"].(string)

	w, body = do(r, http.MethodGet, "/api/v1/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["results"])

	w, body = do(r, http.MethodPatch, "/api/v1/jobs/"+id, `{"status":"interview"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "interview", body["data"].(map[string]any)["data"].(map[string]any)["status"])

	w, _ = do(r, http.MethodDelete, "/api/v1/jobs/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestJobErrors(t *testing.T) {
	r := newTestRouter(t, 100, healthStub{})

	w, body := do(r, http.MethodGet, "/api/v1/jobs/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "No document found with that ID", body["message"])

	w, body = do(r, http.MethodGet, "/api/v1/jobs/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id: not-an-id.", body["message"])

	w, body = do(r, http.MethodPost, "/api/v1/jobs", `{"position":"Engineer"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["message"], "Invalid input data.")

	w, body = do(r, http.MethodPost, "/api/v1/jobs", `{"company":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestFormEncodedCreate(t *testing.T) {
	r := newTestRouter(t, 100, healthStub{})

	form := url.Values{"company": {"Acme"}, "position": {"Engineer"}, "jobType": {"remote"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"jobType":"remote"`)
}

func TestRateLimitUnderAPI(t *testing.T) {
	r := newTestRouter(t, 100, healthStub{})

	w, _ := do(r, http.MethodPost, "/api/v1/jobs", `{"company":"Acme","position":"Engineer"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	for i := 2; i <= 100; i++ {
		w, _ = do(r, http.MethodGet, "/api/v1/jobs", "")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w, body := do(r, http.MethodGet, "/api/v1/jobs", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests from this IP address! Please try again in an hour.", body["message"])

	w, _ = do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code, "health is outside /api")
}

func TestRateLimitCountsUnmatchedAPIPaths(t *testing.T) {
	r := newTestRouter(t, 2, healthStub{})

	var codes []int
	for i := 0; i < 4; i++ {
		w, _ := do(r, http.MethodGet, "/api/v1/unknown", "")
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	w, _ := do(r, http.MethodGet, "/apiary", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "/apiary is not under /api")
}

func TestUnmatchedRoute(t *testing.T) {
	r := newTestRouter(t, 100, healthStub{})

	w, body := do(r, http.MethodGet, "/api/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Can't find /api/v2/nothing on the server!", body["message"])
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestProtectedUserRoutes(t *testing.T) {
	r := newTestRouter(t, 100, healthStub{})

	w, body := do(r, http.MethodGet, "/api/v1/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "You are not logged in! Please log in to get access.", body["message"])

	w, _ = do(r, http.MethodGet, "/api/v1/users", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = do(r, http.MethodPost, "/api/v1/users/login", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please provide email and password!", body["message"])
}

func TestHealth(t *testing.T) {
	w, body := do(newTestRouter(t, 100, healthStub{err: errors.New("down")}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body["status"])
}
