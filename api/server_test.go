package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Aidin1998/usersapi/api"
	"github.com/Aidin1998/usersapi/internal/cache"
	"github.com/Aidin1998/usersapi/internal/health"
	"github.com/Aidin1998/usersapi/internal/users"
	"github.com/Aidin1998/usersapi/internal/users/store"
	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingStore fails every call, as a database that went away would.
type failingStore struct{}

var errDB = fmt.Errorf("database is closed")

func (failingStore) Find(context.Context) ([]models.User, error) { return nil, errDB }
func (failingStore) FindByID(context.Context, string) (*models.User, error) {
	return nil, errDB
}
func (failingStore) Insert(context.Context, models.UserInput) (models.InsertResult, error) {
	return models.InsertResult{}, errDB
}
func (failingStore) Update(context.Context, string, models.UserInput) (int64, error) {
	return 0, errDB
}
func (failingStore) Remove(context.Context, string) (int64, error) { return 0, errDB }

// helper to set up router
func setupRouter(st store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	svc := users.NewService(logger, st, nil, nil, nil)
	srv := api.NewServer(logger, svc, api.Options{Swagger: true})
	return srv.Router()
}

func do(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.RequestURI = req.URL.RequestURI()
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(store.NewMemoryStore())
	w := do(t, router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ok", resp["status"])
}

func TestReadiness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	checker := health.NewChecker(logger, time.Second, 0)
	down := false
	checker.Register("database", func(context.Context) error {
		if down {
			return fmt.Errorf("connection refused")
		}
		return nil
	})
	svc := users.NewService(logger, store.NewMemoryStore(), nil, nil, nil)
	router := api.NewServer(logger, svc, api.Options{Checker: checker}).Router()

	w := do(t, router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]interface{}](t, w)["ready"])

	down = true
	w = do(t, router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestBannerAndMetrics(t *testing.T) {
	router := setupRouter(store.NewMemoryStore())

	w := do(t, router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "running")

	do(t, router, http.MethodGet, "/api/users", "")
	w = do(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "usersapi_http_requests_total")
}

func TestSwaggerDoc(t *testing.T) {
	router := setupRouter(store.NewMemoryStore())
	w := do(t, router, http.MethodGet, "/swagger/doc.json", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/users/{id}")
}

func TestUserLifecycle(t *testing.T) {
	router := setupRouter(store.NewMemoryStore())

	w := do(t, router, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/users", `{"name":"Frodo Baggins","bio":"ring bearer"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.User](t, w)
	assert.Equal(t, "Frodo Baggins", created.Name)
	assert.Equal(t, "ring bearer", created.Bio)
	path := "/api/users/" + created.ID.String()

	w = do(t, router, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.User](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)

	w = do(t, router, http.MethodPut, path, `{"name":"Frodo","bio":"back in the Shire"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.User](t, w)
	assert.Equal(t, "Frodo", updated.Name)
	assert.Equal(t, "back in the Shire", updated.Bio)

	w = do(t, router, http.MethodGet, "/api/users", "")
	list := decode[[]models.User](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Frodo", list[0].Name)

	w = do(t, router, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(t, router, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"The user with the specified ID does not exist."}`, w.Body.String())
}

func TestUserLifecycleWithCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zap.NewNop()
	svc := users.NewService(logger, store.NewMemoryStore(), cache.NewUserCache(client, time.Minute), nil, nil)
	router := api.NewServer(logger, svc, api.Options{}).Router()

	w := do(t, router, http.MethodPost, "/api/users", `{"name":"Old","bio":"bio"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.User](t, w)
	canonical := "/api/users/" + created.ID.String()
	mixed := "/api/users/" + strings.ToUpper(created.ID.String()[:8]) + created.ID.String()[8:]

	w = do(t, router, http.MethodGet, canonical, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mr.Exists("usersapi:user:"+created.ID.String()))

	w = do(t, router, http.MethodPut, mixed, `{"name":"New","bio":"bio"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, canonical, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New", decode[models.User](t, w).Name)

	w = do(t, router, http.MethodDelete, mixed, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, canonical, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, router, http.MethodGet, mixed, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateUserMissingFields(t *testing.T) {
	router := setupRouter(store.NewMemoryStore())
	const want = `{"errorMessage":"Please provide name and bio for the user."}`

	for _, body := range []string{
		`{"name":"Frodo"}`,
		`{"bio":"ring bearer"}`,
		`{}`,
		`{"name":"","bio":"x"}`,
		`{"name":"Frodo","bio":"<p></p>"}`,
		`not json`,
	} {
		w := do(t, router, http.MethodPost, "/api/users", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, want, w.Body.String(), body)
	}

	w := do(t, router, http.MethodGet, "/api/users", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUnknownID(t *testing.T) {
	router := setupRouter(store.NewMemoryStore())
	const want = `{"message":"The user with the specified ID does not exist."}`

	for _, id := range []string{"0190f5d2-7b1e-7c3a-9a4e-1f2b3c4d5e6f", "42", "not-a-uuid"} {
		path := "/api/users/" + id

		w := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, want, w.Body.String())

		w = do(t, router, http.MethodPut, path, `{"name":"a","bio":"b"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, want, w.Body.String())

		w = do(t, router, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, want, w.Body.String())
	}
}

func TestUpdateValidatesBeforeLookup(t *testing.T) {
	router := setupRouter(store.NewMemoryStore())

	w := do(t, router, http.MethodPut, "/api/users/0190f5d2-7b1e-7c3a-9a4e-1f2b3c4d5e6f", `{"name":"only name"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errorMessage":"Please provide name and bio for the user."}`, w.Body.String())
}

func TestStoreFailures(t *testing.T) {
	router := setupRouter(failingStore{})
	id := "0190f5d2-7b1e-7c3a-9a4e-1f2b3c4d5e6f"

	tests := []struct {
		method string
		path   string
		body   string
		want   string
	}{
		{http.MethodGet, "/api/users", "", "The users information could not be retrieved."},
		{http.MethodGet, "/api/users/" + id, "", "The user information could not be retrieved."},
		{http.MethodPost, "/api/users", `{"name":"a","bio":"b"}`, "There was an error while saving the user to the database"},
		{http.MethodPut, "/api/users/" + id, `{"name":"a","bio":"b"}`, "The user information could not be modified."},
		{http.MethodDelete, "/api/users/" + id, "", "The user could not be removed"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.want), w.Body.String())
			assert.False(t, strings.Contains(w.Body.String(), errDB.Error()))
		})
	}
}
