package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	config "client-tasks.com/client-tasks/internal/configs"
	middleware "client-tasks.com/client-tasks/internal/http/middlewares"
	model "client-tasks.com/client-tasks/internal/models"
	repository "client-tasks.com/client-tasks/internal/repositories"
	"client-tasks.com/client-tasks/internal/services"
)

type testServer struct {
	e   *echo.Echo
	db  *gorm.DB
	now time.Time
}

func newTestServer(t *testing.T, limit int) *testServer {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.OpenDatabase(config.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	service := services.NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewClientRepository(db),
		zap.NewNop(),
		services.WithClock(func() time.Time { return now }),
	)

	e := echo.New()
	Register(e, NewHandler(service), middleware.NewMemoryLimiter(limit, time.Minute), zap.NewNop())

	return &testServer{e: e, db: db, now: now}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) client(t *testing.T, name string) string {
	c, err := repository.NewClientRepository(s.db).Create(context.Background(), name)
	require.NoError(t, err)
	return c.ID
}

func (s *testServer) createTask(t *testing.T, body string) model.Task {
	rec := s.do(t, http.MethodPost, "/api/tasks", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var task model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body struct {
		Message string `json:"message"`
	}
	decode(t, rec, &body)
	return body.Message
}

type pageBody struct {
	Items      []model.Task `json:"items"`
	NextCursor *string      `json:"next_cursor"`
	HasMore    bool         `json:"has_more"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 100)

	rec := s.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Tasks API is running"}`, rec.Body.String())
}

func TestListClients(t *testing.T) {
	s := newTestServer(t, 100)

	rec := s.do(t, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	id := s.client(t, "Acme")
	rec = s.do(t, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var clients []model.Client
	decode(t, rec, &clients)
	require.Len(t, clients, 1)
	assert.Equal(t, id, clients[0].ID)
	assert.Equal(t, "Acme", clients[0].Name)
}

func TestCreateTask(t *testing.T) {
	s := newTestServer(t, 100)
	clientID := s.client(t, "Acme")

	rec := s.do(t, http.MethodPost, "/api/tasks", fmt.Sprintf(
		`{"client_id":%q,"title":"  Send quote  ","description":"v2","due_date":"2024-04-30T10:00:00+02:00","external_id":"crm-7"}`,
		clientID,
	))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "Send quote", body["title"])
	assert.Equal(t, "todo", body["status"])
	assert.Equal(t, clientID, body["client_id"])
	assert.Equal(t, "crm-7", body["external_id"])
	assert.Equal(t, "2024-04-30T08:00:00Z", body["due_date"])
	for _, key := range []string{"id", "description", "created_at", "updated_at"} {
		assert.Contains(t, body, key)
	}

	rec = s.do(t, http.MethodPost, "/api/tasks", fmt.Sprintf(`{"client_id":%q,"title":"dup","external_id":"crm-7"}`, clientID))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "a task with this external_id already exists", errorMessage(t, rec))

	// optional fields serialize as null
	rec = s.do(t, http.MethodPost, "/api/tasks", fmt.Sprintf(`{"client_id":%q,"title":"bare"}`, clientID))
	require.Equal(t, http.StatusCreated, rec.Code)
	var bare map[string]any
	decode(t, rec, &bare)
	assert.Nil(t, bare["description"])
	assert.Nil(t, bare["due_date"])
	assert.Nil(t, bare["external_id"])
}

func TestCreateTask_BadRequests(t *testing.T) {
	s := newTestServer(t, 100)
	clientID := s.client(t, "Acme")

	cases := map[string]string{
		"malformed json":   `{"title":`,
		"bad due date":     fmt.Sprintf(`{"client_id":%q,"title":"x","due_date":"tomorrow"}`, clientID),
		"blank title":      fmt.Sprintf(`{"client_id":%q,"title":"   "}`, clientID),
		"missing client":   `{"title":"x"}`,
		"malformed client": `{"client_id":"acme","title":"x"}`,
		"unknown client":   fmt.Sprintf(`{"client_id":%q,"title":"x"}`, uuid.NewString()),
		"title too long":   fmt.Sprintf(`{"client_id":%q,"title":%q}`, clientID, strings.Repeat("a", 501)),
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/tasks", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.NotEmpty(t, errorMessage(t, rec))
		})
	}
}

func TestListTasks_FollowsCursor(t *testing.T) {
	s := newTestServer(t, 1000)
	clientID := s.client(t, "Acme")
	other := s.client(t, "Other")

	created := map[string]bool{}
	for i := 0; i < 7; i++ {
		task := s.createTask(t, fmt.Sprintf(`{"client_id":%q,"title":"T%d"}`, clientID, i))
		created[task.ID] = true
		s.createTask(t, fmt.Sprintf(`{"client_id":%q,"title":"O%d"}`, other, i))
	}

	seen := map[string]bool{}
	var previous *model.Task
	target := fmt.Sprintf("/api/tasks?client_id=%s&limit=3", clientID)
	for pages := 0; pages < 10; pages++ {
		rec := s.do(t, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var page pageBody
		decode(t, rec, &page)
		assert.Equal(t, page.HasMore, page.NextCursor != nil)

		for i := range page.Items {
			item := page.Items[i]
			assert.True(t, created[item.ID], "task from another client leaked")
			assert.False(t, seen[item.ID], "duplicate task across pages")
			seen[item.ID] = true
			if previous != nil {
				// same timestamp for all tasks, so the id breaks the tie
				assert.Greater(t, previous.ID, item.ID)
			}
			previous = &item
		}

		if !page.HasMore {
			break
		}
		target = fmt.Sprintf("/api/tasks?client_id=%s&limit=3&cursor=%s", clientID, url.QueryEscape(*page.NextCursor))
	}

	assert.Len(t, seen, 7)
}

func TestListTasks_BadRequests(t *testing.T) {
	s := newTestServer(t, 100)
	clientID := s.client(t, "Acme")

	targets := []string{
		"/api/tasks",
		"/api/tasks?client_id=nope",
		"/api/tasks?client_id=" + clientID + "&limit=0",
		"/api/tasks?client_id=" + clientID + "&limit=101",
		"/api/tasks?client_id=" + clientID + "&limit=abc",
		"/api/tasks?client_id=" + clientID + "&status=DONE",
		"/api/tasks?client_id=" + clientID + "&cursor=" + url.QueryEscape("@@not-base64@@"),
	}

	for _, target := range targets {
		rec := s.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t, 100)
	clientID := s.client(t, "Acme")

	task := s.createTask(t, fmt.Sprintf(`{"client_id":%q,"title":"Lifecycle"}`, clientID))

	rec := s.do(t, http.MethodGet, "/api/tasks/"+task.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/tasks/"+task.ID+"/status", `{"status":"finished"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/tasks/"+task.ID+"/status", `{"status":"done"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Task
	decode(t, rec, &updated)
	assert.Equal(t, "done", string(updated.Status))

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/tasks?client_id=%s&status=done", clientID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page pageBody
	decode(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)

	rec = s.do(t, http.MethodDelete, "/api/tasks/"+task.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rec.Body.String())

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = s.do(t, method, "/api/tasks/"+task.ID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
	}

	rec = s.do(t, http.MethodPatch, "/api/tasks/"+task.ID+"/status", `{"status":"todo"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/tasks/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverdueCount(t *testing.T) {
	s := newTestServer(t, 100)
	clientA := s.client(t, "A")
	clientB := s.client(t, "B")

	past := s.now.Add(-time.Hour).Format(time.RFC3339)
	future := s.now.Add(time.Hour).Format(time.RFC3339)

	for i := 0; i < 3; i++ {
		s.createTask(t, fmt.Sprintf(`{"client_id":%q,"title":"late","due_date":%q}`, clientA, past))
	}
	done := s.createTask(t, fmt.Sprintf(`{"client_id":%q,"title":"done","due_date":%q}`, clientA, past))
	rec := s.do(t, http.MethodPatch, "/api/tasks/"+done.ID+"/status", `{"status":"done"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s.createTask(t, fmt.Sprintf(`{"client_id":%q,"title":"upcoming","due_date":%q}`, clientB, future))

	rec = s.do(t, http.MethodGet, "/api/tasks/overdue-count", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`[{"client_id":%q,"overdue_count":3}]`, clientA), rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, 2)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/health", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/health", "").Code)

	rec := s.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", errorMessage(t, rec))
}

func TestStoreFailureIsOpaque(t *testing.T) {
	s := newTestServer(t, 100)

	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := s.do(t, http.MethodGet, "/api/clients", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorMessage(t, rec))
}

func TestStoreFailureLoggedOnceWithCause(t *testing.T) {
	s := newTestServer(t, 100)
	core, logs := observer.New(zap.InfoLevel)
	s.e.Use(middleware.RequestLogger(zap.New(core)))

	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := s.do(t, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "closed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.Contains(t, entries[0].ContextMap()["error"], "database is closed")
}

func TestValidationFailureLoggedAsWarning(t *testing.T) {
	s := newTestServer(t, 100)
	core, logs := observer.New(zap.InfoLevel)
	s.e.Use(middleware.RequestLogger(zap.New(core)))

	rec := s.do(t, http.MethodGet, "/api/tasks/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusBadRequest), entries[0].ContextMap()["status"])
}
