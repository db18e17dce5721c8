package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/teamhub/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/teamhub/internal/core/services"
)

// fakeAI returns canned derivations so handler tests run without a
// provider.
type fakeAI struct {
	embedding []float32
}

func (f *fakeAI) Embed(context.Context, string) ([]float32, error) {
	if f.embedding != nil {
		return f.embedding, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeAI) Summarize(context.Context, string) (string, error) {
	return "a summary", nil
}

func (f *fakeAI) GenerateTags(context.Context, string) ([]string, error) {
	return []string{"alpha", "beta"}, nil
}

func (f *fakeAI) Answer(_ context.Context, question, _ string) (string, error) {
	return "answer to: " + question, nil
}

type testEnv struct {
	router *Router
	store  *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	ai := &fakeAI{}

	auth := services.NewAuthService(store, []byte("test-secret"), time.Hour)
	docs := services.NewDocumentService(store, store, store, store, ai)
	search := services.NewSearchService(store, store, store, ai)
	qa := services.NewQAService(store, ai)

	return &testEnv{
		router: NewRouter(auth, docs, search, qa, Options{}),
		store:  store,
	}
}

// do runs one request through the router and decodes the JSON body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.Engine().ServeHTTP(rec, req)

	var decoded map[string]any
	if len(rec.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded),
			"body: %s", rec.Body.String())
	}
	return rec.Code, decoded
}

// register creates a user and returns a login token.
func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()

	status, _ := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": name, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	return body["data"].(map[string]any)["token"].(string)
}

func (e *testEnv) createDoc(t *testing.T, token, title, content string) map[string]any {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/docs", token, map[string]any{
		"title": title, "content": content,
	})
	require.Equal(t, http.StatusCreated, status)
	return body["data"].(map[string]any)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/api/docs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "unauthorized", body["error"].(map[string]any)["kind"])

	status, _ = env.do(t, http.MethodGet, "/api/docs", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterValidationListsAllFields(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "", "email": "not-an-email", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	errBody := body["error"].(map[string]any)
	assert.Equal(t, "invalid_input", errBody["kind"])
	assert.Len(t, errBody["fields"], 3)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Alice", "alice@example.com")

	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Alice Again", "email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_exists", body["error"].(map[string]any)["kind"])
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Alice", "alice@example.com")

	status, _ := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "alice@example.com", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestDocumentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")

	doc := env.createDoc(t, token, "Deploy Guide", "how we deploy services")
	assert.Equal(t, "a summary", doc["summary"])
	assert.Equal(t, []any{"alpha", "beta"}, doc["tags"])
	assert.Equal(t, "Alice", doc["createdBy"].(map[string]any)["name"])
	_, hasEmbedding := doc["embedding"]
	assert.False(t, hasEmbedding)

	id := doc["id"].(string)

	status, body := env.do(t, http.MethodGet, "/api/docs/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Deploy Guide", body["data"].(map[string]any)["title"])

	status, body = env.do(t, http.MethodPut, "/api/docs/"+id, token, map[string]any{
		"title": "Deploy Guide v2",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Deploy Guide v2", body["data"].(map[string]any)["title"])

	status, body = env.do(t, http.MethodGet, "/api/docs/"+id+"/versions", token, nil)
	require.Equal(t, http.StatusOK, status)
	versions := body["data"].([]any)
	require.Len(t, versions, 1)
	assert.Equal(t, "Deploy Guide", versions[0].(map[string]any)["title"])

	status, _ = env.do(t, http.MethodDelete, "/api/docs/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, "/api/docs/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Versions survive the delete.
	status, body = env.do(t, http.MethodGet, "/api/docs/"+id+"/versions", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 1)
}

func TestCreateDocValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")

	status, body := env.do(t, http.MethodPost, "/api/docs", token, map[string]any{
		"title": "bad title!!", "content": "",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Len(t, body["error"].(map[string]any)["fields"], 2)
}

func TestUpdateForbiddenForNonOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Alice", "alice@example.com")
	other := env.register(t, "Bob", "bob@example.com")

	doc := env.createDoc(t, owner, "Owned Doc", "content")
	id := doc["id"].(string)

	status, body := env.do(t, http.MethodPut, "/api/docs/"+id, other, map[string]any{
		"title": "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["error"].(map[string]any)["kind"])
}

func TestListWithTagFilter(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")
	env.createDoc(t, token, "Doc One", "content one")
	env.createDoc(t, token, "Doc Two", "content two")

	status, body := env.do(t, http.MethodGet, "/api/docs?tag=alpha", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 2)

	status, body = env.do(t, http.MethodGet, "/api/docs?tag=missing", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 0)
}

func TestRegenerateSummaryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")
	doc := env.createDoc(t, token, "Doc", "content")
	id := doc["id"].(string)

	status, body := env.do(t, http.MethodPost, "/api/docs/"+id+"/summarize", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a summary", body["data"].(map[string]any)["summary"])

	// No version is recorded for a regeneration.
	status, body = env.do(t, http.MethodGet, "/api/docs/"+id+"/versions", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 0)
}

func TestActivityFeedEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")
	env.createDoc(t, token, "Doc One", "content")
	env.createDoc(t, token, "Doc Two", "content")

	status, body := env.do(t, http.MethodGet, "/api/docs/activity/feed/latest", token, nil)
	require.Equal(t, http.StatusOK, status)
	feed := body["data"].([]any)
	require.Len(t, feed, 2)
	assert.Equal(t, "Doc Two", feed[0].(map[string]any)["docTitle"])
	assert.Equal(t, "create", feed[0].(map[string]any)["action"])
	assert.Equal(t, "Alice", feed[0].(map[string]any)["userName"])
}

func TestTextSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")
	env.createDoc(t, token, "Kafka Guide", "partitions and consumer groups")
	env.createDoc(t, token, "Redis Guide", "eviction and persistence")

	status, body := env.do(t, http.MethodGet, "/api/search/text?q=kafka", token, nil)
	require.Equal(t, http.StatusOK, status)
	results := body["data"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "Kafka Guide", results[0].(map[string]any)["title"])

	status, body = env.do(t, http.MethodGet, "/api/search/text?q=", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_input", body["error"].(map[string]any)["kind"])
}

func TestSemanticSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")
	env.createDoc(t, token, "Doc", "content")

	status, body := env.do(t, http.MethodGet, "/api/search/semantic?q=anything", token, nil)
	require.Equal(t, http.StatusOK, status)
	results := body["data"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].(map[string]any)["score"])
}

func TestQAEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")
	doc := env.createDoc(t, token, "Doc", "content")

	status, body := env.do(t, http.MethodPost, "/api/qa", token, map[string]any{
		"question": "what is deployed?",
	})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "answer to: what is deployed?", data["answer"])
	require.Len(t, data["sources"], 1)

	// Single-document mode.
	status, body = env.do(t, http.MethodPost, "/api/qa", token, map[string]any{
		"question": "what is this?", "docId": doc["id"],
	})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["data"].(map[string]any)["sources"], 1)

	// Blank question.
	status, _ = env.do(t, http.MethodPost, "/api/qa", token, map[string]any{
		"question": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestQAEmptyCorpus(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")

	status, body := env.do(t, http.MethodPost, "/api/qa", token, map[string]any{
		"question": "anything?",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["error"].(map[string]any)["kind"])
}

func TestRateLimit(t *testing.T) {
	store := memory.NewStore()
	ai := &fakeAI{}
	auth := services.NewAuthService(store, []byte("test-secret"), time.Hour)
	docs := services.NewDocumentService(store, store, store, store, ai)
	search := services.NewSearchService(store, store, store, ai)
	qa := services.NewQAService(store, ai)
	router := NewRouter(auth, docs, search, qa, Options{RateLimitRPS: 1, RateLimitBurst: 2})
	env := &testEnv{router: router, store: store}

	var limited bool
	for i := 0; i < 5; i++ {
		status, _ := env.do(t, http.MethodGet, "/health", "", nil)
		if status == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected a 429 within %d requests", 5)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := newRateLimiter(1, 1)
	rl.limiterFor("198.51.100.1")
	rl.limiterFor("198.51.100.2")

	rl.mu.Lock()
	rl.clients["198.51.100.1"].lastSeen = time.Now().Add(-2 * clientBucketTTL)
	rl.nextSweep = time.Time{}
	rl.mu.Unlock()

	rl.limiterFor("198.51.100.3")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "198.51.100.1")
	assert.Contains(t, rl.clients, "198.51.100.2")
	assert.Contains(t, rl.clients, "198.51.100.3")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/docs", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	env.router.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestPagination(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com")
	for i := 0; i < 3; i++ {
		env.createDoc(t, token, fmt.Sprintf("Doc %d", i), "content")
	}

	status, body := env.do(t, http.MethodGet, "/api/docs?page=2&limit=2", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 1)
}
