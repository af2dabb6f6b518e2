package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func checkoutRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{"/api/v1/checkout"}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

type countingHandler struct {
	calls  int
	status int
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	_, _ = fmt.Fprintf(w, `{"call":%d,"echo":%q}`, h.calls, string(body))
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestIdempotencyRequiresKey(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(newFakeStore(), time.Hour, nil)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(`{}`, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, next.calls)
}

func TestIdempotencyRejectsOversizedBody(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(store, time.Hour, nil)(next)

	body := `{"note":"` + strings.Repeat("x", maxIdempotentBodyBytes) + `"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(body, "key-big"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeErrorCode(t, rec))
	assert.Equal(t, 0, next.calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(store, 7*24*time.Hour, nil)(next)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(`{"a":1}`, "key-1"))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest(`{"a":1}`, "key-1"))
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(idempotentReplayHeader))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 7*24*time.Hour, store.ttls["fake:POST|/api/v1/checkout:key-1"])
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(newFakeStore(), time.Hour, nil)(next)

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(`{"a":1}`, "key-1"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(`{"a":2}`, "key-1"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), decodeErrorCode(t, rec))
	assert.Equal(t, 1, next.calls)
}

func TestIdempotencyStoresRejectionsButReleasesServerErrors(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{status: http.StatusUnprocessableEntity}
	handler := Idempotency(store, time.Hour, nil)(next)

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(`{}`, "rejected"))
	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(`{}`, "rejected"))
	assert.Equal(t, 1, next.calls)

	next.status = http.StatusServiceUnavailable
	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(`{}`, "failed"))
	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(`{}`, "failed"))
	assert.Equal(t, 3, next.calls)
	_, exists := store.data["fake:POST|/api/v1/checkout:failed"]
	assert.False(t, exists)
}

func TestIdempotencyReportsInFlightRequest(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(store, time.Hour, nil)(next)

	pending, err := json.Marshal(idempotencyRecord{Pending: true, RequestHash: hashBody([]byte(`{}`))})
	require.NoError(t, err)
	store.data["fake:POST|/api/v1/checkout:busy"] = string(pending)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(`{}`, "busy"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "in progress")
	assert.Equal(t, 0, next.calls)
}

func TestIdempotencyWithoutStorePassesThrough(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(nil, time.Hour, nil)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(`{}`, ""))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, next.calls)
}
