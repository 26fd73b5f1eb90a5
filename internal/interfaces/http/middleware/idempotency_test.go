package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/cache"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/dto"
	"github.com/Faiz-abdurrachman/SIDESA/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func idempotentRouter(t *testing.T, actor identity.Actor, status *int) (*gin.Engine, *cache.InMemoryIdempotencyStore, *int) {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	calls := 0
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(ActorKey, actor) })
	router.Use(Idempotency(store, time.Minute, nil))
	handler := func(c *gin.Context) {
		calls++
		c.Status(*status)
	}
	router.POST("/penduduk", handler)
	router.PUT("/penduduk/:id", handler)
	return router, store, &calls
}

func send(router *gin.Engine, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_DuplicatePostRejected(t *testing.T) {
	status := http.StatusCreated
	router, store, calls := idempotentRouter(t, identity.NewActor(uuid.New(), identity.RoleRT), &status)

	assert.Equal(t, http.StatusCreated, send(router, http.MethodPost, "/penduduk", "k-1").Code)
	w := send(router, http.MethodPost, "/penduduk", "k-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateRequest, errorCode(t, w))
	assert.Equal(t, 1, *calls)
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, http.StatusCreated, send(router, http.MethodPost, "/penduduk", "k-2").Code)
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_FailedRequestReleasesKey(t *testing.T) {
	status := http.StatusConflict
	router, store, calls := idempotentRouter(t, identity.NewActor(uuid.New(), identity.RoleRT), &status)

	assert.Equal(t, http.StatusConflict, send(router, http.MethodPost, "/penduduk", "k-1").Code)
	assert.Zero(t, store.Len())

	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, send(router, http.MethodPost, "/penduduk", "k-1").Code)
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_PassThrough(t *testing.T) {
	status := http.StatusOK
	router, store, calls := idempotentRouter(t, identity.NewActor(uuid.New(), identity.RoleAdmin), &status)

	send(router, http.MethodPost, "/penduduk", "")
	send(router, http.MethodPost, "/penduduk", "")
	send(router, http.MethodPut, "/penduduk/1", "k-put")
	send(router, http.MethodPut, "/penduduk/1", "k-put")

	assert.Equal(t, 4, *calls)
	assert.Zero(t, store.Len())
}

func TestIdempotency_KeyTooLong(t *testing.T) {
	status := http.StatusCreated
	router, _, calls := idempotentRouter(t, identity.NewActor(uuid.New(), identity.RoleAdmin), &status)

	w := send(router, http.MethodPost, "/penduduk", strings.Repeat("k", maxIdempotencyKeyLength+1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, *calls)
}

func TestIdempotency_ScopedPerActor(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	router := gin.New()
	router.Use(func(c *gin.Context) {
		id := uuid.MustParse(c.GetHeader("X-Test-Actor"))
		c.Set(ActorKey, identity.NewActor(id, identity.RoleRT))
	})
	router.Use(Idempotency(store, time.Minute, nil))
	router.POST("/penduduk", func(c *gin.Context) { c.Status(http.StatusCreated) })

	for _, actor := range []string{uuid.NewString(), uuid.NewString()} {
		req := httptest.NewRequest(http.MethodPost, "/penduduk", nil)
		req.Header.Set(IdempotencyKeyHeader, "same-key")
		req.Header.Set("X-Test-Actor", actor)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	}
	assert.Equal(t, 2, store.Len())
}

func TestIdempotency_StoreOutageFailsOpen(t *testing.T) {
	store := new(testutil.MockIdempotencyStore)
	store.On("Reserve", mock.Anything, mock.Anything, time.Minute).Return(false, errors.New("redis: connection refused"))

	router := gin.New()
	router.Use(Idempotency(store, time.Minute, nil))
	router.POST("/kk", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := send(router, http.MethodPost, "/kk", "k-1")
	require.Equal(t, http.StatusCreated, w.Code)
	store.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}
