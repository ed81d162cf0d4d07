package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (f *fakeIdempotencyRepo) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if k, ok := f.keys[key+"/"+userID.String()]; ok {
		out := *k
		return &out, nil
	}
	return nil, nil
}

func (f *fakeIdempotencyRepo) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[ikey.Key+"/"+ikey.UserID.String()] = ikey
	return nil
}

func (f *fakeIdempotencyRepo) DeleteExpired(ctx context.Context) error {
	return nil
}

func idempotencyTestRouter(repo *fakeIdempotencyRepo, required bool, userID uuid.UUID, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	if required {
		router.POST("/charge", IdempotencyRequired(repo), handler)
	} else {
		router.POST("/charge", Idempotency(repo), handler)
	}
	return router
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	userID := uuid.New()

	calls := 0
	router := idempotencyTestRouter(repo, false, userID, func(c *gin.Context) {
		calls++
		c.JSON(201, gin.H{"call": calls})
	})

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/charge", nil)
	req.Header.Set(IdempotencyKeyHeader, "till-42")
	router.ServeHTTP(first, req)

	require.Equal(t, 201, first.Code)
	assert.Equal(t, 1, calls)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/charge", nil)
	req.Header.Set(IdempotencyKeyHeader, "till-42")
	router.ServeHTTP(second, req)

	// The handler did not run again; the original response was replayed.
	assert.Equal(t, 1, calls)
	assert.Equal(t, 201, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	repo := newFakeIdempotencyRepo()

	calls := 0
	router := idempotencyTestRouter(repo, false, uuid.New(), func(c *gin.Context) {
		calls++
		c.JSON(200, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/charge", nil))
		assert.Equal(t, 200, w.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotencyRequiredRejectsMissingKey(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	router := idempotencyTestRouter(repo, true, uuid.New(), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/charge", nil))
	assert.Equal(t, 400, w.Code)
}

func TestIdempotencyFailedAttemptIsRetryable(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	userID := uuid.New()

	calls := 0
	router := idempotencyTestRouter(repo, true, userID, func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.JSON(409, gin.H{"success": false})
			return
		}
		c.JSON(200, gin.H{"success": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/charge", nil)
	req.Header.Set(IdempotencyKeyHeader, "retry-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 409, w.Code)

	// The failure was not cached; the retry runs the handler again.
	req = httptest.NewRequest(http.MethodPost, "/charge", nil)
	req.Header.Set(IdempotencyKeyHeader, "retry-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	gin.SetMode(gin.TestMode)

	calls := 0
	router := gin.New()
	router.POST("/charge", func(c *gin.Context) {
		c.Set("user_id", uuid.New())
		c.Next()
	}, Idempotency(repo), func(c *gin.Context) {
		calls++
		c.JSON(200, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/charge", nil)
		req.Header.Set(IdempotencyKeyHeader, "shared-key")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code)
	}

	// Different users, same key: both requests run.
	assert.Equal(t, 2, calls)
}
