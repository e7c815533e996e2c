package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/cartsync/pkg/config"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRateStore) RateLimitKey(scope string) string { return "cs:rate_limit:" + scope }

func loginRequest(email, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.RemoteAddr = remote
	return req
}

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), `"password":"secret"`)
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoginRateLimitAllowsUnderLimit(t *testing.T) {
	cfg := config.AuthRateLimitConfig{Window: time.Minute, IPLimit: 2, EmailLimit: 2}
	handler := LoginRateLimit(cfg, newFakeRateStore(), nil)(okHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("tester@example.com", "1.2.3.4:5678"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRateLimitEmailLimitTriggers(t *testing.T) {
	cfg := config.AuthRateLimitConfig{Window: time.Minute, EmailLimit: 2}
	handler := LoginRateLimit(cfg, newFakeRateStore(), nil)(okHandler(t))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest(" Blocked@Example.com", "1.2.3."+string(rune('0'+i))+":5678"))
		if i < 2 {
			assert.Equal(t, http.StatusOK, rec.Code)
			continue
		}
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))

		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, string(pkgerrors.CodeRateLimit), payload.Error.Code)
	}
}

func TestLoginRateLimitIPLimitTriggers(t *testing.T) {
	cfg := config.AuthRateLimitConfig{Window: time.Minute, IPLimit: 1}
	store := newFakeRateStore()
	handler := LoginRateLimit(cfg, store, nil)(okHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("a@example.com", "5.6.7.8:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("b@example.com", "5.6.7.8:9999"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, store.counts, "cs:rate_limit:login:ip:5.6.7.8")
}

func TestLoginRateLimitPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:80"
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestLoginRateLimitStoreFailure(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	cfg := config.AuthRateLimitConfig{Window: time.Minute, IPLimit: 5}
	handler := LoginRateLimit(cfg, store, nil)(okHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("a@example.com", "5.6.7.8:1234"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLoginRateLimitDisabledWithoutStore(t *testing.T) {
	cfg := config.AuthRateLimitConfig{Window: time.Minute, IPLimit: 1}
	handler := LoginRateLimit(cfg, nil, nil)(okHandler(t))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("a@example.com", "5.6.7.8:1234"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
