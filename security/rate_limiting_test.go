package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiterEvent(t *testing.T) *core.RequestEvent {
	t.Helper()

	e := &core.RequestEvent{}
	e.App = pocketbase.New()
	e.Request = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	e.Response = httptest.NewRecorder()
	return e
}

func TestRateLimiter_OverBudget(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, 30)

	e := newLimiterEvent(t)
	key := "ratelimit:login:" + e.RealIP()
	mock.ExpectIncr(key).SetVal(31)

	err := limiter.Limit("login")(e)

	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, apis.ToApiError(err).Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_FirstHitSetsWindow(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, 30)

	e := newLimiterEvent(t)
	key := "ratelimit:login:" + e.RealIP()
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)

	err := limiter.Limit("login")(e)

	assert.NoError(t, err)
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, 30)

	e := newLimiterEvent(t)
	key := "ratelimit:login:" + e.RealIP()
	mock.ExpectIncr(key).SetErr(assert.AnError)

	err := limiter.Limit("login")(e)

	assert.NoError(t, err)
}
