package utils

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Random code tests

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(3)
	require.NoError(t, err)

	assert.Len(t, code, 6)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]+$`), code)
}

func TestGenerateCode_Distinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenerateCode(8)
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

// Slug tests

func TestSlugify(t *testing.T) {
	slug, err := Slugify("Tech Conference 2026")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^tech-conference-2026-[0-9a-f]{6}$`), slug)
}

func TestSlugify_StripsInvalidCharacters(t *testing.T) {
	slug, err := Slugify("  Gala  Night: 100% Fun!  ")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^gala-night-100-fun-[0-9a-f]{6}$`), slug)
}

func TestSlugify_EmptyName(t *testing.T) {
	slug, err := Slugify("   ")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{6}$`), slug)
}

func TestSlugify_UniquePerCall(t *testing.T) {
	first, err := Slugify("Tech Conference 2026")
	require.NoError(t, err)
	second, err := Slugify("Tech Conference 2026")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

// Circuit breaker tests

func TestCircuitBreaker_SuccessKeepsClosed(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)

	for i := 0; i < 10; i++ {
		err := cb.Do(context.Background(), func(ctx context.Context) error { return nil })
		assert.NoError(t, err)
	}
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)
	boom := errors.New("provider down")

	for i := 0; i < 3; i++ {
		err := cb.Do(context.Background(), func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, BreakerOpen, cb.State())

	err := cb.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)
	boom := errors.New("provider down")

	cb.Do(context.Background(), func(ctx context.Context) error { return boom })
	cb.Do(context.Background(), func(ctx context.Context) error { return boom })
	cb.Do(context.Background(), func(ctx context.Context) error { return nil })
	cb.Do(context.Background(), func(ctx context.Context) error { return boom })
	cb.Do(context.Background(), func(ctx context.Context) error { return boom })

	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	boom := errors.New("provider down")

	cb.Do(context.Background(), func(ctx context.Context) error { return boom })
	assert.Equal(t, BreakerOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	err := cb.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	boom := errors.New("provider down")

	cb.Do(context.Background(), func(ctx context.Context) error { return boom })
	time.Sleep(20 * time.Millisecond)

	err := cb.Do(context.Background(), func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, BreakerOpen, cb.State())
}

// Redis helper tests

func TestRedisHealthCheck(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")

	assert.NoError(t, RedisHealthCheck(client))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisHealthCheck_Unreachable(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	assert.Error(t, RedisHealthCheck(client))
}
