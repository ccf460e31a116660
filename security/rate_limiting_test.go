package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runThroughLimiter(t *testing.T, limiter *RateLimiter, max int64) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/verify/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := limiter.ScanRateLimit(max)(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	require.NoError(t, handler(c))
	return rec
}

func TestScanRateLimit_FirstRequestPasses(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	// httptest requests come from 192.0.2.1
	mock.ExpectIncr("ratelimit:scan:192.0.2.1").SetVal(1)
	mock.ExpectExpire("ratelimit:scan:192.0.2.1", time.Minute).SetVal(true)

	rec := runThroughLimiter(t, limiter, 30)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRateLimit_UnderLimitPasses(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	mock.ExpectIncr("ratelimit:scan:192.0.2.1").SetVal(15)

	rec := runThroughLimiter(t, limiter, 30)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRateLimit_OverLimitRejected(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	mock.ExpectIncr("ratelimit:scan:192.0.2.1").SetVal(31)

	rec := runThroughLimiter(t, limiter, 30)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many verification attempts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRateLimit_RedisDownFailsOpen(t *testing.T) {
	db, _ := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	// No expectations registered, so Incr errors. Scanning must keep working
	// when Redis is unreachable on event day.
	rec := runThroughLimiter(t, limiter, 30)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_Attempts(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	mock.ExpectGet("ratelimit:scan:10.0.0.5").SetVal("12")

	count, err := limiter.Attempts(context.Background(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_AttemptsNoWindow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	mock.ExpectGet("ratelimit:scan:10.0.0.5").RedisNil()

	count, err := limiter.Attempts(context.Background(), "10.0.0.5")
	require.NoError(t, err)
	assert.Zero(t, count)
}
