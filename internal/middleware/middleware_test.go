package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func whoami(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"caller": CallerID(c)})
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", JWTAuth(testSecret), whoami)

	token, err := IssueToken(testSecret, "user-1", time.Hour)
	require.NoError(t, err)

	w := serve(r, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"caller":"user-1"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "").Code)

	forged, err := IssueToken("other-secret", "user-1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", forged).Code)

	expired, err := IssueToken(testSecret, "user-1", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", expired).Code)

	noUser, err := IssueToken(testSecret, "", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", noUser).Code)
}

func TestJWTAuth_EmptySecretVerifiesNothing(t *testing.T) {
	_, err := IssueToken("", "mallory", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)

	claims := JWTClaims{
		UserID:           "mallory",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWTAuth(""), whoami)
	r.GET("/maybe", OptionalJWTAuth(""), whoami)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", forged).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/maybe", forged).Code)
}

func TestOptionalJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", OptionalJWTAuth(testSecret), whoami)

	w := serve(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"caller":""}`, w.Body.String())

	token, _ := IssueToken(testSecret, "user-2", time.Hour)
	w = serve(r, http.MethodGet, "/me", token)
	assert.JSONEq(t, `{"caller":"user-2"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "garbage").Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, http.MethodGet, "/", "")
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())
}

func TestLimiter(t *testing.T) {
	now := time.Now()
	l := NewLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	r := gin.New()
	r.GET("/", OptionalJWTAuth(testSecret), l.Handler(), whoami)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	token, _ := IssueToken(testSecret, "user-3", time.Hour)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", token).Code, "authenticated callers have their own bucket")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, l.purge())
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
}

func TestLimiter_StartPurge(t *testing.T) {
	now := time.Now()
	l := NewLimiter(5, time.Minute)
	l.now = func() time.Time { return now }
	l.allow("ip:10.0.0.1")
	l.allow("ip:10.0.0.2")
	now = now.Add(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.StartPurge(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return len(l.entries) == 0
	}, time.Second, 10*time.Millisecond)
}
