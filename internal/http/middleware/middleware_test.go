package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/geoquiz/internal/auth"
	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/http/middleware"
	"github.com/ErlanBelekov/geoquiz/internal/reqctx"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testKey = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine protects GET /protected with Auth. The handler echoes the
// caller identity so tests can assert it was attached.
func newEngine() *gin.Engine {
	r := gin.New()
	tokens := auth.NewTokenService([]byte(testKey), time.Hour)
	r.GET("/protected", middleware.Auth(tokens), func(c *gin.Context) {
		id, _ := reqctx.IdentityFrom(c.Request.Context())
		c.String(http.StatusOK, "%s|%s", id.UserID, id.Email)
	})
	return r
}

func issue(t *testing.T, key string, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.NewTokenService([]byte(key), ttl).Issue(domain.Identity{UserID: "user-abc", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func doGet(r http.Handler, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_Rejections(t *testing.T) {
	expired := func() string {
		now := time.Now().Add(-25 * time.Hour)
		tok, err := auth.NewTokenService([]byte(testKey), 24*time.Hour, auth.WithClock(func() time.Time { return now })).
			Issue(domain.Identity{UserID: "user-abc", Email: "ann@example.com"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		return tok
	}()
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-abc", "email": "ann@example.com", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"bearer without token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong key", "Bearer " + issue(t, "different-key-that-is-32-chars!!", time.Hour)},
		{"expired", "Bearer " + expired},
		{"alg none", "Bearer " + noneAlg},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(newEngine(), tc.header)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != `{"message":"Unauthorized"}` {
				t.Errorf("body = %s", got)
			}
		})
	}
}

func TestAuth_ValidToken_AttachesIdentity(t *testing.T) {
	w := doGet(newEngine(), "Bearer "+issue(t, testKey, time.Hour))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "user-abc|ann@example.com" {
		t.Errorf("body = %q", got)
	}
}

func TestRequestID_GeneratesAndPreserves(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, reqctx.RequestID(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	if generated == "" || w.Body.String() != generated {
		t.Fatalf("generated id %q, body %q", generated, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "req-123" || w.Body.String() != "req-123" {
		t.Fatalf("incoming id not preserved: header %q body %q", w.Header().Get("X-Request-ID"), w.Body.String())
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	called := false
	r := gin.New()
	r.Use(middleware.CORS("https://quiz.example.com"))
	r.POST("/quizzes", func(c *gin.Context) {
		called = true
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/quizzes", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if called {
		t.Fatal("preflight must not reach the handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://quiz.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Error("Authorization header not allowed")
	}
}

func TestSecurity_SetsHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Security())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Cache-Control", "Content-Security-Policy"} {
		if w.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}
