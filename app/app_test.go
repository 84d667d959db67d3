package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(2, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 200 429]", codes)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("second client = %d, want 200", w.Code)
	}
}

func TestErrorHandlerRecovers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", w.Code)
	}
}

func TestAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  int
	}{
		{"anonymous", func(*gin.Context) {}, http.StatusUnauthorized},
		{"student", func(c *gin.Context) { c.Set("userID", "alice"); c.Set("isAdmin", false) }, http.StatusForbidden},
		{"admin", func(c *gin.Context) { c.Set("userID", "root"); c.Set("isAdmin", true) }, http.StatusOK},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.GET("/", func(c *gin.Context) { tc.setup(c); c.Next() }, AdminOnly(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			if w.Code != tc.want {
				t.Fatalf("code = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	for _, prod := range []bool{true, false} {
		l, err := NewLogger(prod, "warn")
		if err != nil {
			t.Fatalf("NewLogger(%v): %v", prod, err)
		}
		if l.Core().Enabled(zap.InfoLevel) {
			t.Fatalf("NewLogger(%v, warn) logs info", prod)
		}
	}
}
