package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (m *mockLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	m.keys = append(m.keys, key)
	return m.allowed, m.err
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })
	r.POST("/upload", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	generated := w.Header().Get(requestIDHeader)
	if len(generated) != 36 || w.Body.String() != generated {
		t.Errorf("应生成 UUID 并写入上下文，实际 header=%q body=%q", generated, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) != "abc-123" {
		t.Errorf("应沿用传入的 Request-ID，实际=%s", w.Header().Get(requestIDHeader))
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", requestIDMaxLen+1))
	r.ServeHTTP(w, req)
	if len(w.Header().Get(requestIDHeader)) != 36 {
		t.Error("超长 Request-ID 应被替换")
	}
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name    string
		limiter *mockLimiter
		want    int
	}{
		{"放行", &mockLimiter{allowed: true}, http.StatusOK},
		{"超限", &mockLimiter{allowed: false}, http.StatusTooManyRequests},
		{"Redis 故障降级", &mockLimiter{err: errors.New("redis down")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(RateLimit(tt.limiter, 5, time.Minute, zap.NewNop()))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
			if len(tt.limiter.keys) != 1 || !strings.HasSuffix(tt.limiter.keys[0], ":/ping") {
				t.Errorf("限流 key 不符: %v", tt.limiter.keys)
			}
		})
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	r := newEngine(RateLimit(nil, 5, time.Minute, zap.NewNop()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	if w.Code != http.StatusOK {
		t.Errorf("未启用 Redis 时应放行，got %d", w.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	r := newEngine(BodyLimit(16))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/upload", strings.NewReader("small")))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/upload", strings.NewReader(strings.Repeat("x", 64))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(SecurityHeaders())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))

	for _, h := range []string{"X-Frame-Options", "X-Content-Type-Options", "Content-Security-Policy"} {
		if w.Header().Get(h) == "" {
			t.Errorf("缺少响应头 %s", h)
		}
	}
}

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/records/:id", func(c *gin.Context) { c.String(http.StatusNotFound, "nope") })
	r.POST("/imports", func(c *gin.Context) { c.String(http.StatusCreated, "ok") })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	tests := []struct {
		method string
		target string
		body   string
		level  zapcore.Level
	}{
		{"GET", "/health", "", zapcore.DebugLevel},
		{"GET", "/records/abc", "", zapcore.WarnLevel},
		{"POST", "/imports", "xlsx-bytes", zapcore.InfoLevel},
		{"GET", "/boom", "", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, body))

			entries := logs.TakeAll()
			if len(entries) != 1 {
				t.Fatalf("每个请求应恰好一条日志，实际=%d", len(entries))
			}
			if entries[0].Level != tt.level {
				t.Errorf("期望级别 %s，实际=%s", tt.level, entries[0].Level)
			}
			fields := entries[0].ContextMap()
			if fields["request_id"] != w.Header().Get(requestIDHeader) {
				t.Errorf("request_id 不一致: %v", fields["request_id"])
			}
			if tt.body != "" && fields["upload_bytes"] != int64(len(tt.body)) {
				t.Errorf("应记录上传体积，实际=%v", fields["upload_bytes"])
			}
		})
	}
}
