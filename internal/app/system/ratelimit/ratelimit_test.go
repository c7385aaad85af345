package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/system/auth"
)

func TestLimiter_AllowAndWindowReset(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("third request should be limited")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if !l.Allow("b") {
		t.Error("other keys have their own window")
	}

	now = now.Add(time.Minute + time.Second)
	if !l.Allow("a") {
		t.Error("request after the window should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Hour)
	defer l.Stop()

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("second request should be limited")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("Reset should reopen the window")
	}
	l.Stop()
	l.Stop()
}

func TestMiddleware(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	h := Middleware(l, ByIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
}

func TestByUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	if got := ByUser(req); got != "ip:10.0.0.9" {
		t.Errorf("anonymous key = %q", got)
	}
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "abc"})
	if got := ByUser(req); got != "user:abc" {
		t.Errorf("signed-in key = %q", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.1:80", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "10.0.0.1:80", "5.6.7.8"},
		{"remote addr", nil, "9.9.9.9:443", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
