package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name        string
		remoteAddr  string
		xff         string
		realIP      string
		want        string
		wantInvalid int64
	}{
		{"direct peer", "203.0.113.7:5555", "", "", "203.0.113.7", 0},
		{"untrusted peer cannot forward", "203.0.113.7:5555", "198.51.100.1", "", "203.0.113.7", 0},
		{"trusted proxy forwards", "10.0.0.2:80", "198.51.100.1, 10.0.0.2", "", "198.51.100.1", 0},
		{"trusted proxy real ip", "127.0.0.1:80", "", "198.51.100.9", "198.51.100.9", 0},
		{"garbage forwarded value", "192.168.1.1:80", "not-an-ip", "", "192.168.1.1", 1},
		{"no port", "203.0.113.8", "", "", "203.0.113.8", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			m := &securityMetrics{}
			if got := extractClientIP(req, m); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
			if m.invalidIPAttempts != tt.wantInvalid {
				t.Errorf("invalidIPAttempts = %d, want %d", m.invalidIPAttempts, tt.wantInvalid)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"normal api call", http.MethodGet, "/api/summary?month=2025-06", "Mozilla/5.0", false},
		{"path traversal", http.MethodGet, "/api/../../etc/passwd", "", true},
		{"dotenv probe", http.MethodGet, "/.env", "", true},
		{"sql injection", http.MethodGet, "/api/transactions?category=x%27+union+select+1", "", true},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("User-Agent", tt.agent)
			m := &securityMetrics{}
			if got := detectSuspiciousRequest(req, m); got != tt.want {
				t.Fatalf("detectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
			if tt.want && m.suspiciousRequests != 1 {
				t.Errorf("suspiciousRequests = %d, want 1", m.suspiciousRequests)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)
	defer rl.stop()

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if ok, _ := rl.allow("a"); !ok {
			t.Fatalf("request %d should pass", i)
		}
	}
	now = now.Add(20 * time.Second)
	ok, retry := rl.allow("a")
	if ok {
		t.Fatal("fourth request in the window should be refused")
	}
	if retry != 40*time.Second {
		t.Errorf("retry = %v, want 40s", retry)
	}
	if ok, _ := rl.allow("b"); !ok {
		t.Fatal("clients are limited independently")
	}

	now = now.Add(40 * time.Second)
	if ok, _ := rl.allow("a"); !ok {
		t.Fatal("a new window should reset the counter")
	}

	now = now.Add(11 * time.Minute)
	if removed := rl.cleanupStaleEntries(); removed != 2 {
		t.Fatalf("cleanupStaleEntries() = %d, want 2", removed)
	}

	// stop is idempotent.
	rl.stop()
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := map[time.Duration]string{
		0:                       "1",
		500 * time.Millisecond:  "1",
		time.Second:             "1",
		1500 * time.Millisecond: "2",
		40 * time.Second:        "40",
	}
	for d, want := range tests {
		if got := retryAfterSeconds(d); got != want {
			t.Errorf("retryAfterSeconds(%v) = %q, want %q", d, got, want)
		}
	}
}
