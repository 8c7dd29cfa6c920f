package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"budgettracker/internal/core"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(httptest.NewRecorder(), req)
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantJSON    bool
		want        map[string]string
	}{
		{
			name:        "json strings",
			contentType: "application/json",
			body:        `{"kind":"expense","amount":"12,50","category":"Groceries"}`,
			wantJSON:    true,
			want:        map[string]string{"kind": "expense", "amount": "12,50", "category": "Groceries", "date": ""},
		},
		{
			name:        "json number keeps its digits",
			contentType: "application/json",
			body:        `{"amount": 1000000000.01}`,
			wantJSON:    true,
			want:        map[string]string{"amount": "1000000000.01"},
		},
		{
			name:        "form encoded",
			contentType: "application/x-www-form-urlencoded",
			body:        "kind=income&amount=10&description=%20bonus%20",
			want:        map[string]string{"kind": "income", "amount": "10", "description": "bonus"},
		},
		{
			name:        "control characters are stripped",
			contentType: "application/json",
			body:        `{"description":"caf\u0000fe\u0007 bar"}`,
			wantJSON:    true,
			want:        map[string]string{"description": "caffe bar"},
		},
		{
			name: "empty body",
			want: map[string]string{"kind": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.contentType, tt.body)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Fatalf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			for key, want := range tt.want {
				if got := p.Get(key); got != want {
					t.Errorf("Get(%q) = %q, want %q", key, got, want)
				}
			}
		})
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	p := newParser(t, "application/json", `{"amount":`)
	if err := p.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	// Parse is memoized.
	if err := p.Parse(); err == nil {
		t.Fatal("second Parse() should return the same error")
	}

	big := newParser(t, "application/x-www-form-urlencoded", "description="+strings.Repeat("a", maxBodyBytes+1))
	if err := big.Parse(); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestRawTransactionDefaultsToToday(t *testing.T) {
	p := newParser(t, "", "kind=expense&amount=5&category=Other")
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	raw := p.rawTransaction()
	if !raw.DefaultToday || raw.Date != "" || raw.Kind != "expense" {
		t.Fatalf("unexpected raw transaction %+v", raw)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseID(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errInvalidID) {
			t.Fatalf("parseID(%q) error should wrap errInvalidID", tt.raw)
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseMonthQuery(t *testing.T) {
	tests := []struct {
		query   string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"month=2025-06", "2025-06", false},
		{"month=+2025-06+", "2025-06", false},
		{"month=2025-6", "", true},
		{"month=2025-13", "", true},
		{"month=june", "", true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := parseMonthQuery(q)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseMonthQuery(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseMonthQuery(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestParseMonthsParam(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", defaultTrendMonths, false},
		{"months=1", 1, false},
		{"months=120", 120, false},
		{"months=0", 0, true},
		{"months=121", 0, true},
		{"months=x", 0, true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := parseMonthsParam(q)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseMonthsParam(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseMonthsParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestParseKindQuery(t *testing.T) {
	if k, err := parseKindQuery(url.Values{}); err != nil || k != "" {
		t.Fatalf("empty kind = %q, %v", k, err)
	}
	if k, err := parseKindQuery(url.Values{"kind": {"income"}}); err != nil || k != core.Income {
		t.Fatalf("income kind = %q, %v", k, err)
	}
	if _, err := parseKindQuery(url.Values{"kind": {"Income"}}); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
