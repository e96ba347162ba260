package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pabu-app/focusd/internal/storage"
	"github.com/rs/zerolog"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		address string
		want    bool
	}{
		{"parent@example.com", true},
		{"a.b+c@sub.example.org", true},
		{"", false},
		{"no-at-sign", false},
		{"missing@domain", false},
		{"spaces in@example.com", false},
	}

	for _, tt := range tests {
		if got := IsValidEmail(tt.address); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.address, got, tt.want)
		}
	}
}

func testEntry() storage.SessionHistoryEntry {
	start := time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)
	return storage.SessionHistoryEntry{
		ID:          "session-1",
		ProjectID:   "project-1",
		ProjectName: "Math Adventure",
		StartTime:   start,
		EndTime:     start.Add(30 * time.Minute),
		Duration:    1830000, // 30m 30s
		URLsViewed: []storage.VisitEntry{
			{URL: "https://a.example", Title: "Long Division", Duration: 1200000},
			{URL: "https://b.example", Title: "", Duration: 45000},
		},
		Summary: "Viewed 2 unique pages.",
	}
}

func TestSendSummarySuccess(t *testing.T) {
	var got sendRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1.0/email/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewEmailClient(Config{
		BaseURL:    ts.URL,
		ServiceID:  "default_service",
		TemplateID: "template_1",
		PublicKey:  "public",
	}, zerolog.Nop())

	if !client.SendSummary(context.Background(), testEntry(), "parent@example.com", "Alex") {
		t.Fatal("expected delivery success")
	}

	if got.ServiceID != "default_service" || got.UserID != "public" {
		t.Fatalf("unexpected request envelope: %+v", got)
	}
	params := got.TemplateParams
	if params.RecipientEmail != "parent@example.com" || params.ChildName != "Alex" {
		t.Fatalf("unexpected recipient params: %+v", params)
	}
	if params.Duration != "30m 30s" {
		t.Fatalf("unexpected duration: %q", params.Duration)
	}
	if params.StartTime != "2:05 PM" || params.EndTime != "2:35 PM" {
		t.Fatalf("unexpected times: %q .. %q", params.StartTime, params.EndTime)
	}
	if params.URLsViewed != 2 {
		t.Fatalf("unexpected urlsViewed: %d", params.URLsViewed)
	}
	// Top sites sorted by duration, title falling back to URL.
	lines := strings.Split(params.TopSites, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 top site lines, got %q", params.TopSites)
	}
	if !strings.Contains(lines[0], "Long Division") || !strings.Contains(lines[0], "20m 0s") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "https://b.example") || !strings.Contains(lines[1], "45s") {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
}

func TestSendSummaryFailureIsSwallowed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewEmailClient(Config{BaseURL: ts.URL}, zerolog.Nop())
	if client.SendSummary(context.Background(), testEntry(), "parent@example.com", "Alex") {
		t.Fatal("expected delivery failure")
	}

	// Unreachable endpoint also just reports false.
	ts.Close()
	if client.SendSummary(context.Background(), testEntry(), "parent@example.com", "Alex") {
		t.Fatal("expected delivery failure for unreachable endpoint")
	}
}

func TestFormatTopSitesEmpty(t *testing.T) {
	if got := formatTopSites(nil); got != "No sites visited during this session" {
		t.Fatalf("unexpected empty top sites: %q", got)
	}
}
