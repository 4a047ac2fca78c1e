package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchUsage_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/octocat/settings/billing/premium_request/usage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ghp_test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-GitHub-Api-Version"); got != apiVersion {
			t.Errorf("X-GitHub-Api-Version = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"timePeriod": {"year": 2026, "month": 8},
			"user": "octocat",
			"usageItems": [
				{"product": "copilot", "model": "gpt-4o", "grossQuantity": 120.0, "netQuantity": 0.0}
			]
		}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL("ghp_test", srv.URL)
	snap, err := c.FetchUsage(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("FetchUsage: %v", err)
	}
	if snap.User != "octocat" {
		t.Errorf("User = %q, want octocat", snap.User)
	}
	if snap.TimePeriod.Month == nil || *snap.TimePeriod.Month != 8 {
		t.Errorf("Month = %v, want 8", snap.TimePeriod.Month)
	}
	if len(snap.UsageItems) != 1 || snap.UsageItems[0].GrossQuantity != 120 {
		t.Errorf("unexpected usage items: %+v", snap.UsageItems)
	}
}

func TestFetchUsage_StatusError(t *testing.T) {
	tests := []struct {
		status   int
		guidance string
	}{
		{http.StatusUnauthorized, "Token rejected"},
		{http.StatusForbidden, "Plan (Read)"},
		{http.StatusNotFound, "Copilot Pro"},
		{http.StatusTooManyRequests, "Rate limited"},
		{http.StatusBadGateway, "having trouble"},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", tt.status)
		}))

		c := NewWithBaseURL("ghp_test", srv.URL)
		_, err := c.FetchUsage(context.Background(), "octocat")
		srv.Close()

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("status %d: error %v is not a StatusError", tt.status, err)
		}
		if se.StatusCode != tt.status {
			t.Errorf("StatusCode = %d, want %d", se.StatusCode, tt.status)
		}
		if !strings.Contains(se.Guidance(), tt.guidance) {
			t.Errorf("Guidance() = %q, want it to mention %q", se.Guidance(), tt.guidance)
		}
		if !strings.Contains(UserMessage(err), tt.guidance) {
			t.Errorf("UserMessage should surface the guidance for %d", tt.status)
		}
	}
}

func TestResolveUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"login": "octocat"}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL("ghp_test", srv.URL)
	login, err := c.ResolveUser(context.Background())
	if err != nil {
		t.Fatalf("ResolveUser: %v", err)
	}
	if login != "octocat" {
		t.Errorf("login = %q, want octocat", login)
	}
}

func TestResolveUser_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewWithBaseURL("ghp_bad", srv.URL)
	_, err := c.ResolveUser(context.Background())
	if !errors.Is(err, ErrUnknownUser) {
		t.Errorf("error %v should wrap ErrUnknownUser", err)
	}
}

func TestUserMessage_Transport(t *testing.T) {
	msg := UserMessage(errors.New("dial tcp: connection refused"))
	if !strings.Contains(msg, "network") {
		t.Errorf("UserMessage = %q, want a network hint", msg)
	}
}
