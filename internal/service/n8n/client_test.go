package n8n

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCandidateURLsTestVariant(t *testing.T) {
	c := New("http://host/webhook-test/abc", time.Second, nil, nil)
	urls := c.CandidateURLs()
	if len(urls) != 2 {
		t.Fatalf("expected 2 candidates, got %v", urls)
	}
	if urls[0] != "http://host/webhook-test/abc" || urls[1] != "http://host/webhook/abc" {
		t.Fatalf("unexpected candidates %v", urls)
	}
}

func TestCandidateURLsProductionVariant(t *testing.T) {
	c := New("http://host/webhook/abc", time.Second, nil, nil)
	urls := c.CandidateURLs()
	if len(urls) != 2 || urls[1] != "http://host/webhook-test/abc" {
		t.Fatalf("unexpected candidates %v", urls)
	}
}

func TestCandidateURLsNoVariant(t *testing.T) {
	c := New("http://host/hooks/abc", time.Second, nil, nil)
	urls := c.CandidateURLs()
	if len(urls) != 1 {
		t.Fatalf("expected 1 candidate, got %v", urls)
	}
}

func TestFetchAnalysisPayloadSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["ticker"] != "AAPL" {
			t.Errorf("unexpected ticker %q", body["ticker"])
		}
		if got := r.Header.Get("Accept"); !strings.Contains(got, "application/json") {
			t.Errorf("unexpected accept header %q", got)
		}
		w.Write([]byte(`{"ticker":"AAPL"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/webhook/abc", time.Second, nil, nil)
	body, err := c.FetchAnalysisPayload(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if body != `{"ticker":"AAPL"}` {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFetchAnalysisPayloadFallsBackToAlternate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/webhook-test/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok payload"))
	}))
	defer srv.Close()

	c := New(srv.URL+"/webhook-test/abc", time.Second, nil, nil)
	body, err := c.FetchAnalysisPayload(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if body != "ok payload" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFetchAnalysisPayloadEmptyBodyIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  "))
	}))
	defer srv.Close()

	c := New(srv.URL+"/hooks/abc", time.Second, nil, nil)
	if _, err := c.FetchAnalysisPayload(context.Background(), "AAPL"); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestFetchAnalysisPayloadAggregatesAllFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL+"/webhook-test/abc", time.Second, nil, nil)
	_, err := c.FetchAnalysisPayload(context.Background(), "AAPL")
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "all webhook attempts failed") {
		t.Fatalf("unexpected error message %q", msg)
	}
	for _, u := range c.CandidateURLs() {
		if !strings.Contains(msg, u) {
			t.Fatalf("error %q missing url %s", msg, u)
		}
	}
	if !strings.Contains(msg, "500") {
		t.Fatalf("error %q missing status reason", msg)
	}
}
