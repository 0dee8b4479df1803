package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("Expected default header to be sent")
		}
		if r.Header.Get("Accept") != "*/*" {
			t.Errorf("Expected request header override, got %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"symbol":"AAPL"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHeader("X-Test", "yes"), WithTimeout(time.Second))
	resp, err := c.GET(context.Background(), "/quote", FeedHeaders())
	if err != nil {
		t.Fatalf("GET: %v", err)
	}

	var out struct {
		Symbol string `json:"symbol"`
	}
	if err := resp.ParseJSON(&out); err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if out.Symbol != "AAPL" {
		t.Errorf("Expected AAPL, got %q", out.Symbol)
	}
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient().GET(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Expected error for 404")
	}
	if !IsStatus(err, http.StatusNotFound) {
		t.Errorf("Expected 404 StatusError, got %v", err)
	}
}

func TestClientPOSTSetsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := NewClient().POST(context.Background(), srv.URL, map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.String() != "ok" {
		t.Errorf("Expected ok, got %q", resp.String())
	}
}
