package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "podhoard-test/1.0" {
			t.Errorf("Unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("<rss/>"))
	}))
	defer server.Close()

	client := NewClient("podhoard-test/1.0", 5*time.Second)
	result, err := client.Fetch(context.Background(), server.URL)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got: %d", result.StatusCode)
	}
	if string(result.Body) != "<rss/>" {
		t.Errorf("Unexpected body: %s", result.Body)
	}
	if result.FinalURL != server.URL {
		t.Errorf("Expected final URL %s, got: %s", server.URL, result.FinalURL)
	}
}

func TestClientFetchReportsFinalURLAfterRedirect(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<rss/>"))
	})

	client := NewClient("podhoard-test/1.0", 5*time.Second)
	result, err := client.Fetch(context.Background(), server.URL+"/old")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.FinalURL != server.URL+"/new" {
		t.Errorf("Expected final URL %s/new, got: %s", server.URL, result.FinalURL)
	}
}

func TestClientFetchPassesThroughErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient("podhoard-test/1.0", 5*time.Second)
	result, err := client.Fetch(context.Background(), server.URL)

	if err != nil {
		t.Fatalf("Expected no transport error, got: %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got: %d", result.StatusCode)
	}
}

func TestClientFetchTransportError(t *testing.T) {
	client := NewClient("podhoard-test/1.0", time.Second)

	if _, err := client.Fetch(context.Background(), "http://127.0.0.1:0/"); err == nil {
		t.Fatal("Expected transport error")
	}
}

func TestStub(t *testing.T) {
	stub := NewStub()
	stub.Respond("https://example.com/feed", &Result{StatusCode: 200, Body: []byte("<rss/>")})
	stub.Fail("https://broken.example.com/feed", errors.New("connection refused"))

	result, err := stub.Fetch(context.Background(), "https://example.com/feed")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.FinalURL != "https://example.com/feed" {
		t.Errorf("Expected final URL to default to requested URL, got: %s", result.FinalURL)
	}

	if _, err := stub.Fetch(context.Background(), "https://broken.example.com/feed"); err == nil {
		t.Fatal("Expected registered error")
	}

	if _, err := stub.Fetch(context.Background(), "https://unknown.example.com/"); err == nil {
		t.Fatal("Expected error for unregistered URL")
	}

	if calls := stub.Calls(); len(calls) != 3 {
		t.Errorf("Expected 3 recorded calls, got: %d", len(calls))
	}
}
