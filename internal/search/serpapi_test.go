package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperifyio/goleads/internal/failure"
)

func TestSerpAPI_Search_OrganicResultsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "k" || q.Get("engine") != "google" || q.Get("num") != "2" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic_results":[
			{"position":1,"title":"First","link":"https://one.example/a","snippet":"s1"},
			{"position":2,"title":"Second","link":"https://two.example/","snippet":"s2"},
			{"position":3,"title":"Third","link":"https://three.example/","snippet":"s3"}
		]}`))
	}))
	defer srv.Close()

	s := &SerpAPI{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := s.Search(context.Background(), "top cybersecurity companies", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 || got[0].URL != "https://one.example/a" || got[1].Title != "Second" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestSerpAPI_Search_ErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Invalid API key."}`))
	}))
	defer srv.Close()

	s := &SerpAPI{APIKey: "bad", BaseURL: srv.URL, HTTPClient: srv.Client()}
	if _, err := s.Search(context.Background(), "q", 3); err == nil || !strings.Contains(err.Error(), "Invalid API key") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestSerpAPI_Search_KeyNotLeakedInError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := &SerpAPI{APIKey: "secret-key", BaseURL: srv.URL, HTTPClient: srv.Client()}
	_, err := s.Search(context.Background(), "q", 3)
	var ne *failure.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("api key leaked: %v", err)
	}
}

func TestSerpAPI_Search_MissingKey(t *testing.T) {
	s := &SerpAPI{}
	if _, err := s.Search(context.Background(), "q", 3); err == nil {
		t.Fatalf("expected error without key")
	}
}
