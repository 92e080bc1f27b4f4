package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch_MapsResultsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("type"); got != "video" {
			t.Errorf("type = %q, want video", got)
		}
		w.Write([]byte(`{"items": [
			{"id": {"videoId": "aaa"}, "snippet": {"title": "First", "channelTitle": "Ch1"}},
			{"id": {"videoId": "bbb"}, "snippet": {"title": "Second", "channelTitle": "Ch2"}},
			{"id": {"videoId": "ccc"}, "snippet": {"title": "Third", "channelTitle": "Ch3"}}
		]}`))
	}))
	defer srv.Close()

	c := New("key", srv.URL)
	got, err := c.Search(context.Background(), "test", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2 (limit)", len(got))
	}
	if got[0].VideoID != "aaa" || got[1].VideoID != "bbb" {
		t.Errorf("order not preserved: %+v", got)
	}
	if got[0].Title != "First" || got[0].SourceLabel != "Ch1" {
		t.Errorf("first candidate = %+v", got[0])
	}
}

func TestSearch_ZeroItemsIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	c := New("key", srv.URL)
	got, err := c.Search(context.Background(), "nothing here", 8)
	if err != nil {
		t.Fatalf("Search returned error for empty result set: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
	if IsUnavailable(err) {
		t.Error("empty result set must not be an UnavailableError")
	}
}

func TestSearch_NonSuccessStatusIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	c := New("key", srv.URL)
	_, err := c.Search(context.Background(), "test", 8)
	if err == nil {
		t.Fatal("Search returned nil error for 403")
	}
	if !IsUnavailable(err) {
		t.Fatalf("error %v is not an UnavailableError", err)
	}
	var ue *UnavailableError
	if !errors.As(err, &ue) || ue.Status != http.StatusForbidden {
		t.Errorf("UnavailableError status = %+v, want 403", ue)
	}
}

func TestVideoTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "abc123" {
			t.Errorf("id = %q, want abc123", got)
		}
		w.Write([]byte(`{"items": [{"snippet": {"title": "Real Title"}}]}`))
	}))
	defer srv.Close()

	c := New("key", srv.URL)
	title, err := c.VideoTitle(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("VideoTitle: %v", err)
	}
	if title != "Real Title" {
		t.Errorf("title = %q, want Real Title", title)
	}
}

func TestVideoTitle_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	c := New("key", srv.URL)
	if _, err := c.VideoTitle(context.Background(), "missing"); err == nil {
		t.Error("VideoTitle returned nil error for unknown video")
	}
}
