package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/octocat/hello/issues/12/comments" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req commentRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Comment{ID: 555, Body: req.Body})
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	comment, err := c.CreateComment(context.Background(), "octocat", "hello", 12, "A bounty is open on this issue.")
	if err != nil {
		t.Fatalf("CreateComment() error: %v", err)
	}
	if comment.ID != 555 {
		t.Errorf("comment id = %d, want 555", comment.ID)
	}
	if comment.Body != "A bounty is open on this issue." {
		t.Errorf("body = %q not echoed", comment.Body)
	}
}

func TestUpdateComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/repos/octocat/hello/issues/comments/555" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req commentRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(Comment{ID: 555, Body: req.Body})
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	comment, err := c.UpdateComment(context.Background(), "octocat", "hello", 555, "The bounty was paid.")
	if err != nil {
		t.Fatalf("UpdateComment() error: %v", err)
	}
	if comment.Body != "The bounty was paid." {
		t.Errorf("body = %q not updated", comment.Body)
	}
}

func TestListCommentsPagination(t *testing.T) {
	fullPage := make([]Comment, 100)
	for i := range fullPage {
		fullPage[i] = Comment{ID: int64(i), Body: fmt.Sprintf("comment %d", i)}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			json.NewEncoder(w).Encode(fullPage)
			return
		}
		json.NewEncoder(w).Encode([]Comment{{ID: 100, Body: "last"}})
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	comments, err := c.ListComments(context.Background(), "octocat", "hello", 12)
	if err != nil {
		t.Fatalf("ListComments() error: %v", err)
	}
	if len(comments) != 101 {
		t.Errorf("got %d comments, want 101 across two pages", len(comments))
	}
}

func TestFindCommentByMarker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Comment{
			{ID: 1, Body: "drive-by comment"},
			{ID: 2, Body: "<!-- bountyhub:abc123 -->\n💎 Bounty open"},
		})
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	ctx := context.Background()

	found, err := c.FindCommentByMarker(ctx, "octocat", "hello", 12, "<!-- bountyhub:abc123 -->")
	if err != nil {
		t.Fatalf("FindCommentByMarker() error: %v", err)
	}
	if found == nil || found.ID != 2 {
		t.Errorf("found = %+v, want comment 2", found)
	}

	missing, err := c.FindCommentByMarker(ctx, "octocat", "hello", 12, "<!-- bountyhub:zzz -->")
	if err != nil {
		t.Fatalf("FindCommentByMarker() error: %v", err)
	}
	if missing != nil {
		t.Errorf("found = %+v, want nil for unknown marker", missing)
	}
}

func TestUpsertCommentUpdatesExisting(t *testing.T) {
	var created, updated int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode([]Comment{{ID: 2, Body: "<!-- bountyhub:abc123 -->\nold body"}})
		case r.Method == http.MethodPatch:
			updated++
			var req commentRequest
			json.NewDecoder(r.Body).Decode(&req)
			json.NewEncoder(w).Encode(Comment{ID: 2, Body: req.Body})
		case r.Method == http.MethodPost:
			created++
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(Comment{ID: 3})
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	comment, err := c.UpsertComment(context.Background(), "octocat", "hello", 12,
		"<!-- bountyhub:abc123 -->", "<!-- bountyhub:abc123 -->\nnew body")
	if err != nil {
		t.Fatalf("UpsertComment() error: %v", err)
	}
	if updated != 1 || created != 0 {
		t.Errorf("updated=%d created=%d, want update of existing comment", updated, created)
	}
	if comment.ID != 2 {
		t.Errorf("comment id = %d, want 2", comment.ID)
	}
}

func TestUpsertCommentCreatesWhenMissing(t *testing.T) {
	var created int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]Comment{})
		case http.MethodPost:
			created++
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(Comment{ID: 3})
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	comment, err := c.UpsertComment(context.Background(), "octocat", "hello", 12,
		"<!-- bountyhub:abc123 -->", "body")
	if err != nil {
		t.Fatalf("UpsertComment() error: %v", err)
	}
	if created != 1 {
		t.Errorf("created=%d, want 1", created)
	}
	if comment.ID != 3 {
		t.Errorf("comment id = %d, want 3", comment.ID)
	}
}
