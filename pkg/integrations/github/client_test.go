package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bountyhub/bountyhub/pkg/httputil"
	"github.com/bountyhub/bountyhub/pkg/integrations"
)

// testClient builds a Client pointed at an httptest server with an
// isolated cache directory.
func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	return &Client{
		Client:  integrations.NewClient(cache, headers),
		baseURL: serverURL,
	}
}

func TestFetchUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(User{ID: 7, Login: "octocat", Name: "The Octocat"})
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	user, err := c.FetchUser(context.Background())
	if err != nil {
		t.Fatalf("FetchUser() error: %v", err)
	}
	if user.Login != "octocat" {
		t.Errorf("login = %q, want %q", user.Login, "octocat")
	}
	if user.ID != 7 {
		t.Errorf("id = %d, want 7", user.ID)
	}
}

func TestFetchAdminRepos(t *testing.T) {
	adminRepo := func(id int64, name string) Repo {
		r := Repo{ID: id, Name: name, FullName: "octocat/" + name}
		r.Permissions.Admin = true
		return r
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/repos" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			// One admin repo, one without admin permission.
			member := Repo{ID: 2, Name: "other", FullName: "org/other"}
			member.Permissions.Push = true
			json.NewEncoder(w).Encode([]Repo{adminRepo(1, "hello"), member})
		default:
			json.NewEncoder(w).Encode([]Repo{})
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	repos, err := c.FetchAdminRepos(context.Background())
	if err != nil {
		t.Fatalf("FetchAdminRepos() error: %v", err)
	}
	if len(repos) != 1 {
		t.Fatalf("got %d repos, want 1 (non-admin repos filtered)", len(repos))
	}
	if repos[0].FullName != "octocat/hello" {
		t.Errorf("repo = %q, want %q", repos[0].FullName, "octocat/hello")
	}
}

func TestFetchAdminReposPagination(t *testing.T) {
	fullPage := make([]Repo, 100)
	for i := range fullPage {
		fullPage[i] = Repo{ID: int64(i), Name: fmt.Sprintf("repo%d", i)}
		fullPage[i].Permissions.Admin = true
	}

	var pagesServed []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)
		if page == "1" {
			json.NewEncoder(w).Encode(fullPage)
			return
		}
		json.NewEncoder(w).Encode([]Repo{{ID: 1000, Name: "last"}})
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	repos, err := c.FetchAdminRepos(context.Background())
	if err != nil {
		t.Fatalf("FetchAdminRepos() error: %v", err)
	}
	if len(repos) != 100 {
		t.Errorf("got %d repos, want 100 (page 2 repo lacks admin)", len(repos))
	}
	if len(pagesServed) != 2 {
		t.Errorf("served %d pages, want 2 (short page ends pagination)", len(pagesServed))
	}
}

func TestFetchAdminReposManyPages(t *testing.T) {
	const fullPages = 12

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var page int
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		if page > fullPages {
			json.NewEncoder(w).Encode([]Repo{})
			return
		}
		repos := make([]Repo, 100)
		for i := range repos {
			repos[i] = Repo{ID: int64(page*1000 + i), Name: fmt.Sprintf("repo%d-%d", page, i)}
			repos[i].Permissions.Admin = true
		}
		json.NewEncoder(w).Encode(repos)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	repos, err := c.FetchAdminRepos(context.Background())
	if err != nil {
		t.Fatalf("FetchAdminRepos() error: %v", err)
	}
	if len(repos) != fullPages*100 {
		t.Errorf("got %d repos, want %d (pagination must run until a short page)", len(repos), fullPages*100)
	}
}

func TestGetRepoCaching(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(Repo{ID: 1, FullName: "octocat/hello", DefaultBranch: "main"})
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	ctx := context.Background()

	first, err := c.GetRepo(ctx, "octocat", "hello", false)
	if err != nil {
		t.Fatalf("GetRepo() error: %v", err)
	}
	second, err := c.GetRepo(ctx, "octocat", "hello", false)
	if err != nil {
		t.Fatalf("GetRepo() error: %v", err)
	}

	if calls != 1 {
		t.Errorf("server called %d times, want 1 (second lookup cached)", calls)
	}
	if first.FullName != second.FullName {
		t.Errorf("cached repo differs: %q vs %q", first.FullName, second.FullName)
	}

	if _, err := c.GetRepo(ctx, "octocat", "hello", true); err != nil {
		t.Fatalf("GetRepo(refresh) error: %v", err)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2 after refresh", calls)
	}
}

func TestGetRepoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.GetRepo(context.Background(), "nobody", "missing", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("got error %v, want ErrNotFound", err)
	}
}

func TestGetRepoInvalidRef(t *testing.T) {
	c := testClient(t, "http://unused.invalid")
	if _, err := c.GetRepo(context.Background(), "-bad-", "repo", false); err == nil {
		t.Error("expected validation error for invalid owner")
	}
}

func TestGetIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello/issues/12" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(Issue{Number: 12, Title: "Crash on startup", State: "open"})
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	issue, err := c.GetIssue(context.Background(), "octocat", "hello", 12)
	if err != nil {
		t.Fatalf("GetIssue() error: %v", err)
	}
	if issue.Number != 12 || issue.State != "open" {
		t.Errorf("issue = %+v, want number 12 state open", issue)
	}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("test-token", time.Hour)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if c.Client == nil {
		t.Error("expected embedded client to be initialized")
	}
	if c.baseURL != "https://api.github.com" {
		t.Errorf("baseURL = %q, want api.github.com", c.baseURL)
	}
}
