package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gitpen-go/internal/database"
	"gitpen-go/internal/gitpen"
	"gitpen-go/internal/remote"
	"gitpen-go/internal/testutil"
)

type serverFixture struct {
	srv     *Server
	handler http.Handler
	remote  *remote.MemoryStore
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("creating token issuer: %v", err)
	}

	rem := remote.NewMemoryStore()
	clock := testutil.FixedClock()
	svc := gitpen.NewService(nil, rem, nil, nil, gitpen.NewNopLogger(), clock, testutil.NewSequentialIDGenerator("commit"))

	srv := New(db, svc, tokens, gitpen.NewNopLogger(), clock)
	return &serverFixture{srv: srv, handler: srv.Handler(), remote: rem}
}

func (f *serverFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func (f *serverFixture) signup(t *testing.T, username, email string) authResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[authResponse](t, rec)
}

func (f *serverFixture) createRepo(t *testing.T, token, name string) database.Repository {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/repo", token, map[string]any{
		"name":        name,
		"description": "a repo",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create repo status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[database.Repository](t, rec)
}

func TestServer_Healthz(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestServer_SignupAndLogin(t *testing.T) {
	t.Run("signup issues a usable token", func(t *testing.T) {
		f := newServerFixture(t)

		auth := f.signup(t, "alice", "alice@example.com")
		if auth.Token == "" || auth.UserID == "" {
			t.Fatalf("auth = %+v, want token and user ID", auth)
		}

		// Token must pass the auth middleware.
		rec := f.do(t, http.MethodPost, "/repo", auth.Token, map[string]string{"name": "proj"})
		if rec.Code != http.StatusCreated {
			t.Errorf("authenticated request status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("signup rejects duplicate emails", func(t *testing.T) {
		f := newServerFixture(t)
		f.signup(t, "alice", "alice@example.com")

		rec := f.do(t, http.MethodPost, "/signup", "", map[string]string{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "other",
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("signup rejects incomplete requests", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodPost, "/signup", "", map[string]string{"email": "x@y.z"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("login with correct credentials", func(t *testing.T) {
		f := newServerFixture(t)
		f.signup(t, "alice", "alice@example.com")

		rec := f.do(t, http.MethodPost, "/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "password123",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		auth := decodeBody[authResponse](t, rec)
		if auth.Token == "" {
			t.Error("login returned empty token")
		}
	})

	t.Run("login rejects a wrong password", func(t *testing.T) {
		f := newServerFixture(t)
		f.signup(t, "alice", "alice@example.com")

		rec := f.do(t, http.MethodPost, "/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("login rejects an unknown email", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodPost, "/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "pw",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestServer_Auth(t *testing.T) {
	t.Run("mutating repo routes require a token", func(t *testing.T) {
		f := newServerFixture(t)

		for _, req := range []struct{ method, path string }{
			{http.MethodPost, "/repo"},
			{http.MethodPut, "/repo/x"},
			{http.MethodPatch, "/repo/x/toggle"},
			{http.MethodDelete, "/repo/x"},
			{http.MethodPost, "/issue/x"},
		} {
			rec := f.do(t, req.method, req.path, "", map[string]string{"name": "n", "title": "t"})
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("%s %s status = %d, want 401", req.method, req.path, rec.Code)
			}
		}
	})

	t.Run("rejects forged tokens", func(t *testing.T) {
		f := newServerFixture(t)
		foreign, _ := NewTokenIssuer("other-secret")
		token, _ := foreign.Issue("u1", testutil.FixedClock().Now())

		rec := f.do(t, http.MethodPost, "/repo", token, map[string]string{"name": "n"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestServer_Repositories(t *testing.T) {
	t.Run("create and fetch", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")

		repo := f.createRepo(t, auth.Token, "proj")
		if repo.Name != "proj" || repo.OwnerID != auth.UserID {
			t.Errorf("repo = %+v", repo)
		}
		if !repo.Visibility {
			t.Error("default visibility should be public")
		}

		rec := f.do(t, http.MethodGet, "/repo/"+repo.ID, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get status = %d", rec.Code)
		}
		got := decodeBody[database.Repository](t, rec)
		if got.ID != repo.ID {
			t.Errorf("got = %+v, want %+v", got, repo)
		}
	})

	t.Run("fetch by name and by owner", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")
		repo := f.createRepo(t, auth.Token, "proj")

		rec := f.do(t, http.MethodGet, "/repo/name/proj", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get by name status = %d", rec.Code)
		}
		if got := decodeBody[database.Repository](t, rec); got.ID != repo.ID {
			t.Errorf("by name = %+v", got)
		}

		rec = f.do(t, http.MethodGet, "/repo/user/"+auth.UserID, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list by owner status = %d", rec.Code)
		}
		repos := decodeBody[[]database.Repository](t, rec)
		if len(repos) != 1 || repos[0].ID != repo.ID {
			t.Errorf("by owner = %+v", repos)
		}
	})

	t.Run("list all", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")
		f.createRepo(t, auth.Token, "one")
		f.createRepo(t, auth.Token, "two")

		rec := f.do(t, http.MethodGet, "/repo/all", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		repos := decodeBody[[]database.Repository](t, rec)
		if len(repos) != 2 {
			t.Errorf("repos = %+v, want 2", repos)
		}
	})

	t.Run("update", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")
		repo := f.createRepo(t, auth.Token, "proj")

		rec := f.do(t, http.MethodPut, "/repo/"+repo.ID, auth.Token, map[string]string{
			"name":        "renamed",
			"description": "new description",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		got := decodeBody[database.Repository](t, rec)
		if got.Name != "renamed" || got.Description != "new description" {
			t.Errorf("updated = %+v", got)
		}
	})

	t.Run("toggle flips visibility", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")
		repo := f.createRepo(t, auth.Token, "proj")

		rec := f.do(t, http.MethodPatch, "/repo/"+repo.ID+"/toggle", auth.Token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := decodeBody[database.Repository](t, rec); got.Visibility {
			t.Error("visibility should be private after first toggle")
		}

		rec = f.do(t, http.MethodPatch, "/repo/"+repo.ID+"/toggle", auth.Token, nil)
		if got := decodeBody[database.Repository](t, rec); !got.Visibility {
			t.Error("visibility should be public after second toggle")
		}
	})

	t.Run("delete then fetch is a 404", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")
		repo := f.createRepo(t, auth.Token, "proj")

		rec := f.do(t, http.MethodDelete, "/repo/"+repo.ID, auth.Token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete status = %d", rec.Code)
		}

		rec = f.do(t, http.MethodGet, "/repo/"+repo.ID, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("get after delete status = %d, want 404", rec.Code)
		}
	})

	t.Run("unknown IDs are 404s", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")

		for _, req := range []struct{ method, path string }{
			{http.MethodGet, "/repo/nope"},
			{http.MethodGet, "/repo/name/nope"},
			{http.MethodPatch, "/repo/nope/toggle"},
			{http.MethodDelete, "/repo/nope"},
		} {
			rec := f.do(t, req.method, req.path, auth.Token, nil)
			if rec.Code != http.StatusNotFound {
				t.Errorf("%s %s status = %d, want 404", req.method, req.path, rec.Code)
			}
		}
	})
}

func TestServer_Issues(t *testing.T) {
	t.Run("full lifecycle", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")
		repo := f.createRepo(t, auth.Token, "proj")

		rec := f.do(t, http.MethodPost, "/issue/"+repo.ID, auth.Token, map[string]string{
			"title":       "broken build",
			"description": "fails on checkout",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
		}
		issue := decodeBody[database.Issue](t, rec)
		if issue.Title != "broken build" || issue.RepoID != repo.ID || issue.Status != "open" {
			t.Fatalf("issue = %+v", issue)
		}

		rec = f.do(t, http.MethodGet, "/issue/all/"+repo.ID, "", nil)
		if issues := decodeBody[[]database.Issue](t, rec); len(issues) != 1 {
			t.Errorf("issues = %+v, want 1", issues)
		}

		rec = f.do(t, http.MethodGet, "/issue/"+issue.ID, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get status = %d", rec.Code)
		}

		rec = f.do(t, http.MethodPut, "/issue/"+issue.ID, auth.Token, map[string]string{
			"title":  "broken build",
			"status": "closed",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
		}
		if got := decodeBody[database.Issue](t, rec); got.Status != "closed" {
			t.Errorf("status = %q, want closed", got.Status)
		}

		rec = f.do(t, http.MethodDelete, "/issue/"+issue.ID, auth.Token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete status = %d", rec.Code)
		}
		rec = f.do(t, http.MethodGet, "/issue/"+issue.ID, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("get after delete status = %d, want 404", rec.Code)
		}
	})

	t.Run("creating an issue on a missing repo is a 404", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")

		rec := f.do(t, http.MethodPost, "/issue/nope", auth.Token, map[string]string{"title": "x"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestServer_Listings(t *testing.T) {
	seed := func(t *testing.T, f *serverFixture) {
		t.Helper()
		ctx := context.Background()
		puts := map[string]string{
			"r1/commits/c1/a.txt":              "alpha",
			"r1/commits/c1/" + gitpen.MetadataFile: `{"message":"first","date":"2024-06-01T10:00:00+05:30"}`,
			"r1/commits/c2/" + gitpen.MetadataFile: `{"message":"second","date":"2024-06-01T12:00:00+05:30"}`,
		}
		for key, content := range puts {
			if err := f.remote.PutObject(ctx, key, strings.NewReader(content)); err != nil {
				t.Fatalf("seeding %s: %v", key, err)
			}
		}
	}

	t.Run("files includes signed URLs and folder structure", func(t *testing.T) {
		f := newServerFixture(t)
		seed(t, f)

		rec := f.do(t, http.MethodGet, "/repo/r1/files", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}

		body := decodeBody[struct {
			Files []gitpen.FileEntry `json:"files"`
			Folders []gitpen.FolderEntry `json:"folderStructure"`
		}](t, rec)

		if len(body.Files) != 1 || body.Files[0].Name != "a.txt" {
			t.Errorf("files = %+v", body.Files)
		}
		if body.Files[0].URL == "" {
			t.Error("file entry missing signed URL")
		}
		if len(body.Folders) == 0 {
			t.Error("missing folder structure")
		}
	})

	t.Run("commits excludes content files", func(t *testing.T) {
		f := newServerFixture(t)
		seed(t, f)

		rec := f.do(t, http.MethodGet, "/repo/r1/commits", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}

		commits := decodeBody[[]gitpen.CommitRecord](t, rec)
		if len(commits) != 2 {
			t.Fatalf("commits = %+v, want 2", commits)
		}
		if commits[0].Message != "first" || commits[1].Message != "second" {
			t.Errorf("order = %+v", commits)
		}
	})

	t.Run("commit counts bucket by day", func(t *testing.T) {
		f := newServerFixture(t)
		seed(t, f)

		rec := f.do(t, http.MethodGet, "/repo/r1/commits/count", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}

		counts := decodeBody[[]gitpen.DateCount](t, rec)
		if len(counts) != 1 {
			t.Fatalf("counts = %+v, want one bucket", counts)
		}
		if counts[0] != (gitpen.DateCount{Date: "2024-06-01", Count: 2}) {
			t.Errorf("counts[0] = %+v", counts[0])
		}
	})

	t.Run("user commit counts merge across owned repositories", func(t *testing.T) {
		f := newServerFixture(t)
		auth := f.signup(t, "alice", "alice@example.com")
		repoA := f.createRepo(t, auth.Token, "one")
		repoB := f.createRepo(t, auth.Token, "two")

		ctx := context.Background()
		puts := map[string]string{
			repoA.ID + "/commits/c1/" + gitpen.MetadataFile: `{"message":"a","date":"2024-06-01T10:00:00+05:30"}`,
			repoB.ID + "/commits/c2/" + gitpen.MetadataFile: `{"message":"b","date":"2024-06-01T18:00:00+05:30"}`,
			repoB.ID + "/commits/c3/" + gitpen.MetadataFile: `{"message":"c","date":"2024-06-02T09:00:00+05:30"}`,
		}
		for key, content := range puts {
			if err := f.remote.PutObject(ctx, key, strings.NewReader(content)); err != nil {
				t.Fatalf("seeding %s: %v", key, err)
			}
		}

		rec := f.do(t, http.MethodGet, "/user/"+auth.UserID+"/commits/count", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}

		counts := decodeBody[[]gitpen.DateCount](t, rec)
		want := []gitpen.DateCount{
			{Date: "2024-06-01", Count: 2},
			{Date: "2024-06-02", Count: 1},
		}
		if len(counts) != len(want) {
			t.Fatalf("counts = %+v, want %+v", counts, want)
		}
		for i := range want {
			if counts[i] != want[i] {
				t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
			}
		}
	})

	t.Run("user with no repositories counts cleanly", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodGet, "/user/nobody/commits/count", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if counts := decodeBody[[]gitpen.DateCount](t, rec); len(counts) != 0 {
			t.Errorf("counts = %+v, want empty", counts)
		}
	})

	t.Run("empty repository lists cleanly", func(t *testing.T) {
		f := newServerFixture(t)

		for _, path := range []string{"/repo/r9/files", "/repo/r9/commits", "/repo/r9/commits/count"} {
			rec := f.do(t, http.MethodGet, path, "", nil)
			if rec.Code != http.StatusOK {
				t.Errorf("%s status = %d, want 200", path, rec.Code)
			}
		}
	})
}
