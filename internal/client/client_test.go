package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const testToken = "token-123"

type fakeAPI struct {
	mu      sync.Mutex
	courses []Course
	status  int
}

func (f *fakeAPI) set(status int, courses []Course) {
	f.mu.Lock()
	f.status = status
	f.courses = courses
	f.mu.Unlock()
}

func newFakeAPI(t *testing.T) (*httptest.Server, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Invalid email or password."})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"token":   testToken,
			"user":    map[string]interface{}{"id": 7, "firstname": "Amina", "lastname": "B", "email": body["email"]},
		})
	})
	mux.HandleFunc("/api/mescours", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Invalid token."})
			return
		}
		api.mu.Lock()
		status, courses := api.status, api.courses
		api.mu.Unlock()
		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(courses)
		}
	})
	mux.HandleFunc("/uploads/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/chapitre1.pdf" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, api
}

func TestTokenStore(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "nested", "token"))
	if _, err := store.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if err := store.Save("abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if token, err := store.Load(); err != nil || token != "abc" {
		t.Fatalf("expected saved token, got %q %v", token, err)
	}
}

func TestLoginStoresToken(t *testing.T) {
	server, _ := newFakeAPI(t)
	tokens := NewTokenStore(filepath.Join(t.TempDir(), "token"))
	c := New(server.URL+"/", tokens)

	_, err := c.Login(context.Background(), "amina@example.com", "wrong")
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Status != http.StatusUnauthorized || serr.Message != "Invalid email or password." {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if _, err := tokens.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("failed login must not store a token")
	}

	user, err := c.Login(context.Background(), "amina@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != 7 || user.FirstName != "Amina" {
		t.Fatalf("unexpected user %+v", user)
	}
	if token, _ := tokens.Load(); token != testToken {
		t.Fatalf("expected stored token, got %q", token)
	}
}

func TestListCoursesNeedsToken(t *testing.T) {
	server, _ := newFakeAPI(t)
	c := New(server.URL, NewTokenStore(filepath.Join(t.TempDir(), "token")))
	if _, err := c.ListCourses(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestRefreshReplacesList(t *testing.T) {
	server, api := newFakeAPI(t)
	tokens := NewTokenStore(filepath.Join(t.TempDir(), "token"))
	if err := tokens.Save(testToken); err != nil {
		t.Fatalf("save: %v", err)
	}
	var alerts []string
	screen := NewScreen(New(server.URL, tokens), nil, t.TempDir(), func(title, msg string) {
		alerts = append(alerts, title+": "+msg)
	})

	api.set(http.StatusOK, []Course{{ID: 1, Matiere: "Math"}, {ID: 2, Matiere: "Physique"}})
	if err := screen.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := screen.Courses(); len(got) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(got))
	}

	api.set(http.StatusOK, []Course{{ID: 3, Matiere: "Chimie"}})
	if err := screen.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got := screen.Courses()
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected list replaced, got %+v", got)
	}

	api.set(http.StatusInternalServerError, nil)
	err := screen.Refresh(context.Background())
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Status != http.StatusInternalServerError {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if got := screen.Courses(); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("failed refresh must keep the list, got %+v", got)
	}
	if screen.Refreshing() {
		t.Fatalf("refresh indicator left on")
	}
	if len(alerts) != 1 || alerts[0] != "Error: Failed to load courses." {
		t.Fatalf("unexpected alerts %v", alerts)
	}
}

type fakeSharer struct {
	available bool
	shared    []string
}

func (f *fakeSharer) Available() bool { return f.available }

func (f *fakeSharer) Share(_ context.Context, path string) error {
	f.shared = append(f.shared, path)
	return nil
}

func TestDownloadAndShare(t *testing.T) {
	server, _ := newFakeAPI(t)
	c := New(server.URL, NewTokenStore(filepath.Join(t.TempDir(), "token")))
	course := Course{ID: 1, FileURL: server.URL + "/uploads/chapitre1.pdf"}

	var alerts []string
	alert := func(title, msg string) { alerts = append(alerts, title) }

	dir := t.TempDir()
	sharer := &fakeSharer{available: true}
	local, err := NewScreen(c, sharer, dir, alert).Download(context.Background(), course)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if local != filepath.Join(dir, "chapitre1.pdf") {
		t.Fatalf("unexpected local path %s", local)
	}
	if data, _ := os.ReadFile(local); string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", data)
	}
	if len(sharer.shared) != 1 || sharer.shared[0] != local || len(alerts) != 0 {
		t.Fatalf("expected one share and no alert, got %v %v", sharer.shared, alerts)
	}

	// Without a share surface the download completes and says so.
	if _, err := NewScreen(c, &fakeSharer{}, t.TempDir(), alert).Download(context.Background(), course); err != nil {
		t.Fatalf("download: %v", err)
	}
	if len(alerts) != 1 || alerts[0] != "Download Complete" {
		t.Fatalf("expected completion alert, got %v", alerts)
	}

	missing := Course{ID: 2, FileURL: server.URL + "/uploads/absent.pdf"}
	emptyDir := t.TempDir()
	if _, err := NewScreen(c, sharer, emptyDir, alert).Download(context.Background(), missing); err == nil {
		t.Fatalf("expected download error")
	}
	if alerts[len(alerts)-1] != "Error" {
		t.Fatalf("expected error alert, got %v", alerts)
	}
	if entries, _ := os.ReadDir(emptyDir); len(entries) != 0 {
		t.Fatalf("failed download left %d files", len(entries))
	}
}

func TestFileNameFromURL(t *testing.T) {
	name, err := fileNameFromURL("http://192.168.43.100:3000/uploads/abc.pdf?x=1")
	if err != nil || name != "abc.pdf" {
		t.Fatalf("unexpected name %q %v", name, err)
	}
	if _, err := fileNameFromURL("http://host/"); err == nil {
		t.Fatalf("expected error for url without file name")
	}
}
