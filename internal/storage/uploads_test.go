package storage

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveKeepsExtensionAndContent(t *testing.T) {
	uploads := NewUploads(t.TempDir())
	name, err := uploads.Save(strings.NewReader("%PDF-1.4"), "chapitre1.pdf")
	if err != nil {
		t.Fatalf("save error: %v", err)
	}
	if filepath.Ext(name) != ".pdf" {
		t.Fatalf("expected .pdf extension, got %s", name)
	}
	data, err := os.ReadFile(filepath.Join(uploads.Dir(), name))
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestSaveNamesAreUnique(t *testing.T) {
	uploads := NewUploads(t.TempDir())
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		name, err := uploads.Save(strings.NewReader("x"), "same.png")
		if err != nil {
			t.Fatalf("save error: %v", err)
		}
		if seen[name] {
			t.Fatalf("duplicate storage name %s", name)
		}
		seen[name] = true
	}
}

func TestSaveRefusesToOverwrite(t *testing.T) {
	uploads := NewUploads(t.TempDir()).WithNameFunc(func(ext string) string { return "fixed" + ext })
	if _, err := uploads.Save(strings.NewReader("first"), "a.txt"); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if _, err := uploads.Save(strings.NewReader("second"), "b.txt"); err == nil {
		t.Fatalf("expected collision to fail")
	}
	data, _ := os.ReadFile(filepath.Join(uploads.Dir(), "fixed.txt"))
	if string(data) != "first" {
		t.Fatalf("expected original content kept, got %q", data)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestSaveRemovesPartialFile(t *testing.T) {
	uploads := NewUploads(t.TempDir()).WithNameFunc(func(ext string) string { return "partial" + ext })
	if _, err := uploads.Save(io.MultiReader(strings.NewReader("half"), failingReader{}), "a.pdf"); err == nil {
		t.Fatalf("expected write error")
	}
	if _, err := os.Stat(filepath.Join(uploads.Dir(), "partial.pdf")); !os.IsNotExist(err) {
		t.Fatalf("expected partial file removed, got %v", err)
	}
}

func TestSaveFormFileMissingPart(t *testing.T) {
	uploads := NewUploads(t.TempDir())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("matiere", "Math")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/cours", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if _, err := uploads.SaveFormFile(req, "pdfFile"); !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/cours", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if _, err := uploads.SaveFormFile(req, "pdfFile"); !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile for non-multipart body, got %v", err)
	}
}

func TestFileURL(t *testing.T) {
	if got := FileURL("http://192.168.43.100:3000/", "abc.pdf"); got != "http://192.168.43.100:3000/uploads/abc.pdf" {
		t.Fatalf("unexpected url %s", got)
	}
	if got := PublicPath("abc.png"); got != "uploads/abc.png" {
		t.Fatalf("unexpected path %s", got)
	}
}

func TestRemoveRejectsTraversal(t *testing.T) {
	uploads := NewUploads(t.TempDir())
	if err := uploads.Remove("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be refused")
	}
}

func TestFileServerHidesDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	handler := http.StripPrefix("/uploads/", NewUploads(dir).FileServer())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/a.pdf", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "pdf" {
		t.Fatalf("expected file served, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected directory listing refused, got %d", rec.Code)
	}
}

func TestFileServerForcesDownload(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.html"), []byte("<script>alert(1)</script>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	handler := http.StripPrefix("/uploads/", NewUploads(dir).FileServer())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/x.html", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=x.html" {
		t.Fatalf("expected attachment disposition, got %q", got)
	}
}
