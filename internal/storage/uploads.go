package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the path under which stored files are served.
const URLPrefix = "uploads"

var ErrNoFile = errors.New("no_file")

// Uploads owns the directory holding uploaded files. Callers persist the
// returned names; Uploads never touches the database.
type Uploads struct {
	dir     string
	newName func(ext string) string
}

func NewUploads(dir string) *Uploads {
	return &Uploads{dir: dir, newName: randomName}
}

// WithNameFunc replaces the storage name generator.
func (u *Uploads) WithNameFunc(fn func(ext string) string) *Uploads {
	clone := *u
	clone.newName = fn
	return &clone
}

func (u *Uploads) Dir() string {
	return u.dir
}

func (u *Uploads) Ensure() error {
	return os.MkdirAll(u.dir, 0o755)
}

// SaveFormFile stores the multipart file sent under field. It returns
// ErrNoFile when the request carries no such part.
func (u *Uploads) SaveFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", ErrNoFile
		}
		return "", err
	}
	defer file.Close()
	return u.Save(file, header.Filename)
}

func (u *Uploads) Save(src io.Reader, originalName string) (string, error) {
	name := u.newName(filepath.Ext(filepath.Base(originalName)))
	path := filepath.Join(u.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		u.discard(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		u.discard(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return name, nil
}

func (u *Uploads) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid upload name %q", name)
	}
	return os.Remove(filepath.Join(u.dir, name))
}

// PublicPath is the relative path recorded on rows that reference name.
func PublicPath(name string) string {
	return URLPrefix + "/" + name
}

// FileURL is the absolute download URL clients use for name.
func FileURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + "/" + URLPrefix + "/" + name
}

func (u *Uploads) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("remove partial upload %s: %v", path, err)
	}
}

func randomName(ext string) string {
	return uuid.NewString() + ext
}
