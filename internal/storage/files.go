package storage

import (
	"mime"
	"net/http"
	"os"
	"path"
)

// FileServer serves stored uploads without exposing directory listings.
// Stored names keep the client's extension, so every response is an
// attachment with sniffing disabled and never renders on the API origin.
func (u *Uploads) FileServer() http.Handler {
	files := http.FileServer(noListingFS{http.Dir(u.dir)})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if name := path.Base(r.URL.Path); name != "/" && name != "." {
			w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		}
		files.ServeHTTP(w, r)
	})
}

type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
