package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/mahmoudBH/gestion-etudiant/internal/storage"
)

var errUploadTooLarge = errors.New("upload_too_large")

// parseMultipart caps the body at MaxUploadBytes before parsing it.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errUploadTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return storage.ErrNoFile
		}
		return err
	}
	return nil
}

func (s *Server) rejectUpload(w http.ResponseWriter, r *http.Request, field string, err error) {
	switch {
	case errors.Is(err, storage.ErrNoFile):
		s.metrics.upload(field, "missing")
		writeFailure(w, http.StatusBadRequest, "No file uploaded.")
	case errors.Is(err, errUploadTooLarge):
		s.metrics.upload(field, "too_large")
		writeFailure(w, http.StatusBadRequest, "Uploaded file is too large.")
	default:
		s.metrics.upload(field, "error")
		storeFailure(w, r, http.StatusBadRequest, "Invalid upload.", err)
	}
}

func (s *Server) discardUpload(name string) {
	if err := s.uploads.Remove(name); err != nil {
		log.Printf("discard upload %s: %v", name, err)
	}
}
