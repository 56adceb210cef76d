package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/mahmoudBH/gestion-etudiant/internal/auth"
	"github.com/mahmoudBH/gestion-etudiant/internal/model"
	"github.com/mahmoudBH/gestion-etudiant/internal/repository"
	"github.com/mahmoudBH/gestion-etudiant/internal/storage"
)

// Course routes answer with a bare {message} body, which the mobile app
// reads as is.
type messageResponse struct {
	Message string `json:"message"`
}

type createCourseRequest struct {
	Matiere string `json:"matiere" validate:"required"`
	Classe  string `json:"classe" validate:"required"`
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	const field = "pdfFile"

	if err := s.parseMultipart(w, r); err != nil {
		switch {
		case errors.Is(err, storage.ErrNoFile):
			s.metrics.upload(field, "missing")
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "PDF file is required."})
		case errors.Is(err, errUploadTooLarge):
			s.metrics.upload(field, "too_large")
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Uploaded file is too large."})
		default:
			s.metrics.upload(field, "error")
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid upload."})
		}
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		s.metrics.upload(field, "missing")
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "PDF file is required."})
		return
	}

	req := createCourseRequest{
		Matiere: r.FormValue("matiere"),
		Classe:  r.FormValue("classe"),
	}
	if msg, missing := s.missingFields(req); missing {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: msg})
		return
	}

	name, err := s.uploads.SaveFormFile(r, field)
	if err != nil {
		s.metrics.upload(field, "error")
		logFailure(r, err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Error adding course."})
		return
	}

	_, err = s.store.CreateCourse(r.Context(), model.Course{
		Matiere: req.Matiere,
		Classe:  req.Classe,
		PDFPath: name,
	})
	if err != nil {
		s.discardUpload(name)
		s.metrics.upload(field, "store_error")
		logFailure(r, err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Error adding course."})
		return
	}

	s.metrics.upload(field, "ok")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Course added successfully."})
}

type courseView struct {
	ID        int64     `json:"id"`
	Matiere   string    `json:"matiere"`
	Classe    string    `json:"classe"`
	PDFPath   string    `json:"pdf_path"`
	CreatedAt time.Time `json:"created_at"`
	FileURL   string    `json:"fileUrl"`
}

// handleListMyCourses reads the caller's class on every call, so a class
// change takes effect without a new token.
func (s *Server) handleListMyCourses(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	class, err := s.store.GetUserClass(r.Context(), identity.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			writeFailure(w, http.StatusNotFound, "User not found.")
			return
		}
		storeFailure(w, r, http.StatusInternalServerError, "Error retrieving class.", err)
		return
	}

	courses, err := s.store.ListCoursesByClass(r.Context(), class)
	if err != nil {
		storeFailure(w, r, http.StatusInternalServerError, "Error retrieving courses.", err)
		return
	}

	views := make([]courseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, courseView{
			ID:        c.ID,
			Matiere:   c.Matiere,
			Classe:    c.Classe,
			PDFPath:   c.PDFPath,
			CreatedAt: c.CreatedAt,
			FileURL:   storage.FileURL(s.cfg.PublicBaseURL, c.PDFPath),
		})
	}
	writeJSON(w, http.StatusOK, views)
}
