package http

import (
	"net/http"

	"github.com/mahmoudBH/gestion-etudiant/internal/auth"
)

// handleListNotes is scoped by the token id only; /api/notes and
// /api/mesnotes both route here.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	notes, err := s.store.ListNotesByUser(r.Context(), identity.ID)
	if err != nil {
		storeFailure(w, r, http.StatusInternalServerError, "Error retrieving notes.", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}
