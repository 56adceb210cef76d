package http

import (
	"net/http"

	"github.com/patrickmn/go-cache"

	"github.com/mahmoudBH/gestion-etudiant/internal/model"
)

const contactsCacheKey = "contacts"

type contactsFailure struct {
	Error string `json:"error"`
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	if s.contacts != nil {
		if cached, ok := s.contacts.Get(contactsCacheKey); ok {
			writeJSON(w, http.StatusOK, cached.([]model.Contact))
			return
		}
	}

	contacts, err := s.store.ListContacts(r.Context())
	if err != nil {
		logFailure(r, err)
		writeJSON(w, http.StatusInternalServerError, contactsFailure{Error: "Failed to retrieve contacts"})
		return
	}
	if s.contacts != nil {
		s.contacts.Set(contactsCacheKey, contacts, cache.DefaultExpiration)
	}
	writeJSON(w, http.StatusOK, contacts)
}
