package http

import (
	"net/http"
	"time"

	"github.com/mahmoudBH/gestion-etudiant/internal/auth"
	"github.com/mahmoudBH/gestion-etudiant/internal/crypto"
	"github.com/mahmoudBH/gestion-etudiant/internal/model"
	"github.com/mahmoudBH/gestion-etudiant/internal/repository"
)

type signupRequest struct {
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Class     string `json:"class" validate:"required"`
}

// handleSignup stores the fields as given. Email uniqueness is left to the
// users.email index, so a duplicate surfaces as the generic signup error.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if msg, missing := s.missingFields(req); missing {
		writeFailure(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		storeFailure(w, r, http.StatusInternalServerError, "Error during signup.", err)
		return
	}

	_, err = s.store.CreateUser(r.Context(), model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Class:        req.Class,
	})
	if err != nil {
		storeFailure(w, r, http.StatusInternalServerError, "Error during signup.", err)
		return
	}

	writeJSON(w, http.StatusCreated, result{Success: true, Message: "Signup successful!"})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userSummary `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if msg, missing := s.missingFields(req); missing {
		writeFailure(w, http.StatusBadRequest, msg)
		return
	}

	// Unknown email and wrong password answer identically.
	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			writeFailure(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		storeFailure(w, r, http.StatusInternalServerError, "Error occurred.", err)
		return
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeFailure(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	token, err := s.tokens.Issue(auth.Identity{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		storeFailure(w, r, http.StatusInternalServerError, "Error occurred.", err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful!",
		Token:   token,
		User: userSummary{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
	})
}

// handleLogout revokes the presented token when a denylist is configured.
// Without a token, or without a denylist, it only acknowledges.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.denylist != nil {
		if claims, err := s.authenticate(r); err == nil {
			until := time.Now().Add(s.tokens.TTL())
			if claims.ExpiresAt != nil {
				until = claims.ExpiresAt.Time
			}
			if err := s.denylist.Revoke(r.Context(), claims.RegisteredClaims.ID, until); err != nil {
				storeFailure(w, r, http.StatusInternalServerError, "Could not log out.", err)
				return
			}
		}
	}
	writeJSON(w, http.StatusOK, result{Success: true, Message: "Logged out successfully."})
}

type sessionResponse struct {
	LoggedIn bool         `json:"loggedIn"`
	Message  string       `json:"message,omitempty"`
	User     *auth.Claims `json:"user,omitempty"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	claims, err := s.authenticate(r)
	if err != nil {
		switch status := authStatus(err); status {
		case http.StatusUnauthorized:
			writeJSON(w, status, sessionResponse{Message: "No token provided."})
		case http.StatusForbidden:
			writeJSON(w, status, sessionResponse{Message: "Invalid or expired token."})
		default:
			storeFailure(w, r, status, "Could not verify token.", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{LoggedIn: true, User: claims})
}
