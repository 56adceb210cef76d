package http

import (
	"errors"
	"net/http"

	"github.com/mahmoudBH/gestion-etudiant/internal/auth"
	"github.com/mahmoudBH/gestion-etudiant/internal/crypto"
	"github.com/mahmoudBH/gestion-etudiant/internal/model"
	"github.com/mahmoudBH/gestion-etudiant/internal/repository"
	"github.com/mahmoudBH/gestion-etudiant/internal/storage"
)

var errWrongPassword = errors.New("wrong_current_password")

type profileResponse struct {
	Success bool        `json:"success"`
	Data    userSummary `json:"data"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	user, err := s.store.GetUserByID(r.Context(), identity.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			writeFailure(w, http.StatusNotFound, "User not found.")
			return
		}
		storeFailure(w, r, http.StatusInternalServerError, "Error retrieving profile.", err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Success: true,
		Data: userSummary{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
	})
}

type updateProfileRequest struct {
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// handleUpdateProfile overwrites all four fields; there is no partial update.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	var req updateProfileRequest
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
		storeFailure(w, r, http.StatusInternalServerError, "Error updating profile.", err)
		return
	}

	updated, err := s.store.UpdateProfile(r.Context(), identity.ID, model.ProfileUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		storeFailure(w, r, http.StatusInternalServerError, "Error updating profile.", err)
		return
	}
	if !updated {
		writeFailure(w, http.StatusNotFound, "User not found or no changes made.")
		return
	}

	writeJSON(w, http.StatusOK, result{Success: true, Message: "Profile updated successfully!"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if msg, missing := s.missingFields(req); missing {
		writeFailure(w, http.StatusBadRequest, msg)
		return
	}

	newHash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		storeFailure(w, r, http.StatusInternalServerError, "Error updating password.", err)
		return
	}

	err = s.store.ChangePassword(r.Context(), identity.ID, func(storedHash string) error {
		if crypto.CheckPassword(storedHash, req.CurrentPassword) != nil {
			return errWrongPassword
		}
		return nil
	}, newHash)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result{Success: true, Message: "Password updated successfully."})
	case errors.Is(err, errWrongPassword):
		writeFailure(w, http.StatusForbidden, "Current password is incorrect.")
	case repository.IsNotFound(err):
		writeFailure(w, http.StatusNotFound, "User not found.")
	default:
		storeFailure(w, r, http.StatusInternalServerError, "Error updating password.", err)
	}
}

type uploadPhotoResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PhotoPath string `json:"photoPath"`
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	const field = "profile_photo"

	if err := s.parseMultipart(w, r); err != nil {
		s.rejectUpload(w, r, field, err)
		return
	}
	name, err := s.uploads.SaveFormFile(r, field)
	if err != nil {
		s.rejectUpload(w, r, field, err)
		return
	}

	photoPath := storage.PublicPath(name)
	updated, err := s.store.UpdateProfilePhoto(r.Context(), identity.ID, photoPath)
	if err != nil {
		s.discardUpload(name)
		s.metrics.upload(field, "store_error")
		storeFailure(w, r, http.StatusInternalServerError, "Error updating profile photo.", err)
		return
	}
	if !updated {
		s.discardUpload(name)
		s.metrics.upload(field, "no_user")
		writeFailure(w, http.StatusNotFound, "User not found.")
		return
	}

	s.metrics.upload(field, "ok")
	writeJSON(w, http.StatusOK, uploadPhotoResponse{
		Success:   true,
		Message:   "Profile photo updated successfully!",
		PhotoPath: photoPath,
	})
}
