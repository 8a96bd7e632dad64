package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/whatson/whatson/internal/auth"
	"github.com/whatson/whatson/internal/rest"
	"github.com/whatson/whatson/internal/session"
)

type Handler struct {
	service  *Service
	sessions *session.Store
}

type loginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func NewHandler(service *Service, sessions *session.Store) *Handler {
	return &Handler{service: service, sessions: sessions}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto loginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := h.service.AuthenticateVenue(r.Context(), dto.Email, dto.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	if err := h.sessions.SetVenue(w, r, v.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.StatusResponse{Success: true})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearVenue(w, r); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.StatusResponse{Success: true})
}

func (h *Handler) PlatformLogin(w http.ResponseWriter, r *http.Request) {
	var dto loginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.AuthenticateAdmin(dto.Email, dto.Password); err != nil {
		writeAuthError(w, err)
		return
	}

	if err := h.sessions.SetPlatformAdmin(w, r); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.StatusResponse{Success: true})
}

func (h *Handler) PlatformLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearPlatformAdmin(w, r); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.StatusResponse{Success: true})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	venueID, err := auth.CurrentVenueID(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated", "")
		return
	}

	var dto changePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.service.ChangePassword(r.Context(), venueID, dto.CurrentPassword, dto.NewPassword, dto.ConfirmPassword)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.StatusResponse{Success: true, Message: "Password updated"})
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		rest.WriteError(w, http.StatusUnauthorized, "Invalid credentials", "")
	case errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrPasswordTooShort):
		rest.WriteError(w, http.StatusBadRequest, err.Error(), "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
