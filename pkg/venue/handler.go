package venue

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/whatson/whatson/internal/auth"
	"github.com/whatson/whatson/internal/rest"
)

type Handler struct {
	venues *Service
}

type VenueDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	Type       string    `json:"type"`
	OwnerEmail string    `json:"ownerEmail,omitempty"`
	EventCount int       `json:"eventCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

type resetPasswordDTO struct {
	Password string `json:"password"`
}

func NewHandler(venues *Service) *Handler {
	return &Handler{venues}
}

// ListVenues is public; owner emails are only included for the platform admin.
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.venues.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	isAdmin := auth.IsPlatformAdmin(r.Context())
	dtos := make([]VenueDTO, 0, len(venues))
	for _, v := range venues {
		dtos = append(dtos, venueToDTO(v, isAdmin))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	if !auth.IsPlatformAdmin(r.Context()) {
		rest.WriteError(w, http.StatusForbidden, "Unauthorized", "")
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	venue, err := h.venues.Create(r.Context(), input)
	if err != nil {
		writeVenueError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, venueToDTO(venue, true))
}

func (h *Handler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	if !auth.IsPlatformAdmin(r.Context()) {
		rest.WriteError(w, http.StatusForbidden, "Unauthorized", "")
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	venue, err := h.venues.Update(r.Context(), mux.Vars(r)["venueId"], input)
	if err != nil {
		writeVenueError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, venueToDTO(venue, true))
}

func (h *Handler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	if !auth.IsPlatformAdmin(r.Context()) {
		rest.WriteError(w, http.StatusForbidden, "Unauthorized", "")
		return
	}

	if err := h.venues.Delete(r.Context(), mux.Vars(r)["venueId"]); err != nil {
		writeVenueError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if !auth.IsPlatformAdmin(r.Context()) {
		rest.WriteError(w, http.StatusForbidden, "Unauthorized", "")
		return
	}

	var dto resetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.venues.ResetPassword(r.Context(), mux.Vars(r)["venueId"], dto.Password); err != nil {
		writeVenueError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.StatusResponse{Success: true})
}

func writeVenueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		rest.WriteError(w, http.StatusNotFound, "Venue not found", "")
	case errors.Is(err, ErrEmailInUse):
		rest.WriteError(w, http.StatusConflict, "Email already in use", "")
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrPasswordTooShort):
		rest.WriteError(w, http.StatusBadRequest, "Invalid input", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func venueToDTO(v Venue, includeEmail bool) VenueDTO {
	dto := VenueDTO{
		ID:         v.ID,
		Name:       v.Name,
		Location:   v.Location,
		Type:       v.Type,
		EventCount: v.EventCount,
		CreatedAt:  v.CreatedAt,
	}
	if includeEmail {
		dto.OwnerEmail = v.OwnerEmail
	}
	return dto
}
