package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/whatson/whatson/internal/rest"
)

type Handler struct {
	events *Service
}

type EventDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	BookingURL  string    `json:"bookingUrl,omitempty"`
	GroupID     string    `json:"groupId,omitempty"`
	Recurrence  string    `json:"recurrence,omitempty"`
	VenueID     string    `json:"venueId"`
	VenueName   string    `json:"venueName,omitempty"`
}

type deleteManyDTO struct {
	IDs []string `json:"ids"`
}

func NewHandler(events *Service) *Handler {
	return &Handler{events}
}

// ListEvents is the public listing: upcoming events, optionally filtered by
// ?q= (substring) and ?category=.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.events.Upcoming(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("category"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventsToDTOs(events))
}

func (h *Handler) ListVenueEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListByVenue(r.Context(), mux.Vars(r)["venueId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventsToDTOs(events))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.events.Create(r.Context(), input)
	if err != nil {
		writeEventError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventsToDTOs(created))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.events.Update(r.Context(), mux.Vars(r)["eventId"], input)
	if err != nil {
		writeEventError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(updated))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), mux.Vars(r)["eventId"]); err != nil {
		writeEventError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteEvents(w http.ResponseWriter, r *http.Request) {
	var dto deleteManyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deleted, err := h.events.DeleteMany(r.Context(), dto.IDs)
	if err != nil {
		writeEventError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func writeEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, ErrUnauthorized):
		rest.WriteError(w, http.StatusForbidden, "Unauthorized", "")
	case errors.Is(err, ErrInvalidInput):
		rest.WriteError(w, http.StatusBadRequest, "Missing Required Fields", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Category:    e.Category,
		BookingURL:  e.BookingURL,
		GroupID:     e.GroupID,
		Recurrence:  string(e.Recurrence),
		VenueID:     e.VenueID,
		VenueName:   e.VenueName,
	}
}

func eventsToDTOs(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	return dtos
}
