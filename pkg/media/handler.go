package media

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
	media    *Service
	maxBytes int64
}

type MediaDTO struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type updateLabelDTO struct {
	Label string `json:"label"`
}

func NewHandler(media *Service, maxBytes int64) *Handler {
	return &Handler{media: media, maxBytes: maxBytes}
}

// Upload accepts a multipart form with "file", and optional "type" and
// "label" fields. Platform admin only.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if !auth.IsPlatformAdmin(r.Context()) {
		rest.WriteError(w, http.StatusForbidden, "Unauthorized", "")
		return
	}

	// Some slack over the limit so the service can report ErrTooLarge itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "No file provided", "")
		return
	}
	defer file.Close()

	uploaded, err := h.media.Upload(r.Context(), header.Filename, file, r.FormValue("type"), r.FormValue("label"))
	if err != nil {
		writeMediaError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, mediaToDTO(uploaded))
}

func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.media.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]MediaDTO, 0, len(items))
	for _, m := range items {
		dtos = append(dtos, mediaToDTO(m))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) UpdateLabel(w http.ResponseWriter, r *http.Request) {
	if !auth.IsPlatformAdmin(r.Context()) {
		rest.WriteError(w, http.StatusForbidden, "Unauthorized", "")
		return
	}

	var dto updateLabelDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.media.UpdateLabel(r.Context(), mux.Vars(r)["mediaId"], dto.Label); err != nil {
		writeMediaError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.StatusResponse{Success: true})
}

func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if !auth.IsPlatformAdmin(r.Context()) {
		rest.WriteError(w, http.StatusForbidden, "Unauthorized", "")
		return
	}

	if err := h.media.Delete(r.Context(), mux.Vars(r)["mediaId"]); err != nil {
		writeMediaError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		rest.WriteError(w, http.StatusNotFound, "Media not found", "")
	case errors.Is(err, ErrNotImage):
		rest.WriteError(w, http.StatusBadRequest, "Only image files are allowed", "")
	case errors.Is(err, ErrTooLarge):
		rest.WriteError(w, http.StatusBadRequest, "File too large. Maximum size is 10MB.", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func mediaToDTO(m Media) MediaDTO {
	return MediaDTO{
		ID:        m.ID,
		URL:       m.URL,
		Filename:  m.Filename,
		MimeType:  m.MimeType,
		Size:      m.Size,
		Type:      m.Type,
		Label:     m.Label,
		CreatedAt: m.CreatedAt,
	}
}
