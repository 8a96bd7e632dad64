package importer

import (
	"net/http"

	"github.com/whatson/whatson/internal/auth"
	"github.com/whatson/whatson/internal/rest"
)

const maxImportBytes = 16 << 20

type Handler struct {
	importer *Service
}

type ImportResultDTO struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	EventsProcessed int    `json:"eventsProcessed"`
	VenuesCreated   int    `json:"venuesCreated"`
	Skipped         int    `json:"skipped"`
}

func NewHandler(importer *Service) *Handler {
	return &Handler{importer}
}

// Import accepts a multipart upload ("file" field) of CSV content.
// Platform admin only.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if !auth.IsPlatformAdmin(r.Context()) {
		rest.WriteError(w, http.StatusForbidden, "Unauthorized", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "No file uploaded", "")
		return
	}
	defer file.Close()

	result, err := h.importer.Import(r.Context(), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rest.WriteJSON(w, http.StatusOK, ImportResultDTO{
		Success:         true,
		Message:         result.Message(),
		EventsProcessed: result.EventsProcessed,
		VenuesCreated:   result.VenuesCreated,
		Skipped:         result.Skipped,
	})
}
