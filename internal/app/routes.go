package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Venue owner auth
	r.HandleFunc("/api/auth/login", deps.AuthHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/logout", deps.AuthHandler.Logout).Methods("POST")
	r.HandleFunc("/api/auth/password", deps.AuthHandler.ChangePassword).Methods("POST")

	// Platform admin auth
	r.HandleFunc("/api/platform/auth/login", deps.AuthHandler.PlatformLogin).Methods("POST")
	r.HandleFunc("/api/platform/auth/logout", deps.AuthHandler.PlatformLogout).Methods("POST")

	// Events
	r.HandleFunc("/api/events", deps.EventHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events", deps.EventHandler.DeleteEvents).Methods("DELETE")
	r.HandleFunc("/api/events/{eventId}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/events/{eventId}", deps.EventHandler.DeleteEvent).Methods("DELETE")

	// Venues
	r.HandleFunc("/api/venues", deps.VenueHandler.ListVenues).Methods("GET")
	r.HandleFunc("/api/venues", deps.VenueHandler.CreateVenue).Methods("POST")
	r.HandleFunc("/api/venues/{venueId}", deps.VenueHandler.UpdateVenue).Methods("PUT")
	r.HandleFunc("/api/venues/{venueId}", deps.VenueHandler.DeleteVenue).Methods("DELETE")
	r.HandleFunc("/api/venues/{venueId}/password", deps.VenueHandler.ResetPassword).Methods("POST")
	r.HandleFunc("/api/venues/{venueId}/events", deps.EventHandler.ListVenueEvents).Methods("GET")

	// CSV import
	r.HandleFunc("/api/import", deps.ImportHandler.Import).Methods("POST")

	// Media
	r.HandleFunc("/api/media", deps.MediaHandler.Upload).Methods("POST")
	r.HandleFunc("/api/media", deps.MediaHandler.ListMedia).Methods("GET")
	r.HandleFunc("/api/media/{mediaId}", deps.MediaHandler.UpdateLabel).Methods("PATCH")
	r.HandleFunc("/api/media/{mediaId}", deps.MediaHandler.DeleteMedia).Methods("DELETE")
}
