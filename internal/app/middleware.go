package app

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/whatson/whatson/internal/auth"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {

	// Resolve session cookies into context for downstream services
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			if venueID, ok := deps.Sessions.VenueID(req); ok {
				log.Debugf("request authenticated for venue %s", venueID)
				ctx = auth.WithVenue(ctx, venueID)
			}
			if deps.Sessions.IsPlatformAdmin(req) {
				log.Debug("request authenticated as platform admin")
				ctx = auth.WithPlatformAdmin(ctx)
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
