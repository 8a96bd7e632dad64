package app

import (
	"database/sql"

	log "github.com/sirupsen/logrus"
	"github.com/whatson/whatson/internal/config"
	"github.com/whatson/whatson/internal/event_bus"
	"github.com/whatson/whatson/internal/session"
	"github.com/whatson/whatson/internal/utils"
	"github.com/whatson/whatson/pkg/auth"
	"github.com/whatson/whatson/pkg/event"
	"github.com/whatson/whatson/pkg/importer"
	"github.com/whatson/whatson/pkg/media"
	"github.com/whatson/whatson/pkg/venue"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Sessions *session.Store
	Bus      *event_bus.EventBus
	Clock    utils.Clock

	VenueRepo    venue.Repository
	VenueService *venue.Service
	VenueHandler *venue.Handler

	EventRepo    event.Repository
	EventService *event.Service
	EventHandler *event.Handler

	ImportService *importer.Service
	ImportHandler *importer.Handler

	AuthService *auth.Service
	AuthHandler *auth.Handler

	MediaRepo    media.Repository
	MediaStore   media.BlobStore
	MediaService *media.Service
	MediaHandler *media.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Sessions = session.NewStore(cfg.Session)
	deps.Bus = event_bus.NewEventBus()
	deps.Clock = utils.SystemClock{}

	deps.VenueRepo = venue.NewRepository(db)
	deps.VenueService = venue.NewService(deps.VenueRepo, deps.Bus)
	deps.VenueHandler = venue.NewHandler(deps.VenueService)

	deps.EventRepo = event.NewRepository(db)
	deps.EventService = event.NewService(deps.EventRepo, deps.Clock, deps.Bus)
	deps.EventHandler = event.NewHandler(deps.EventService)

	deps.ImportService = importer.NewService(deps.VenueRepo, deps.EventRepo, cfg.Import, deps.Bus)
	deps.ImportHandler = importer.NewHandler(deps.ImportService)

	deps.AuthService = auth.NewService(deps.VenueRepo, cfg.Admin)
	deps.AuthHandler = auth.NewHandler(deps.AuthService, deps.Sessions)

	deps.MediaRepo = media.NewRepository(db)
	deps.MediaStore = media.NewDiskStore(cfg.Storage.Dir, cfg.Storage.BaseURL)
	deps.MediaService = media.NewService(deps.MediaRepo, deps.MediaStore, deps.Clock, cfg.Storage.MaxUploadBytes)
	deps.MediaHandler = media.NewHandler(deps.MediaService, cfg.Storage.MaxUploadBytes)

	subscribeAuditLog(deps.Bus)

	return deps
}

// subscribeAuditLog logs the domain events published by the services.
func subscribeAuditLog(bus *event_bus.EventBus) {
	bus.Subscribe(event_bus.TopicEventsCreated, func(e event_bus.Event) error {
		if payload, ok := e.Data.(event_bus.EventsCreated); ok {
			log.Infof("audit: venue %s created %d event(s)", payload.VenueID, payload.Count)
		}
		return nil
	})
	bus.Subscribe(event_bus.TopicVenueCreated, func(e event_bus.Event) error {
		if payload, ok := e.Data.(event_bus.VenueCreated); ok {
			log.Infof("audit: venue %q created (imported=%t)", payload.Name, payload.Imported)
		}
		return nil
	})
	bus.Subscribe(event_bus.TopicImportCompleted, func(e event_bus.Event) error {
		if payload, ok := e.Data.(event_bus.ImportCompleted); ok {
			log.Infof("audit: import finished: %d processed, %d venues created, %d skipped",
				payload.EventsProcessed, payload.VenuesCreated, payload.Skipped)
		}
		return nil
	})
}
