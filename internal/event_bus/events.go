package event_bus

const (
	TopicEventsCreated   EventType = "events.created"
	TopicVenueCreated    EventType = "venue.created"
	TopicImportCompleted EventType = "import.completed"
)

// EventsCreated is published once per event submission; for a recurring
// submission Count covers the whole generated group.
type EventsCreated struct {
	VenueID string
	GroupID string
	Count   int
}

type VenueCreated struct {
	ID   string
	Name string
	// Imported is true when the venue was auto-created by the CSV import
	// rather than registered by the platform admin.
	Imported bool
}

type ImportCompleted struct {
	EventsProcessed int
	VenuesCreated   int
	Skipped         int
}
