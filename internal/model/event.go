package model

import "time"

// EventState is the moderation state of an event.
type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

// Valid reports whether s is a known state.
func (s EventState) Valid() bool {
	switch s {
	case StatePending, StatePublished, StateCanceled:
		return true
	}
	return false
}

// StateAction is a requested lifecycle transition carried by an update.
type StateAction string

const (
	ActionPublishEvent StateAction = "PUBLISH_EVENT"
	ActionRejectEvent  StateAction = "REJECT_EVENT"
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"
)

// Location is a point on the map.
type Location struct {
	Lat float32 `json:"lat"`
	Lon float32 `json:"lon"`
}

// Event represents a proposed or published happening.
//
// Category and Initiator are value copies loaded alongside the row; only
// their IDs are written back.
type Event struct {
	ID                int64
	Title             string
	Annotation        string
	Description       string
	Category          Category
	Initiator         UserShort
	Location          Location
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
	EventDate         time.Time
	CreatedOn         time.Time
	PublishedOn       *time.Time
	State             EventState
	ConfirmedRequests int
	Views             int64
}

// Limited reports whether the event caps the number of participants.
func (e *Event) Limited() bool {
	return e.ParticipantLimit != 0
}

// IsFull returns true when a capped event has no free slots left.
func (e *Event) IsFull() bool {
	return e.Limited() && e.ConfirmedRequests >= e.ParticipantLimit
}

// Remaining returns the number of free slots, or -1 for unlimited events.
func (e *Event) Remaining() int {
	if !e.Limited() {
		return -1
	}
	return e.ParticipantLimit - e.ConfirmedRequests
}

// AutoConfirms reports whether new requests skip the moderation queue.
func (e *Event) AutoConfirms() bool {
	return !e.RequestModeration || !e.Limited()
}

// URI is the public path of the event, used as the stats key.
func (e *Event) URI() string {
	return EventURI(e.ID)
}

// NewEvent is the payload for creating an event.
type NewEvent struct {
	Title             string    `json:"title"`
	Annotation        string    `json:"annotation"`
	Description       string    `json:"description"`
	Category          int64     `json:"category"`
	Location          *Location `json:"location"`
	EventDate         string    `json:"eventDate"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int      `json:"participantLimit"`
	RequestModeration *bool     `json:"requestModeration"`
}

// UpdateEventRequest is a partial update of an event. Nil fields are left
// unchanged. Used by both the initiator and the admin paths.
type UpdateEventRequest struct {
	Title             *string   `json:"title"`
	Annotation        *string   `json:"annotation"`
	Description       *string   `json:"description"`
	Category          *int64    `json:"category"`
	Location          *Location `json:"location"`
	EventDate         *string   `json:"eventDate"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int      `json:"participantLimit"`
	RequestModeration *bool     `json:"requestModeration"`
	StateAction       *string   `json:"stateAction"`
}

// EventFull is the detailed event view.
type EventFull struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	Category          Category   `json:"category"`
	Initiator         UserShort  `json:"initiator"`
	Location          Location   `json:"location"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participantLimit"`
	RequestModeration bool       `json:"requestModeration"`
	EventDate         string     `json:"eventDate"`
	CreatedOn         string     `json:"createdOn"`
	PublishedOn       *string    `json:"publishedOn"`
	State             EventState `json:"state"`
	ConfirmedRequests int        `json:"confirmedRequests"`
	Views             int64      `json:"views"`
}

// EventShort is the compact event view used in lists.
type EventShort struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Annotation        string    `json:"annotation"`
	Category          Category  `json:"category"`
	Initiator         UserShort `json:"initiator"`
	Paid              bool      `json:"paid"`
	EventDate         string    `json:"eventDate"`
	ConfirmedRequests int       `json:"confirmedRequests"`
	Views             int64     `json:"views"`
}

// Full maps e to its detailed view.
func (e *Event) Full() EventFull {
	return EventFull{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Description:       e.Description,
		Category:          e.Category,
		Initiator:         e.Initiator,
		Location:          e.Location,
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		EventDate:         FormatTime(e.EventDate),
		CreatedOn:         FormatTime(e.CreatedOn),
		PublishedOn:       FormatTimePtr(e.PublishedOn),
		State:             e.State,
		ConfirmedRequests: e.ConfirmedRequests,
		Views:             e.Views,
	}
}

// Short maps e to its compact view.
func (e *Event) Short() EventShort {
	return EventShort{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Category:          e.Category,
		Initiator:         e.Initiator,
		Paid:              e.Paid,
		EventDate:         FormatTime(e.EventDate),
		ConfirmedRequests: e.ConfirmedRequests,
		Views:             e.Views,
	}
}

// FullViews maps a slice of events to detailed views.
func FullViews(events []Event) []EventFull {
	out := make([]EventFull, 0, len(events))
	for i := range events {
		out = append(out, events[i].Full())
	}
	return out
}

// ShortViews maps a slice of events to compact views.
func ShortViews(events []Event) []EventShort {
	out := make([]EventShort, 0, len(events))
	for i := range events {
		out = append(out, events[i].Short())
	}
	return out
}
