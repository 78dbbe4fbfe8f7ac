package model

import "time"

// RequestStatus is the state of a participation request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusConfirmed RequestStatus = "CONFIRMED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest represents one user's intent to attend one event.
type ParticipationRequest struct {
	ID          int64
	RequesterID int64
	EventID     int64
	Status      RequestStatus
	Created     time.Time
}

// Active reports whether the request still counts against the
// one-request-per-user-and-event rule.
func (r *ParticipationRequest) Active() bool {
	return r.Status != StatusCanceled
}

// ParticipationRequestDto is the wire view of a participation request.
type ParticipationRequestDto struct {
	ID        int64         `json:"id"`
	Event     int64         `json:"event"`
	Requester int64         `json:"requester"`
	Status    RequestStatus `json:"status"`
	Created   string        `json:"created"`
}

// View maps r to its wire representation.
func (r *ParticipationRequest) View() ParticipationRequestDto {
	return ParticipationRequestDto{
		ID:        r.ID,
		Event:     r.EventID,
		Requester: r.RequesterID,
		Status:    r.Status,
		Created:   FormatTime(r.Created),
	}
}

// RequestViews maps a slice of requests to their wire representation.
func RequestViews(reqs []ParticipationRequest) []ParticipationRequestDto {
	out := make([]ParticipationRequestDto, 0, len(reqs))
	for i := range reqs {
		out = append(out, reqs[i].View())
	}
	return out
}

// StatusUpdateRequest is the payload for bulk moderation of requests.
type StatusUpdateRequest struct {
	RequestIDs []int64       `json:"requestIds"`
	Status     RequestStatus `json:"status"`
}

// StatusUpdateResult summarises the outcome of a bulk moderation call.
type StatusUpdateResult struct {
	ConfirmedRequests []ParticipationRequestDto `json:"confirmedRequests"`
	RejectedRequests  []ParticipationRequestDto `json:"rejectedRequests"`
}
