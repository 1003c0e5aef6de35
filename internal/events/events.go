package events

import (
	"time"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintAssigned      EventType = "complaint_assigned"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintVerified      EventType = "complaint_verified"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Reference string      `json:"reference,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload carries the data the verification mail needs.
type UserRegisteredPayload struct {
	UserID            string `json:"user_id"`
	Email             string `json:"email"`
	VerificationToken string `json:"verification_token"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	CampusID        string `json:"campus_id"`
	ComplaintTypeID string `json:"complaint_type_id"`
	Location        string `json:"location"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	CoordinatorID string `json:"coordinator_id"`
	WorkerID      string `json:"worker_id"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintVerifiedPayload payload.
type ComplaintVerifiedPayload struct {
	VerifiedBy string `json:"verified_by"`
}
