package dto

import "time"

// TrackRequest resolves a tracking reference to a status.
type TrackRequest struct {
	Reference string `json:"reference"`
}

// TrackResponse is the public view of a tracked complaint. It carries no
// complainant data so the reference alone reveals nothing personal.
type TrackResponse struct {
	Reference   string     `json:"reference"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

// AssignWorkerRequest hands a complaint to a worker.
type AssignWorkerRequest struct {
	WorkerID string `json:"worker_id"`
}

// UpdateStatusRequest moves a complaint forward. Resolution fields only
// apply when the target status is completed.
type UpdateStatusRequest struct {
	Status          string `json:"status"`
	ResolutionNotes string `json:"resolution_notes"`
}

// ProgressUpdateRequest appends a worker note.
type ProgressUpdateRequest struct {
	Note string `json:"note"`
}

// ComplaintSummary is the listing shape of a complaint.
type ComplaintSummary struct {
	ID              string     `json:"id"`
	Reference       string     `json:"reference"`
	CampusID        string     `json:"campus_id"`
	ComplaintTypeID string     `json:"complaint_type_id"`
	Location        string     `json:"location"`
	Status          string     `json:"status"`
	WorkerID        *string    `json:"worker_id,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ComplaintDetail is the full shape including resolution data and progress
// notes.
type ComplaintDetail struct {
	ComplaintSummary
	Description        string                    `json:"description"`
	HasImage           bool                      `json:"has_image"`
	CoordinatorID      *string                   `json:"coordinator_id,omitempty"`
	ResolutionNotes    *string                   `json:"resolution_notes,omitempty"`
	HasResolutionImage bool                      `json:"has_resolution_image"`
	Updates            []ComplaintUpdateResponse `json:"updates"`
}

// ComplaintUpdateResponse is one progress note.
type ComplaintUpdateResponse struct {
	ID        string    `json:"id"`
	WorkerID  string    `json:"worker_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
