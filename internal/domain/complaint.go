package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints. The lifecycle
// is linear and forward-only: pending -> in_progress -> completed.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusCompleted  ComplaintStatus = "completed"
)

// ParseComplaintStatus validates a raw status token.
func ParseComplaintStatus(raw string) (ComplaintStatus, bool) {
	switch ComplaintStatus(raw) {
	case ComplaintStatusPending, ComplaintStatusInProgress, ComplaintStatusCompleted:
		return ComplaintStatus(raw), true
	default:
		return "", false
	}
}

func statusRank(s ComplaintStatus) int {
	switch s {
	case ComplaintStatusPending:
		return 0
	case ComplaintStatusInProgress:
		return 1
	case ComplaintStatusCompleted:
		return 2
	default:
		return -1
	}
}

// CanTransition reports whether a complaint may move from one status to the
// next. Only single forward steps are allowed; there is no backward path and
// no skipping pending -> completed.
func CanTransition(from, to ComplaintStatus) bool {
	fromRank, toRank := statusRank(from), statusRank(to)
	if fromRank < 0 || toRank < 0 {
		return false
	}
	return toRank == fromRank+1
}

// Complaint is the central work item. It is owned by the submitting user and
// mutated by the coordinator (assignment, verification) and the assigned
// worker (status, progress, resolution).
type Complaint struct {
	ID                 string
	Reference          string
	ComplainantID      string
	CampusID           string
	ComplaintTypeID    string
	Location           string
	Description        string
	ImageKey           *string
	Status             ComplaintStatus
	CoordinatorID      *string
	WorkerID           *string
	ResolutionNotes    *string
	ResolutionImageKey *string
	ResolvedAt         *time.Time
	VerifiedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ComplaintUpdate is an append-only progress note recorded by the assigned
// worker while a complaint is in progress.
type ComplaintUpdate struct {
	ID          string
	ComplaintID string
	WorkerID    string
	Note        string
	CreatedAt   time.Time
}
