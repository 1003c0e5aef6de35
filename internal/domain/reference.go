package domain

import "time"

// Campus is an admin-managed reference entity.
type Campus struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComplaintType is an admin-managed reference entity representing a
// department or category a complaint falls under.
type ComplaintType struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
