package dto

import "time"

// UserRequest is the admin create/edit payload. Campus and complaint type
// only apply to coordinator and worker roles.
type UserRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role"`
	CampusID             string `json:"campus_id"`
	ComplaintTypeID      string `json:"complaint_type_id"`
}

// AdminResetPasswordRequest sets a user's password on their behalf.
type AdminResetPasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// RoleAssignmentResponse is one role row of an account.
type RoleAssignmentResponse struct {
	Role            string  `json:"role"`
	CampusID        *string `json:"campus_id,omitempty"`
	ComplaintTypeID *string `json:"complaint_type_id,omitempty"`
}

// UserWithRolesResponse pairs an account with its role rows.
type UserWithRolesResponse struct {
	User  UserResponse             `json:"user"`
	Roles []RoleAssignmentResponse `json:"roles"`
}

// ReferenceRequest is the create/edit payload for campuses and complaint types.
type ReferenceRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

// ReferenceResponse is one campus or complaint type row.
type ReferenceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
