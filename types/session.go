package types

import "github.com/google/uuid"

// Role is the authorization level carried by a session.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
	RoleGuest  Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleGuest:
		return true
	default:
		return false
	}
}

// Session is the payload kept by the session store for a logged-in caller.
// For the admin role UserID is a random value that matches no stored user.
type Session struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}
