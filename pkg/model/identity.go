package model

type Role string

const (
	RoleResident Role = "resident"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
	RoleSecurity Role = "security"
)

func (r Role) Valid() bool {
	switch r {
	case RoleResident, RoleStaff, RoleAdmin, RoleSecurity:
		return true
	}
	return false
}

// Identity is the authenticated caller as asserted by the bearer token.
type Identity struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsStaff reports whether the caller manages bookings on behalf of the community.
func (i Identity) IsStaff() bool {
	return i.Role == RoleAdmin || i.Role == RoleStaff
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (i Identity) Owns(b *Booking) bool {
	return b != nil && i.ID != "" && b.UserID == i.ID
}
