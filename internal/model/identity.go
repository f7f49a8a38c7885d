package model

// Role is the access level of an authenticated user.
type Role string

const (
	RoleJudge Role = "judge"
	RoleClerk Role = "clerk"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleJudge, RoleClerk, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated caller of an operation.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// SystemIdentity is used for work the service starts on its own, such as scheduled backups.
var SystemIdentity = Identity{UserID: "system", Role: RoleAdmin}
