// models/user.go
package models

// Role identifies who is acting on a booking.
type Role string

const (
	RoleClient Role = "client"
	RoleMaster Role = "master"
	RoleAdmin  Role = "admin"
	// RoleSystem is used by background jobs such as the reconciler.
	RoleSystem Role = "system"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleMaster, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// Caller is the identity supplied by the auth collaborator. The core trusts it as given.
type Caller struct {
	UserID   string `json:"userId"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	MasterID string `json:"masterId,omitempty"` // set when Role == RoleMaster
}

// CanActForUser reports whether the caller may read or modify data owned by userID.
func (c Caller) CanActForUser(userID string) bool {
	return c.Role == RoleAdmin || c.UserID == userID
}

// CanActForMaster reports whether the caller may act on behalf of masterID.
func (c Caller) CanActForMaster(masterID string) bool {
	return c.Role == RoleAdmin || (c.Role == RoleMaster && c.MasterID == masterID)
}
