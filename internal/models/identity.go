package models

// Role is the platform-level role carried in the auth token
type Role string

const (
	RoleLearner    Role = "learner"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Identity is the authenticated caller, as supplied by the auth
// collaborator. The core trusts it and performs no credential checks.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// IsAdmin returns true for platform administrators
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
