package model

// Role is the authoritative role claim of a user account. It never changes
// after the account is created.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleProfessor
}
