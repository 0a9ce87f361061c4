package models

// Role defines what a login may do
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// Session is the identity established by a successful login
type Session struct {
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	StudentID int    `json:"studentId,omitempty"`
}
