package models

// Login is one row of the 'logins' table
type Login struct {
	Username  string `json:"username"`
	Password  string `json:"-"`
	Role      Role   `json:"role"`
	StudentID int    `json:"studentId"` // 0 or negative when not linked to a student
}

// Linked reports whether the login belongs to a student record
func (l Login) Linked() bool {
	return l.StudentID > 0
}
