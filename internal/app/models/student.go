package models

// Student defines the student model based on the 'students' table
type Student struct {
	ID         int     `json:"id" example:"120"`         // Unique identifier, allocated from the table maximum
	Name       string  `json:"name" example:"Alice"`     // Full name
	Department string  `json:"department" example:"CSE"` // Department code or name
	Semester   int     `json:"semester" example:"3"`     // Current semester
	CGPA       float64 `json:"cgpa" example:"3.75"`      // Cumulative grade point average, stored with two decimals
}
