package dto

import "github.com/yigit/sims/internal/app/models"

// CreateStudentRequest adds a student directly, optionally with a login
type CreateStudentRequest struct {
	Name       string            `json:"name" binding:"required,max=100,personname"`
	Department string            `json:"department" binding:"required,max=50,storable"`
	Semester   int               `json:"semester" binding:"min=0,max=20"`
	CGPA       float64           `json:"cgpa" binding:"min=0,max=4"`
	Login      *LoginCredentials `json:"login,omitempty"`
}

// UpdateStudentRequest replaces every editable field of a student
type UpdateStudentRequest struct {
	Name       string  `json:"name" binding:"required,max=100,personname"`
	Department string  `json:"department" binding:"required,max=50,storable"`
	Semester   int     `json:"semester" binding:"min=0,max=20"`
	CGPA       float64 `json:"cgpa" binding:"min=0,max=4"`
}

// UpdateSelfRequest is what a student may change on their own record
type UpdateSelfRequest struct {
	Name       string `json:"name" binding:"required,max=100,personname"`
	Department string `json:"department" binding:"required,max=50,storable"`
	Semester   int    `json:"semester" binding:"min=0,max=20"`
}

// CreateStudentResponse returns the new student and the login created with it
type CreateStudentResponse struct {
	Student  models.Student `json:"student"`
	Username string         `json:"username,omitempty"`
}

// StudentListResponse is one page of students
type StudentListResponse struct {
	Students   []models.Student `json:"students"`
	Pagination PaginationInfo   `json:"pagination"`
}

// DeleteStudentResponse reports what a cascade delete removed
type DeleteStudentResponse struct {
	StudentID         int `json:"studentId"`
	MarksheetsRemoved int `json:"marksheetsRemoved"`
	LoginsRemoved     int `json:"loginsRemoved"`
}
