package dto

import "github.com/yigit/sims/internal/app/models"

// RegisterAdmissionRequest is an applicant's submission
type RegisterAdmissionRequest struct {
	Name       string `json:"name" binding:"required,max=100,personname"`
	Department string `json:"department" binding:"required,max=50,storable"`
	Semester   int    `json:"semester" binding:"min=0,max=20"`
	Email      string `json:"email" binding:"required,max=100,looseemail,storable"`
	Username   string `json:"username" binding:"required,max=50,username"`
	Password   string `json:"password" binding:"required,password"`
}

// RegisterAdmissionResponse returns the temporary id of a new request
type RegisterAdmissionResponse struct {
	TempID int    `json:"tempId" example:"1001"`
	Status string `json:"status" example:"pending"`
}

// AdmissionResponse is the admin view of a request; the password never leaves the store
type AdmissionResponse struct {
	TempID     int    `json:"tempId"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Semester   int    `json:"semester"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Status     string `json:"status" enums:"pending,approved"`
	StudentID  int    `json:"studentId,omitempty"`
}

// NewAdmissionResponse maps a request to its response
func NewAdmissionResponse(a models.AdmissionRequest) AdmissionResponse {
	return AdmissionResponse{
		TempID:     a.TempID,
		Name:       a.Name,
		Department: a.Department,
		Semester:   a.Semester,
		Email:      a.Email,
		Username:   a.Username,
		Status:     a.Status.String(),
		StudentID:  a.Status.StudentID(),
	}
}

// AdmissionListResponse is a listing filtered by status
type AdmissionListResponse struct {
	Admissions []AdmissionResponse `json:"admissions"`
	Pagination PaginationInfo      `json:"pagination"`
}

// ApprovalResponse reports the outcome of an approval attempt
type ApprovalResponse struct {
	Outcome   string `json:"outcome" enums:"approved,already_approved,username_conflict,approval_failed"`
	TempID    int    `json:"tempId"`
	StudentID int    `json:"studentId,omitempty"`
	Username  string `json:"username,omitempty"`
}
