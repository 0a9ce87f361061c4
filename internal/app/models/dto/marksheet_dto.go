package dto

import "github.com/yigit/sims/internal/app/models"

// SubjectScoreRequest is one subject line of a marksheet
type SubjectScoreRequest struct {
	Subject string  `json:"subject" binding:"required,max=80,storable"`
	Score   float64 `json:"score" binding:"min=0"`
	Grade   string  `json:"grade" binding:"required,max=4,storable"`
}

// AddMarksheetRequest adds one semester's marksheet
type AddMarksheetRequest struct {
	SemesterLabel string                `json:"semesterLabel" binding:"required,max=80,storable"`
	Entries       []SubjectScoreRequest `json:"entries" binding:"dive"`
}

// MarksheetResponse is a marksheet with its semester average
type MarksheetResponse struct {
	models.Marksheet
	Average float64 `json:"average"`
}

// MarksheetListResponse lists a student's marksheets
type MarksheetListResponse struct {
	Student    *models.Student     `json:"student,omitempty"`
	Marksheets []MarksheetResponse `json:"marksheets"`
}
