package models

import (
	"errors"
	"fmt"
)

// Admission status labels as stored in the admissions table
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// ErrInvalidStatus is returned when an approved status is built without a student id
var ErrInvalidStatus = errors.New("approved status requires a positive student id")

// AdmissionStatus is either pending or approved with the id of the student
// created for the request. The zero value is pending.
type AdmissionStatus struct {
	studentID int
}

// Pending returns the initial status
func Pending() AdmissionStatus {
	return AdmissionStatus{}
}

// Approved returns the terminal status pointing at studentID
func Approved(studentID int) (AdmissionStatus, error) {
	if studentID <= 0 {
		return AdmissionStatus{}, fmt.Errorf("%w: got %d", ErrInvalidStatus, studentID)
	}
	return AdmissionStatus{studentID: studentID}, nil
}

// IsApproved reports whether the request has been promoted
func (s AdmissionStatus) IsApproved() bool {
	return s.studentID > 0
}

// StudentID returns the linked student, 0 while pending
func (s AdmissionStatus) StudentID() int {
	return s.studentID
}

func (s AdmissionStatus) String() string {
	if s.IsApproved() {
		return StatusApproved
	}
	return StatusPending
}

// ParseAdmissionStatus rebuilds a status from its stored label and id. Only
// "approved" with a positive id counts as approved; anything else is pending.
func ParseAdmissionStatus(label string, studentID int) AdmissionStatus {
	if label == StatusApproved && studentID > 0 {
		return AdmissionStatus{studentID: studentID}
	}
	return Pending()
}

// AdmissionRequest is an applicant's submission awaiting approval
type AdmissionRequest struct {
	TempID     int             `json:"tempId"`
	Name       string          `json:"name"`
	Department string          `json:"department"`
	Semester   int             `json:"semester"`
	Email      string          `json:"email"`
	Username   string          `json:"username"`
	Password   string          `json:"-"`
	Status     AdmissionStatus `json:"-"`
}
