package services

import (
	"fmt"
	"strings"

	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/validation"
)

// checkPerson validates the fields shared by admissions and student records
func checkPerson(name, department string, semester int) error {
	if !validation.IsValidName(name) {
		return apperrors.NewValidationError("name may only contain letters, spaces, '.' and '-'")
	}
	if strings.TrimSpace(department) == "" || !validation.IsStorable(department) {
		return apperrors.NewValidationError("department must be non-empty and must not contain commas or line breaks")
	}
	if semester < 0 {
		return apperrors.NewValidationError("semester cannot be negative")
	}
	return nil
}

// checkCredentials validates a username and a raw password before hashing
func checkCredentials(username, password string) error {
	if !validation.IsValidUsername(username) {
		return apperrors.NewValidationError("username must be a single word without commas")
	}
	if password == "" {
		return apperrors.NewValidationError("password is required")
	}
	if !validation.IsValidPassword(password) {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at most %d bytes", validation.PasswordMaxBytes))
	}
	return nil
}

func checkCGPA(cgpa float64) error {
	if cgpa < 0 || cgpa > 4 {
		return apperrors.NewValidationError(fmt.Sprintf("cgpa must be between 0 and 4, got %.2f", cgpa))
	}
	return nil
}
