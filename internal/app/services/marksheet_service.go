package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/repositories"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/logger"
	"github.com/yigit/sims/internal/pkg/validation"
)

// MarksheetService records and reports semester marksheets
type MarksheetService struct {
	marksheetRepo *repositories.MarksheetRepository
	studentRepo   *repositories.StudentRepository
	workflow      *sync.Mutex
}

// NewMarksheetService creates a new marksheet service instance. workflow is
// shared with StudentService so a marksheet is never written for a student
// whose delete is in flight.
func NewMarksheetService(repos *repositories.Repositories, workflow *sync.Mutex) *MarksheetService {
	return &MarksheetService{
		marksheetRepo: repos.MarksheetRepository,
		studentRepo:   repos.StudentRepository,
		workflow:      workflow,
	}
}

// Add stores a marksheet for an existing student
func (s *MarksheetService) Add(ctx context.Context, studentID int, req *dto.AddMarksheetRequest) (*dto.MarksheetResponse, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("request is required")
	}
	label := strings.TrimSpace(req.SemesterLabel)
	if label == "" || !validation.IsStorable(label) {
		return nil, apperrors.NewValidationError("semester label must be non-empty and must not contain commas or line breaks")
	}

	sheet := models.Marksheet{
		StudentID:     studentID,
		SemesterLabel: label,
		Entries:       make([]models.SubjectScore, 0, len(req.Entries)),
	}
	for i, e := range req.Entries {
		subject, grade := strings.TrimSpace(e.Subject), strings.TrimSpace(e.Grade)
		if subject == "" || !validation.IsStorable(subject) || !validation.IsStorable(grade) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("entry %d: subject and grade must not contain commas or line breaks", i+1))
		}
		if e.Score < 0 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("entry %d: score cannot be negative", i+1))
		}
		sheet.Entries = append(sheet.Entries, models.SubjectScore{
			Subject: subject,
			Score:   math.Round(e.Score*100) / 100,
			Grade:   grade,
		})
	}

	s.workflow.Lock()
	defer s.workflow.Unlock()

	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	if err := s.marksheetRepo.Create(ctx, sheet); err != nil {
		return nil, err
	}

	logger.Info().Int("studentId", studentID).Str("semester", label).Int("subjects", len(sheet.Entries)).Msg("Marksheet added")
	return &dto.MarksheetResponse{Marksheet: sheet, Average: sheet.Average()}, nil
}

// ListForStudent returns every marksheet of a student with its average. The
// student record is attached when it still exists.
func (s *MarksheetService) ListForStudent(ctx context.Context, studentID int) (*dto.MarksheetListResponse, error) {
	sheets, err := s.marksheetRepo.ListByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resp := &dto.MarksheetListResponse{Marksheets: make([]dto.MarksheetResponse, 0, len(sheets))}
	for _, m := range sheets {
		resp.Marksheets = append(resp.Marksheets, dto.MarksheetResponse{Marksheet: m, Average: m.Average()})
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	switch {
	case err == nil:
		resp.Student = student
	case apperrors.Is(err, apperrors.ErrResourceNotFound):
		if len(sheets) == 0 {
			return nil, err
		}
	default:
		return nil, err
	}
	return resp, nil
}
