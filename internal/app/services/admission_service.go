package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/repositories"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/logger"
	"github.com/yigit/sims/internal/pkg/validation"
)

// ApprovalStatus names the result of an approval attempt
type ApprovalStatus string

const (
	OutcomeApproved         ApprovalStatus = "approved"
	OutcomeAlreadyApproved  ApprovalStatus = "already_approved"
	OutcomeUsernameConflict ApprovalStatus = "username_conflict"
	OutcomeApprovalFailed   ApprovalStatus = "approval_failed"
)

// ApprovalOutcome is returned by every Approve call that found the request
type ApprovalOutcome struct {
	Status    ApprovalStatus
	TempID    int
	StudentID int
	Username  string
}

// AdmissionService runs the admission workflow: a request is registered as
// pending and later approved into a student record plus a login.
type AdmissionService struct {
	admissionRepo *repositories.AdmissionRepository
	studentRepo   *repositories.StudentRepository
	loginRepo     *repositories.LoginRepository
	ids           *repositories.IDAllocator
	usernames     *repositories.UsernameRegistry
	hasher        *auth.PasswordHasher
	workflow      *sync.Mutex
	log           zerolog.Logger
}

// NewAdmissionService creates a new admission service instance
func NewAdmissionService(repos *repositories.Repositories, hasher *auth.PasswordHasher, workflow *sync.Mutex) *AdmissionService {
	return &AdmissionService{
		admissionRepo: repos.AdmissionRepository,
		studentRepo:   repos.StudentRepository,
		loginRepo:     repos.LoginRepository,
		ids:           repos.IDAllocator,
		usernames:     repos.UsernameRegistry,
		hasher:        hasher,
		workflow:      workflow,
		log:           logger.Component("admission"),
	}
}

// Register validates an application and stores it as pending. It returns
// the allocated temporary id.
func (s *AdmissionService) Register(ctx context.Context, req *dto.RegisterAdmissionRequest) (int, error) {
	if req == nil {
		return 0, apperrors.NewValidationError("request is required")
	}
	name := strings.TrimSpace(req.Name)
	if err := checkPerson(name, req.Department, req.Semester); err != nil {
		return 0, err
	}
	if !validation.IsValidEmail(req.Email) || !validation.IsStorable(req.Email) {
		return 0, apperrors.NewValidationError("email must contain '@' followed by a '.'")
	}
	if err := checkCredentials(req.Username, req.Password); err != nil {
		return 0, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return 0, fmt.Errorf("error hashing password: %w", err)
	}

	s.workflow.Lock()
	defer s.workflow.Unlock()

	taken, err := s.usernames.IsUsernameTaken(ctx, req.Username)
	if err != nil {
		return 0, err
	}
	if taken {
		s.log.Info().Str("username", req.Username).Msg("Registration rejected, username taken")
		return 0, apperrors.NewCustomError(apperrors.ErrUsernameTaken,
			fmt.Sprintf("username %q is already taken or awaiting approval", req.Username))
	}

	tempID, err := s.ids.NextID(ctx, repositories.AdmissionsTable)
	if err != nil {
		return 0, err
	}

	admission := models.AdmissionRequest{
		TempID:     tempID,
		Name:       name,
		Department: strings.TrimSpace(req.Department),
		Semester:   req.Semester,
		Email:      strings.TrimSpace(req.Email),
		Username:   req.Username,
		Password:   hashed,
		Status:     models.Pending(),
	}
	if err := s.admissionRepo.Create(ctx, admission); err != nil {
		return 0, err
	}

	s.log.Info().Int("tempId", tempID).Str("username", req.Username).Msg("Admission request registered")
	return tempID, nil
}

// Approve promotes a pending request. The student, its login and the
// request's new status are written in that order; when a write fails the
// earlier ones are undone and the request stays pending.
func (s *AdmissionService) Approve(ctx context.Context, tempID int) (ApprovalOutcome, error) {
	outcome := ApprovalOutcome{TempID: tempID}

	s.workflow.Lock()
	defer s.workflow.Unlock()

	req, err := s.admissionRepo.GetByTempID(ctx, tempID)
	if err != nil {
		return outcome, err
	}
	outcome.Username = req.Username

	if req.Status.IsApproved() {
		outcome.Status = OutcomeAlreadyApproved
		outcome.StudentID = req.Status.StudentID()
		s.log.Info().Int("tempId", tempID).Int("studentId", outcome.StudentID).Msg("Admission already approved")
		return outcome, nil
	}

	inLogins, err := s.usernames.ExistsInLogins(ctx, req.Username)
	if err != nil {
		return outcome, err
	}
	if inLogins {
		outcome.Status = OutcomeUsernameConflict
		s.log.Warn().Int("tempId", tempID).Str("username", req.Username).Msg("Approval blocked, username already has a login")
		return outcome, apperrors.NewCustomError(apperrors.ErrUsernameConflict,
			fmt.Sprintf("username %q already has a login; the applicant must choose another", req.Username))
	}

	studentID, err := s.ids.NextID(ctx, repositories.StudentsTable)
	if err != nil {
		return outcome, err
	}

	student := models.Student{
		ID:         studentID,
		Name:       req.Name,
		Department: req.Department,
		Semester:   req.Semester,
	}
	login := models.Login{
		Username:  req.Username,
		Password:  req.Password,
		Role:      models.RoleStudent,
		StudentID: studentID,
	}

	err = runSaga(ctx, s.log, []sagaStep{
		{
			name: "create student",
			do:   func(ctx context.Context) error { return s.studentRepo.Create(ctx, student) },
			undo: func(ctx context.Context) error { return s.studentRepo.Delete(ctx, studentID) },
		},
		{
			name: "create login",
			do:   func(ctx context.Context) error { return s.loginRepo.Create(ctx, login) },
			undo: func(ctx context.Context) error {
				_, err := s.loginRepo.DeleteByUsername(ctx, login.Username)
				return err
			},
		},
		{
			name: "mark approved",
			do:   func(ctx context.Context) error { return s.admissionRepo.MarkApproved(ctx, tempID, studentID) },
		},
	})
	if err != nil {
		outcome.Status = OutcomeApprovalFailed
		var sagaErr *SagaError
		if errors.As(err, &sagaErr) && !sagaErr.RolledBack() {
			s.log.Error().Err(err).Int("tempId", tempID).Int("studentId", studentID).Msg("Approval rollback incomplete")
		}
		return outcome, fmt.Errorf("%w: %w", apperrors.ErrApprovalFailed, err)
	}

	outcome.Status = OutcomeApproved
	outcome.StudentID = studentID
	s.log.Info().Int("tempId", tempID).Int("studentId", studentID).Str("username", req.Username).Msg("Admission approved")
	return outcome, nil
}

// List returns requests filtered by status label; an empty filter returns all
func (s *AdmissionService) List(ctx context.Context, status string) ([]models.AdmissionRequest, error) {
	switch status {
	case "", models.StatusPending, models.StatusApproved:
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status filter %q", status))
	}

	all, err := s.admissionRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}

	filtered := make([]models.AdmissionRequest, 0, len(all))
	for _, a := range all {
		if a.Status.String() == status {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// Get returns one request
func (s *AdmissionService) Get(ctx context.Context, tempID int) (*models.AdmissionRequest, error) {
	return s.admissionRepo.GetByTempID(ctx, tempID)
}
