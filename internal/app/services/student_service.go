package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/repositories"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/logger"
)

// StudentService manages student records and their cascade delete
type StudentService struct {
	studentRepo   *repositories.StudentRepository
	loginRepo     *repositories.LoginRepository
	marksheetRepo *repositories.MarksheetRepository
	ids           *repositories.IDAllocator
	usernames     *repositories.UsernameRegistry
	hasher        *auth.PasswordHasher
	workflow      *sync.Mutex
	log           zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(repos *repositories.Repositories, hasher *auth.PasswordHasher, workflow *sync.Mutex) *StudentService {
	return &StudentService{
		studentRepo:   repos.StudentRepository,
		loginRepo:     repos.LoginRepository,
		marksheetRepo: repos.MarksheetRepository,
		ids:           repos.IDAllocator,
		usernames:     repos.UsernameRegistry,
		hasher:        hasher,
		workflow:      workflow,
		log:           logger.Component("student"),
	}
}

// roundCGPA keeps two decimals, the precision the table stores
func roundCGPA(v float64) float64 {
	return math.Round(v*100) / 100
}

// Create adds a student with a freshly allocated id. When login credentials
// are supplied the login is written too, and a failure there removes the
// student again.
func (s *StudentService) Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.CreateStudentResponse, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("request is required")
	}
	student := models.Student{
		Name:       strings.TrimSpace(req.Name),
		Department: strings.TrimSpace(req.Department),
		Semester:   req.Semester,
		CGPA:       roundCGPA(req.CGPA),
	}
	if err := checkPerson(student.Name, student.Department, student.Semester); err != nil {
		return nil, err
	}
	if err := checkCGPA(student.CGPA); err != nil {
		return nil, err
	}

	var login *models.Login
	if req.Login != nil {
		if err := checkCredentials(req.Login.Username, req.Login.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(req.Login.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		login = &models.Login{Username: req.Login.Username, Password: hashed, Role: models.RoleStudent}
	}

	s.workflow.Lock()
	defer s.workflow.Unlock()

	if login != nil {
		taken, err := s.usernames.IsUsernameTaken(ctx, login.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewCustomError(apperrors.ErrUsernameTaken,
				fmt.Sprintf("username %q is already taken or awaiting approval", login.Username))
		}
	}

	id, err := s.ids.NextID(ctx, repositories.StudentsTable)
	if err != nil {
		return nil, err
	}
	student.ID = id

	steps := []sagaStep{{
		name: "create student",
		do:   func(ctx context.Context) error { return s.studentRepo.Create(ctx, student) },
		undo: func(ctx context.Context) error { return s.studentRepo.Delete(ctx, id) },
	}}
	if login != nil {
		login.StudentID = id
		steps = append(steps, sagaStep{
			name: "create login",
			do:   func(ctx context.Context) error { return s.loginRepo.Create(ctx, *login) },
		})
	}

	if err := runSaga(ctx, s.log, steps); err != nil {
		return nil, fmt.Errorf("error creating student: %w", err)
	}

	resp := &dto.CreateStudentResponse{Student: student}
	if login != nil {
		resp.Username = login.Username
	}
	s.log.Info().Int("studentId", id).Bool("withLogin", login != nil).Msg("Student created")
	return resp, nil
}

// Get returns one student
func (s *StudentService) Get(ctx context.Context, id int) (*models.Student, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("student id must be positive")
	}
	return s.studentRepo.GetByID(ctx, id)
}

// List returns every student in table order
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.studentRepo.List(ctx)
}

// Update replaces the editable fields of a student
func (s *StudentService) Update(ctx context.Context, id int, req *dto.UpdateStudentRequest) (*models.Student, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("request is required")
	}
	student := models.Student{
		ID:         id,
		Name:       strings.TrimSpace(req.Name),
		Department: strings.TrimSpace(req.Department),
		Semester:   req.Semester,
		CGPA:       roundCGPA(req.CGPA),
	}
	if err := checkPerson(student.Name, student.Department, student.Semester); err != nil {
		return nil, err
	}
	if err := checkCGPA(student.CGPA); err != nil {
		return nil, err
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	s.log.Info().Int("studentId", id).Msg("Student updated")
	return &student, nil
}

// UpdateSelf lets a student edit their own record. The CGPA is kept.
func (s *StudentService) UpdateSelf(ctx context.Context, id int, req *dto.UpdateSelfRequest) (*models.Student, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("request is required")
	}

	s.workflow.Lock()
	defer s.workflow.Unlock()

	current, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = strings.TrimSpace(req.Name)
	updated.Department = strings.TrimSpace(req.Department)
	updated.Semester = req.Semester
	if err := checkPerson(updated.Name, updated.Department, updated.Semester); err != nil {
		return nil, err
	}

	if err := s.studentRepo.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.log.Info().Int("studentId", id).Msg("Student updated own record")
	return &updated, nil
}

// Delete removes a student and then, independently, its marksheets and
// logins. When a dependent table cannot be cleaned the student stays deleted
// and the error wraps ErrPartialCascadeFailure.
func (s *StudentService) Delete(ctx context.Context, id int) (*dto.DeleteStudentResponse, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("student id must be positive")
	}

	s.workflow.Lock()
	defer s.workflow.Unlock()

	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	resp := &dto.DeleteStudentResponse{StudentID: id}
	var errs []error

	n, err := s.marksheetRepo.DeleteByStudentID(ctx, id)
	resp.MarksheetsRemoved = n
	if err != nil {
		errs = append(errs, err)
	}

	n, err = s.loginRepo.DeleteByStudentID(ctx, id)
	resp.LoginsRemoved = n
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		s.log.Error().Err(errors.Join(errs...)).Int("studentId", id).Msg("Cascade delete incomplete")
		return resp, apperrors.NewCustomError(
			fmt.Errorf("%w: %w", apperrors.ErrPartialCascadeFailure, errors.Join(errs...)),
			fmt.Sprintf("student %d deleted but dependent records could not all be removed", id),
		).WithDetails(map[string]interface{}{
			"studentId":         id,
			"marksheetsRemoved": resp.MarksheetsRemoved,
			"loginsRemoved":     resp.LoginsRemoved,
		})
	}

	s.log.Info().
		Int("studentId", id).
		Int("marksheetsRemoved", resp.MarksheetsRemoved).
		Int("loginsRemoved", resp.LoginsRemoved).
		Msg("Student deleted")
	return resp, nil
}
