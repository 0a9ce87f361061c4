package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/repositories"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/logger"
)

// AuthService checks credentials against the logins table and issues tokens
type AuthService struct {
	loginRepo   *repositories.LoginRepository
	studentRepo *repositories.StudentRepository
	usernames   *repositories.UsernameRegistry
	hasher      *auth.PasswordHasher
	jwt         *auth.JWTService
	workflow    *sync.Mutex
	opts        Options
	log         zerolog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(repos *repositories.Repositories, hasher *auth.PasswordHasher, jwt *auth.JWTService, workflow *sync.Mutex, opts Options) *AuthService {
	if opts.AdminUsername == "" {
		opts.AdminUsername = "admin"
	}
	return &AuthService{
		loginRepo:   repos.LoginRepository,
		studentRepo: repos.StudentRepository,
		usernames:   repos.UsernameRegistry,
		hasher:      hasher,
		jwt:         jwt,
		workflow:    workflow,
		opts:        opts,
		log:         logger.Component("auth"),
	}
}

func invalidCredentials() error {
	return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid username or password")
}

// Login returns the session of the first login whose username and password
// match. Unknown users and wrong passwords fail the same way. A student login
// must point at an existing student record.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.Session, error) {
	login, ok, err := s.loginRepo.Authenticate(ctx, username, func(stored string) bool {
		return s.hasher.Check(stored, password)
	})
	if err != nil {
		return models.Session{}, err
	}
	if !ok {
		s.log.Info().Str("username", username).Msg("Login failed")
		return models.Session{}, invalidCredentials()
	}

	session := models.Session{Username: login.Username, Role: login.Role}
	switch login.Role {
	case models.RoleStudent:
		if !login.Linked() {
			return models.Session{}, apperrors.NewCustomError(apperrors.ErrAccountNotLinked,
				"this login is not linked to a student record")
		}
		exists, err := s.studentRepo.Exists(ctx, login.StudentID)
		if err != nil {
			return models.Session{}, err
		}
		if !exists {
			return models.Session{}, apperrors.NewCustomError(apperrors.ErrAccountNotLinked,
				fmt.Sprintf("student record %d for this login no longer exists", login.StudentID))
		}
		session.StudentID = login.StudentID
	case models.RoleAdmin:
	default:
		s.log.Warn().Str("username", username).Str("role", string(login.Role)).Msg("Login row has an unknown role")
		return models.Session{}, invalidCredentials()
	}

	s.log.Info().Str("username", username).Str("role", string(session.Role)).Msg("Login succeeded")
	return session, nil
}

// AdminLogin accepts the configured master password or an admin login row
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (models.Session, error) {
	if s.opts.MasterPassword != "" &&
		subtle.ConstantTimeCompare([]byte(password), []byte(s.opts.MasterPassword)) == 1 {
		name := username
		if name == "" {
			name = s.opts.AdminUsername
		}
		s.log.Info().Str("username", name).Msg("Admin login with master password")
		return models.Session{Username: name, Role: models.RoleAdmin}, nil
	}

	session, err := s.Login(ctx, username, password)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAccountNotLinked) {
			return models.Session{}, invalidCredentials()
		}
		return models.Session{}, err
	}
	if session.Role != models.RoleAdmin {
		return models.Session{}, invalidCredentials()
	}
	return session, nil
}

// PendingHint reports whether username belongs to an admission that is still
// pending. It only explains a failed login and never grants access.
func (s *AuthService) PendingHint(ctx context.Context, username string) (bool, error) {
	return s.usernames.PendingAdmission(ctx, username)
}

// IssueToken signs an access token for session
func (s *AuthService) IssueToken(session models.Session) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwt.GenerateAccessToken(session)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		Session: session,
	}, nil
}

// ProvisionLogin creates a student login for an existing student. The
// username must be free in logins and in every admission request.
func (s *AuthService) ProvisionLogin(ctx context.Context, req *dto.ProvisionLoginRequest) error {
	if req == nil {
		return apperrors.NewValidationError("request is required")
	}
	if err := checkCredentials(req.Username, req.Password); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	s.workflow.Lock()
	defer s.workflow.Unlock()

	if _, err := s.studentRepo.GetByID(ctx, req.StudentID); err != nil {
		return err
	}
	taken, err := s.usernames.IsUsernameTaken(ctx, req.Username)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.NewCustomError(apperrors.ErrUsernameTaken,
			fmt.Sprintf("username %q is already taken or awaiting approval", req.Username))
	}

	if err := s.loginRepo.Create(ctx, models.Login{
		Username:  req.Username,
		Password:  hashed,
		Role:      models.RoleStudent,
		StudentID: req.StudentID,
	}); err != nil {
		return err
	}

	s.log.Info().Str("username", req.Username).Int("studentId", req.StudentID).Msg("Login provisioned")
	return nil
}

// EnsureAdmin creates an admin login when no admin exists. It reports
// whether a row was written.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if err := checkCredentials(username, password); err != nil {
		return false, err
	}

	s.workflow.Lock()
	defer s.workflow.Unlock()

	exists, err := s.loginRepo.HasRole(ctx, models.RoleAdmin)
	if err != nil || exists {
		return false, err
	}
	return true, s.createAdmin(ctx, username, password)
}

// CreateAdmin adds an admin login, failing when the username is reserved
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) error {
	if err := checkCredentials(username, password); err != nil {
		return err
	}

	s.workflow.Lock()
	defer s.workflow.Unlock()

	return s.createAdmin(ctx, username, password)
}

func (s *AuthService) createAdmin(ctx context.Context, username, password string) error {
	taken, err := s.usernames.IsUsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.NewCustomError(apperrors.ErrUsernameTaken,
			fmt.Sprintf("username %q is already taken", username))
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.loginRepo.Create(ctx, models.Login{Username: username, Password: hashed, Role: models.RoleAdmin}); err != nil {
		return err
	}

	s.log.Info().Str("username", username).Msg("Admin login created")
	return nil
}
