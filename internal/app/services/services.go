package services

import (
	"sync"

	"github.com/yigit/sims/internal/app/repositories"
	"github.com/yigit/sims/internal/pkg/auth"
)

// Services holds every service of the application. Operations that read one
// table and then write another share one lock so check-then-write sequences
// (username checks, id allocation) cannot interleave.
type Services struct {
	AuthService      *AuthService
	AdmissionService *AdmissionService
	StudentService   *StudentService
	MarksheetService *MarksheetService
}

// Options configures the services
type Options struct {
	// MasterPassword grants admin access when non-empty
	MasterPassword string
	// AdminUsername names the session opened with the master password
	AdminUsername string
}

// NewServices wires the services over one set of repositories
func NewServices(repos *repositories.Repositories, hasher *auth.PasswordHasher, jwt *auth.JWTService, opts Options) *Services {
	workflow := &sync.Mutex{}
	return &Services{
		AuthService:      NewAuthService(repos, hasher, jwt, workflow, opts),
		AdmissionService: NewAdmissionService(repos, hasher, workflow),
		StudentService:   NewStudentService(repos, hasher, workflow),
		MarksheetService: NewMarksheetService(repos, workflow),
	}
}
