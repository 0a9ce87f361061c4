package repositories

import (
	"github.com/yigit/sims/internal/recordstore"
)

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository   *StudentRepository
	LoginRepository     *LoginRepository
	AdmissionRepository *AdmissionRepository
	MarksheetRepository *MarksheetRepository
	IDAllocator         *IDAllocator
	UsernameRegistry    *UsernameRegistry
}

// NewRepositories initializes all repositories over one store
func NewRepositories(store recordstore.Store) *Repositories {
	return &Repositories{
		StudentRepository:   NewStudentRepository(store),
		LoginRepository:     NewLoginRepository(store),
		AdmissionRepository: NewAdmissionRepository(store),
		MarksheetRepository: NewMarksheetRepository(store),
		IDAllocator:         NewIDAllocator(store),
		UsernameRegistry:    NewUsernameRegistry(store),
	}
}
