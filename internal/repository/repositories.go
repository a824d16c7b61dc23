package repository

import (
	"github.com/deppfellow/shelter/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Animals *AnimalRepository
}

// NewRepositories builds every repository from the shared database handle
// and logger on s.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Animals: NewAnimalRepository(s.DB.Collection(), s.Logger),
	}
}
