package service

import (
	"github.com/deppfellow/shelter/internal/repository"
	"github.com/deppfellow/shelter/internal/server"
)

// Services groups every service the handlers and the CLI call into.
type Services struct {
	Animals *AnimalService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Animals: NewAnimalService(s, repos.Animals),
	}
}
