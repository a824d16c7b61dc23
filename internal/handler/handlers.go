package handler

import (
	"github.com/deppfellow/shelter/internal/server"
	"github.com/deppfellow/shelter/internal/service"
)

// Handlers groups all HTTP handlers so the router takes a single value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Animal  *AnimalHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Animal:  NewAnimalHandler(s, services.Animals),
	}
}
