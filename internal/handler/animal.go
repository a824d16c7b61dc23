package handler

import (
	"context"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/shelter/internal/lib/utils"
	"github.com/deppfellow/shelter/internal/repository"
	"github.com/deppfellow/shelter/internal/server"
	"github.com/deppfellow/shelter/internal/service"
	"github.com/deppfellow/shelter/internal/validation"
)

// AnimalService is what the animal endpoints need from the service layer.
type AnimalService interface {
	Create(ctx context.Context, doc repository.Document) (bool, error)
	Read(ctx context.Context, query repository.Query) ([]repository.Document, error)
	ReadByParams(ctx context.Context, params url.Values) ([]repository.Document, error)
	Update(ctx context.Context, query repository.Query, values repository.Document) (bool, error)
	Delete(ctx context.Context, query repository.Query) (bool, error)
	Analytics(ctx context.Context) ([]repository.GroupSummary, error)
	Export(ctx context.Context, query repository.Query) ([]byte, error)
}

type AnimalHandler struct {
	Handler
	service AnimalService
}

func NewAnimalHandler(s *server.Server, svc AnimalService) *AnimalHandler {
	return &AnimalHandler{
		Handler: NewHandler(s),
		service: svc,
	}
}

// ---------------- Requests and responses -----------------------------------

// CreateAnimalRequest is the animal document itself, not wrapped.
type CreateAnimalRequest struct {
	Document repository.Document `json:"-" validate:"required,min=1"`
}

func NewCreateAnimalRequest() *CreateAnimalRequest { return &CreateAnimalRequest{} }

func (r *CreateAnimalRequest) UnmarshalJSON(data []byte) error {
	return utils.DecodeJSON(data, &r.Document)
}

func (r *CreateAnimalRequest) Validate() error {
	return validation.Struct(r)
}

type CreateAnimalResponse struct {
	Created bool `json:"created"`
}

// ListAnimalsRequest carries no body; the URL parameters are the query.
type ListAnimalsRequest struct{}

func NewListAnimalsRequest() *ListAnimalsRequest { return &ListAnimalsRequest{} }

func (r *ListAnimalsRequest) Validate() error { return nil }

// SearchAnimalsRequest reads with a typed query. An absent query matches
// every animal.
type SearchAnimalsRequest struct {
	Query repository.Query `json:"query"`
}

func NewSearchAnimalsRequest() *SearchAnimalsRequest { return &SearchAnimalsRequest{} }

func (r *SearchAnimalsRequest) UnmarshalJSON(data []byte) error {
	type plain SearchAnimalsRequest
	return utils.DecodeJSON(data, (*plain)(r))
}

func (r *SearchAnimalsRequest) Validate() error { return nil }

type UpdateAnimalRequest struct {
	Query  repository.Query    `json:"query" validate:"required,min=1"`
	Values repository.Document `json:"values" validate:"required,min=1"`
}

func NewUpdateAnimalRequest() *UpdateAnimalRequest { return &UpdateAnimalRequest{} }

func (r *UpdateAnimalRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateAnimalRequest
	return utils.DecodeJSON(data, (*plain)(r))
}

func (r *UpdateAnimalRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateAnimalResponse struct {
	Modified bool `json:"modified"`
}

type DeleteAnimalRequest struct {
	Query repository.Query `json:"query" validate:"required,min=1"`
}

func NewDeleteAnimalRequest() *DeleteAnimalRequest { return &DeleteAnimalRequest{} }

func (r *DeleteAnimalRequest) UnmarshalJSON(data []byte) error {
	type plain DeleteAnimalRequest
	return utils.DecodeJSON(data, (*plain)(r))
}

func (r *DeleteAnimalRequest) Validate() error {
	return validation.Struct(r)
}

type DeleteAnimalResponse struct {
	Deleted bool `json:"deleted"`
}

type AnalyticsRequest struct{}

func NewAnalyticsRequest() *AnalyticsRequest { return &AnalyticsRequest{} }

func (r *AnalyticsRequest) Validate() error { return nil }

// ---------------- Endpoints ------------------------------------------------

func (h *AnimalHandler) CreateAnimal(c echo.Context, req *CreateAnimalRequest) (*CreateAnimalResponse, error) {
	created, err := h.service.Create(c.Request().Context(), req.Document)
	if err != nil {
		return nil, err
	}
	return &CreateAnimalResponse{Created: created}, nil
}

func (h *AnimalHandler) ListAnimals(c echo.Context, _ *ListAnimalsRequest) ([]repository.Document, error) {
	return h.service.ReadByParams(c.Request().Context(), c.QueryParams())
}

func (h *AnimalHandler) SearchAnimals(c echo.Context, req *SearchAnimalsRequest) ([]repository.Document, error) {
	return h.service.Read(c.Request().Context(), req.Query)
}

func (h *AnimalHandler) UpdateAnimal(c echo.Context, req *UpdateAnimalRequest) (*UpdateAnimalResponse, error) {
	modified, err := h.service.Update(c.Request().Context(), req.Query, req.Values)
	if err != nil {
		return nil, err
	}
	return &UpdateAnimalResponse{Modified: modified}, nil
}

func (h *AnimalHandler) DeleteAnimal(c echo.Context, req *DeleteAnimalRequest) (*DeleteAnimalResponse, error) {
	deleted, err := h.service.Delete(c.Request().Context(), req.Query)
	if err != nil {
		return nil, err
	}
	return &DeleteAnimalResponse{Deleted: deleted}, nil
}

func (h *AnimalHandler) Analytics(c echo.Context, _ *AnalyticsRequest) ([]repository.GroupSummary, error) {
	return h.service.Analytics(c.Request().Context())
}

// ExportAnimals returns the animals matching the URL parameters as a JSON
// file download.
func (h *AnimalHandler) ExportAnimals(c echo.Context, _ *ListAnimalsRequest) ([]byte, error) {
	return h.service.Export(c.Request().Context(), service.QueryFromParams(c.QueryParams()))
}
