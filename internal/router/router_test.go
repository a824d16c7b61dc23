package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/shelter/internal/config"
	"github.com/deppfellow/shelter/internal/errs"
	"github.com/deppfellow/shelter/internal/handler"
	"github.com/deppfellow/shelter/internal/middleware"
	"github.com/deppfellow/shelter/internal/mongoerr"
	"github.com/deppfellow/shelter/internal/repository"
	"github.com/deppfellow/shelter/internal/server"
)

// stubAnimals answers every read with docs and every write with err.
type stubAnimals struct {
	docs []repository.Document
	err  error
}

func (s stubAnimals) Create(context.Context, repository.Document) (bool, error) {
	return s.err == nil, s.err
}

func (s stubAnimals) Read(context.Context, repository.Query) ([]repository.Document, error) {
	return s.docs, nil
}

func (s stubAnimals) ReadByParams(context.Context, url.Values) ([]repository.Document, error) {
	return s.docs, nil
}

func (s stubAnimals) Update(context.Context, repository.Query, repository.Document) (bool, error) {
	return s.err == nil, s.err
}

func (s stubAnimals) Delete(context.Context, repository.Query) (bool, error) {
	return s.err == nil, s.err
}

func (s stubAnimals) Analytics(context.Context) ([]repository.GroupSummary, error) {
	return []repository.GroupSummary{}, nil
}

func (s stubAnimals) Export(context.Context, repository.Query) ([]byte, error) {
	return json.Marshal(s.docs)
}

func newTestRouter(animals handler.AnimalService) http.Handler {
	return newRouterWithLogger(animals, zerolog.Nop(), 0)
}

func newRouterWithLogger(animals handler.AnimalService, logger zerolog.Logger, rateLimit float64) http.Handler {
	s := &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Server:        config.DefaultServerConfig(),
			Database:      config.DefaultDatabaseConfig(),
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}
	s.Config.Server.RateLimit = rateLimit

	return NewRouter(s, &handler.Handlers{
		Health:  handler.NewHealthHandler(s),
		OpenAPI: handler.NewOpenAPIHandler(s),
		Animal:  handler.NewAnimalHandler(s, animals),
	})
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(newTestRouter(stubAnimals{}), http.MethodGet, "/api/v1/plants")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Route not found", body.Message)
}

func TestListAnimalsRoute(t *testing.T) {
	router := newTestRouter(stubAnimals{docs: []repository.Document{{"name": "Rex"}}})

	rec := serve(router, http.MethodGet, "/api/v1/animals?type=Dog")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name": "Rex"}]`, rec.Body.String())
}

func TestDeleteRouteMapsStoreErrors(t *testing.T) {
	router := newTestRouter(stubAnimals{err: mongoerr.NewNotFoundError("delete", "animals")})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/animals", strings.NewReader(`{"query": {"name": "Ghost"}}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusWithoutDatabase(t *testing.T) {
	rec := serve(newTestRouter(stubAnimals{}), http.MethodGet, "/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSecureHeaders(t *testing.T) {
	rec := serve(newTestRouter(stubAnimals{}), http.MethodGet, "/api/v1/animals/analytics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRateLimitDenialLogsRequestContext(t *testing.T) {
	var logs bytes.Buffer
	router := newRouterWithLogger(stubAnimals{}, zerolog.New(&logs), 1)

	serve(router, http.MethodGet, "/api/v1/animals")
	serve(router, http.MethodGet, "/api/v1/animals")
	rec := serve(router, http.MethodGet, "/api/v1/animals")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var denial map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["message"] == "rate limit exceeded" {
			denial = entry
		}
	}

	require.NotNil(t, denial, "denial was not logged")
	assert.NotEmpty(t, denial["request_id"])
	assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), denial["request_id"])
	assert.Equal(t, "/api/v1/animals", denial["path"])
}
