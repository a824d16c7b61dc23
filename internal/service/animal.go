package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/deppfellow/shelter/internal/repository"
	"github.com/deppfellow/shelter/internal/server"
)

// AnimalStore is the data access object the service runs on.
// *repository.AnimalRepository implements it.
type AnimalStore interface {
	Create(ctx context.Context, doc repository.Document) (bool, error)
	Read(ctx context.Context, query repository.Query) ([]repository.Document, error)
	Update(ctx context.Context, query repository.Query, values repository.Document) (bool, error)
	Delete(ctx context.Context, query repository.Query) (bool, error)
	Analytics(ctx context.Context) ([]repository.GroupSummary, error)
}

// AnimalService exposes the animal store to handlers and the CLI. It adds
// request-scoped logging and New Relic attributes; all validation happens in
// the store.
type AnimalService struct {
	server *server.Server
	store  AnimalStore
}

func NewAnimalService(s *server.Server, store AnimalStore) *AnimalService {
	return &AnimalService{
		server: s,
		store:  store,
	}
}

func (s *AnimalService) Create(ctx context.Context, doc repository.Document) (bool, error) {
	created, err := s.store.Create(ctx, doc)
	if err != nil {
		return false, err
	}

	s.logger(ctx).Info().
		Interface("name", doc[repository.FieldName]).
		Interface("type", doc[repository.FieldType]).
		Bool("created", created).
		Msg("animal created")

	return created, nil
}

func (s *AnimalService) Read(ctx context.Context, query repository.Query) ([]repository.Document, error) {
	docs, err := s.store.Read(ctx, query)
	if err != nil {
		return docs, err
	}

	addAttribute(ctx, "animals.result_count", len(docs))
	s.logger(ctx).Debug().
		Int("count", len(docs)).
		Msg("animals read")

	return docs, nil
}

// ReadByParams reads with a query built from URL parameters. Each parameter
// becomes a string equality match on its first value.
func (s *AnimalService) ReadByParams(ctx context.Context, params url.Values) ([]repository.Document, error) {
	return s.Read(ctx, QueryFromParams(params))
}

func (s *AnimalService) Update(ctx context.Context, query repository.Query, values repository.Document) (bool, error) {
	modified, err := s.store.Update(ctx, query, values)
	if err != nil {
		return false, err
	}

	addAttribute(ctx, "animals.modified", modified)
	s.logger(ctx).Info().
		Strs("fields", sortedKeys(values)).
		Bool("modified", modified).
		Msg("animal updated")

	return modified, nil
}

func (s *AnimalService) Delete(ctx context.Context, query repository.Query) (bool, error) {
	deleted, err := s.store.Delete(ctx, query)
	if err != nil {
		return false, err
	}

	s.logger(ctx).Info().
		Strs("query_fields", sortedKeys(query)).
		Msg("animal deleted")

	return deleted, nil
}

func (s *AnimalService) Analytics(ctx context.Context) ([]repository.GroupSummary, error) {
	groups, err := s.store.Analytics(ctx)
	if err != nil {
		return groups, err
	}

	addAttribute(ctx, "animals.group_count", len(groups))
	return groups, nil
}

// Export returns every document matching query as an indented JSON array.
func (s *AnimalService) Export(ctx context.Context, query repository.Query) ([]byte, error) {
	docs, err := s.Read(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	return data, nil
}

// QueryFromParams turns URL parameters into an equality query.
func QueryFromParams(params url.Values) repository.Query {
	query := repository.Query{}
	for key, values := range params {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}
	return query
}

// logger prefers the request logger stored in ctx by the HTTP middleware.
func (s *AnimalService) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	if s.server != nil && s.server.Logger != nil {
		return s.server.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

func addAttribute(ctx context.Context, key string, value any) {
	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.AddAttribute(key, value)
	}
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
