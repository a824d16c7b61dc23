package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/shelter/internal/mongoerr"
	"github.com/deppfellow/shelter/internal/repository"
	"github.com/deppfellow/shelter/internal/server"
)

type storeMock struct {
	mock.Mock
}

func (m *storeMock) Create(ctx context.Context, doc repository.Document) (bool, error) {
	args := m.Called(ctx, doc)
	return args.Bool(0), args.Error(1)
}

func (m *storeMock) Read(ctx context.Context, query repository.Query) ([]repository.Document, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]repository.Document), args.Error(1)
}

func (m *storeMock) Update(ctx context.Context, query repository.Query, values repository.Document) (bool, error) {
	args := m.Called(ctx, query, values)
	return args.Bool(0), args.Error(1)
}

func (m *storeMock) Delete(ctx context.Context, query repository.Query) (bool, error) {
	args := m.Called(ctx, query)
	return args.Bool(0), args.Error(1)
}

func (m *storeMock) Analytics(ctx context.Context) ([]repository.GroupSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.GroupSummary), args.Error(1)
}

func newTestService(t *testing.T) (*AnimalService, *storeMock, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	store := &storeMock{}
	t.Cleanup(func() { store.AssertExpectations(t) })

	return NewAnimalService(&server.Server{Logger: &logger}, store), store, &buf
}

func TestCreate(t *testing.T) {
	svc, store, logs := newTestService(t)
	ctx := context.Background()
	doc := repository.Document{"name": "Rex", "type": "Dog", "age": 2}

	store.On("Create", ctx, doc).Return(true, nil).Once()

	created, err := svc.Create(ctx, doc)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, logs.String(), "animal created")
}

func TestCreatePassesStoreErrors(t *testing.T) {
	svc, store, logs := newTestService(t)
	ctx := context.Background()
	doc := repository.Document{"name": "Rex"}

	store.On("Create", ctx, doc).Return(false, mongoerr.NewValidationError("create", "Validation failed")).Once()

	created, err := svc.Create(ctx, doc)
	assert.False(t, created)
	assert.ErrorIs(t, err, mongoerr.ErrValidation)
	assert.NotContains(t, logs.String(), "animal created")
}

func TestReadByParams(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	params := url.Values{"type": {"Dog", "Cat"}, "name": {"Rex"}}
	docs := []repository.Document{{"name": "Rex", "type": "Dog"}}

	store.On("Read", ctx, repository.Query{"type": "Dog", "name": "Rex"}).Return(docs, nil).Once()

	got, err := svc.ReadByParams(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, docs, got)
}

func TestQueryFromParams(t *testing.T) {
	assert.Equal(t, repository.Query{}, QueryFromParams(nil))
	assert.Equal(t, repository.Query{"age": "3"}, QueryFromParams(url.Values{"age": {"3"}, "empty": {}}))
}

func TestUpdateAndDelete(t *testing.T) {
	svc, store, logs := newTestService(t)
	ctx := context.Background()
	query := repository.Query{"name": "Rex"}
	values := repository.Document{"age": 5}

	store.On("Update", ctx, query, values).Return(true, nil).Once()
	store.On("Delete", ctx, query).Return(false, mongoerr.NewNotFoundError("delete", "animals")).Once()

	modified, err := svc.Update(ctx, query, values)
	require.NoError(t, err)
	assert.True(t, modified)
	assert.Contains(t, logs.String(), `"fields":["age"]`)

	deleted, err := svc.Delete(ctx, query)
	assert.False(t, deleted)
	assert.ErrorIs(t, err, mongoerr.ErrNotFound)
}

func TestAnalytics(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	groups := []repository.GroupSummary{{Type: "Dog", Count: 2, AverageAge: 3, Outcomes: []any{"Adoption"}}}

	store.On("Analytics", ctx).Return(groups, nil).Once()

	got, err := svc.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, groups, got)
}

func TestExport(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	docs := []repository.Document{{"name": "Rex", "type": "Dog", "age": 2}}

	store.On("Read", ctx, repository.Query(nil)).Return(docs, nil).Once()

	data, err := svc.Export(ctx, nil)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Rex", decoded[0]["name"])
}

func TestLoggerPrefersContextLogger(t *testing.T) {
	svc, store, serverLogs := newTestService(t)

	var reqBuf bytes.Buffer
	reqLogger := zerolog.New(&reqBuf)
	ctx := reqLogger.WithContext(context.Background())
	doc := repository.Document{"name": "Rex", "type": "Dog", "age": 2}

	store.On("Create", ctx, doc).Return(true, nil).Once()

	_, err := svc.Create(ctx, doc)
	require.NoError(t, err)
	assert.Contains(t, reqBuf.String(), "animal created")
	assert.Empty(t, serverLogs.String())
}
