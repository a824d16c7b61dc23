package mongoerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deppfellow/shelter/internal/errs"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		desc string
		err  error
		code Code
	}{
		{
			desc: "no documents",
			err:  mongo.ErrNoDocuments,
			code: NotFound,
		},
		{
			desc: "duplicate key write exception",
			err: mongo.WriteException{WriteErrors: mongo.WriteErrors{
				{Code: 11000, Message: "E11000 duplicate key error collection: AAC.animals"},
			}},
			code: DuplicateKey,
		},
		{
			desc: "context deadline",
			err:  fmt.Errorf("find: %w", context.DeadlineExceeded),
			code: Timeout,
		},
		{
			desc: "client disconnected",
			err:  mongo.ErrClientDisconnected,
			code: Transport,
		},
		{
			desc: "unknown error",
			err:  errors.New("boom"),
			code: Other,
		},
		{
			desc: "already classified",
			err:  NewValidationError("read", "unsafe query"),
			code: Validation,
		},
	}

	for _, tc := range cases {
		classified := Classify("read", "animals", tc.err)
		require.NotNil(t, classified, tc.desc)
		assert.Equal(t, tc.code, classified.Code, tc.desc)
		assert.Equal(t, "read", classified.Op, tc.desc)
		assert.Equal(t, "animals", classified.Collection, tc.desc)
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify("read", "animals", nil))
}

func TestClassifyDoesNotMutateSentinel(t *testing.T) {
	classified := Classify("delete", "animals", ErrNotFound)
	assert.Equal(t, "delete", classified.Op)
	assert.Empty(t, ErrNotFound.Op)
	assert.Empty(t, ErrNotFound.Collection)
}

func TestErrorsIs(t *testing.T) {
	err := fmt.Errorf("service: %w", NewNotFoundError("update", "animals"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, NotFound, ErrCode(err))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))
}

func TestClassifyKeepsDriverError(t *testing.T) {
	classified := Classify("create", "animals", mongo.ErrClientDisconnected)
	assert.ErrorIs(t, classified, mongo.ErrClientDisconnected)
	assert.Contains(t, classified.Error(), "create: data store unreachable")
}

func TestHandleError(t *testing.T) {
	passthrough := errs.NewNotFoundError("Route not found", false, nil)

	cases := []struct {
		desc   string
		err    error
		status int
		code   string
	}{
		{
			desc:   "validation",
			err:    NewValidationError("create", "Validation failed", errs.FieldError{Field: "age", Error: "is required"}),
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
		{
			desc:   "validation with collection",
			err:    Classify("create", "animals", NewValidationError("", "Validation failed")),
			status: http.StatusBadRequest,
			code:   "ANIMAL_INVALID",
		},
		{
			desc:   "not found",
			err:    NewNotFoundError("delete", "animals"),
			status: http.StatusNotFound,
			code:   "ANIMAL_NOT_FOUND",
		},
		{
			desc:   "duplicate key",
			err:    &Error{Code: DuplicateKey, Collection: "animals"},
			status: http.StatusConflict,
			code:   "ANIMAL_ALREADY_EXISTS",
		},
		{
			desc:   "timeout",
			err:    ErrTimeout,
			status: http.StatusGatewayTimeout,
			code:   "GATEWAY_TIMEOUT",
		},
		{
			desc:   "transport",
			err:    ErrTransport,
			status: http.StatusServiceUnavailable,
			code:   "SERVICE_UNAVAILABLE",
		},
		{
			desc:   "unclassified",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   "INTERNAL_SERVER_ERROR",
		},
		{
			desc:   "http error passes through",
			err:    passthrough,
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
	}

	for _, tc := range cases {
		var httpErr *errs.HTTPError
		require.True(t, errors.As(HandleError(tc.err), &httpErr), tc.desc)
		assert.Equal(t, tc.status, httpErr.Status, tc.desc)
		assert.Equal(t, tc.code, httpErr.Code, tc.desc)
	}
}

func TestHandleErrorKeepsFields(t *testing.T) {
	fields := []errs.FieldError{{Field: "name", Error: "is required"}}
	err := HandleError(NewValidationError("create", "Validation failed", fields...))

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, fields, httpErr.Errors)
	assert.True(t, httpErr.Override)
}
