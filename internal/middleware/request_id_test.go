package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRequestID(t *testing.T, incoming string) (string, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(RequestIDHeader, incoming)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	var seen string
	err := RequestID()(func(c echo.Context) error {
		seen = GetRequestID(c)
		return nil
	})(c)
	require.NoError(t, err)

	return seen, rec.Header().Get(RequestIDHeader)
}

func TestRequestIDGenerated(t *testing.T) {
	seen, header := runRequestID(t, "")

	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, header)
}

func TestRequestIDPropagated(t *testing.T) {
	seen, header := runRequestID(t, "abc-123")

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", header)
}

func TestRequestIDTooLongIsReplaced(t *testing.T) {
	incoming := strings.Repeat("x", maxRequestIDLength+1)
	seen, _ := runRequestID(t, incoming)

	assert.NotEqual(t, incoming, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestGetRequestIDMissing(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, GetRequestID(c))
}
