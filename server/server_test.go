package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogally/allychat/internal/profile"
	"github.com/rogally/allychat/store"
)

type fakeDriver struct {
	pingErr error
}

func (d *fakeDriver) VectorSearchPassages(_ context.Context, _ *store.FindSimilarPassages) ([]*store.RetrievedPassage, error) {
	return nil, nil
}

func (d *fakeDriver) VectorSearchPassagesCast(_ context.Context, _ *store.FindSimilarPassages) ([]*store.RetrievedPassage, error) {
	return nil, nil
}

func (d *fakeDriver) TextSearchPassages(_ context.Context, _ *store.FindPassagesByText) ([]*store.RetrievedPassage, error) {
	return nil, nil
}

func (d *fakeDriver) Ping(_ context.Context) error { return d.pingErr }

func (d *fakeDriver) Close() error { return nil }

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func TestErrorHandlerHTTPError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	errorHandler(echo.NewHTTPError(http.StatusInternalServerError, "Search failed: boom"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Search failed: boom", decodeDetail(t, rec))
}

func TestErrorHandlerPlainError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	errorHandler(errors.New("unexpected"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "unexpected", decodeDetail(t, rec))
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantCode int
	}{
		{
			name:     "database reachable",
			wantCode: http.StatusOK,
		},
		{
			name:     "database unreachable",
			pingErr:  errors.New("connection refused"),
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &profile.Profile{Mode: "dev"}
			s := &Server{
				Profile: p,
				Store:   store.New(&fakeDriver{pingErr: tt.pingErr}, p),
			}

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := s.healthz(c)
			if tt.wantCode == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}

			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}
