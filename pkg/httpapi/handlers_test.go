package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ssargent/betree/pkg/betree"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := betree.NewMemStore()
	tree, err := betree.New(4, 4, store)
	require.NoError(t, err)
	return New(tree, store, nil)
}

func TestHandlePutThenGet(t *testing.T) {
	s := newTestServer(t)

	put := httptest.NewRequest(http.MethodPut, "/v1/keys/hello", strings.NewReader("world"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, put)
	require.Equal(t, http.StatusNoContent, rec.Code)

	get := httptest.NewRequest(http.MethodGet, "/v1/keys/hello", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, get)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "world", rec.Body.String())
}

func TestHandleGetMissingKey(t *testing.T) {
	s := newTestServer(t)

	get := httptest.NewRequest(http.MethodGet, "/v1/keys/missing", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, get)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleScanReturnsAllPairs(t *testing.T) {
	s := newTestServer(t)

	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}} {
		put := httptest.NewRequest(http.MethodPut, "/v1/keys/"+kv[0], strings.NewReader(kv[1]))
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, put)
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	scan := httptest.NewRequest(http.MethodGet, "/v1/scan", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, scan)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a\t1\nb\t2\n", rec.Body.String())
}

func TestMetricsEndpointServes(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
