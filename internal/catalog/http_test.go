package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"WonderFarm/pkg/kit"
)

func newTestServer(t *testing.T, products []Product) *httptest.Server {
	t.Helper()

	s := &Server{Store: NewMemStore(products, Latency{}), Log: zap.NewNop()}
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_Products(t *testing.T) {
	ts := newTestServer(t, DefaultProducts())

	var list []Product
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/products", &list))
	assert.Len(t, list, len(DefaultProducts()))

	var p Product
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/products/3", &p))
	assert.Equal(t, "Granero rojo clásico", p.Title)

	var e kit.ErrorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/products/999", &e))
	assert.Contains(t, e.Error, "not found")
}

func TestServer_CategoryAndSearch(t *testing.T) {
	ts := newTestServer(t, []Product{
		{ID: "1", Title: "Farol", Price: 5, Category: CategoryDecoracion},
	})

	var e kit.ErrorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/categories/silo", &e))
	assert.Contains(t, e.Error, "no products for category")

	var list []Product
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/categories/Decoracion", &list))
	assert.Len(t, list, 1)

	var found []Product
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/search?q=nothing", &found))
	assert.NotNil(t, found)
	assert.Empty(t, found)

	var cats []string
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/categories", &cats))
	assert.Equal(t, []string{CategoryDecoracion}, cats)
}
