package barcode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lifecycle/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockBarcodeRepository struct {
	entries  map[string]*entities.BarcodeCache
	upserts  int
	writeErr error
}

func newMockBarcodeRepository() *mockBarcodeRepository {
	return &mockBarcodeRepository{entries: map[string]*entities.BarcodeCache{}}
}

func (m *mockBarcodeRepository) GetCached(_ context.Context, code string) (*entities.BarcodeCache, error) {
	e, ok := m.entries[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (m *mockBarcodeRepository) UpsertCache(_ context.Context, e *entities.BarcodeCache) error {
	m.upserts++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.entries[e.Barcode] = e
	return nil
}

// catalogServer serves canned bodies keyed by request path and counts hits.
func catalogServer(t *testing.T, bodies map[string]string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newService(repo BarcodeRepository, baseURL string) BarcodeService {
	return NewBarcodeService(repo, NewCatalogClient(baseURL, 2*time.Second))
}

func TestLookupCacheHitMakesNoRequest(t *testing.T) {
	srv, hits := catalogServer(t, nil)
	repo := newMockBarcodeRepository()
	supplier := "Acme"
	repo.entries["4006381333931"] = &entities.BarcodeCache{Barcode: "4006381333931", Name: "Pencil", Supplier: &supplier}

	res := newService(repo, srv.URL).Lookup(context.Background(), " 4006381333931 ")

	assert.True(t, res.Cached)
	require.NotNil(t, res.Name)
	assert.Equal(t, "Pencil", *res.Name)
	require.NotNil(t, res.Supplier)
	assert.Equal(t, "Acme", *res.Supplier)
	assert.Nil(t, res.Category)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestLookupCachedUnknownName(t *testing.T) {
	srv, hits := catalogServer(t, nil)
	repo := newMockBarcodeRepository()
	repo.entries["111"] = &entities.BarcodeCache{Barcode: "111", Name: ""}

	res := newService(repo, srv.URL).Lookup(context.Background(), "111")

	assert.True(t, res.Cached)
	assert.Nil(t, res.Name)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestLookupMissFetchesAndCaches(t *testing.T) {
	srv, hits := catalogServer(t, map[string]string{
		"/5449000000996.json": `{"status":1,"product":{"product_name":"","product_name_en":"Cola","brand":"Coca-Cola","categories_hierarchy":["en:beverages","en:sodas"]}}`,
	})
	repo := newMockBarcodeRepository()
	svc := newService(repo, srv.URL)

	res := svc.Lookup(context.Background(), "5449000000996")

	assert.False(t, res.Cached)
	require.NotNil(t, res.Name)
	assert.Equal(t, "Cola", *res.Name)
	require.NotNil(t, res.Supplier)
	assert.Equal(t, "Coca-Cola", *res.Supplier)
	require.NotNil(t, res.Category)
	assert.Equal(t, "en:beverages", *res.Category)
	assert.Equal(t, 1, repo.upserts)

	again := svc.Lookup(context.Background(), "5449000000996")
	assert.True(t, again.Cached)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestLookupCategoriesString(t *testing.T) {
	srv, _ := catalogServer(t, map[string]string{
		"/123456.json": `{"status":1,"product":{"product_name":"Yogurt","brands":"Dairyland","categories":"Dairies, Yogurts","categories_hierarchy":["en:dairies"]}}`,
	})
	repo := newMockBarcodeRepository()

	res := newService(repo, srv.URL).Lookup(context.Background(), "123456")

	require.NotNil(t, res.Category)
	assert.Equal(t, "Dairies, Yogurts", *res.Category)
	require.NotNil(t, res.Supplier)
	assert.Equal(t, "Dairyland", *res.Supplier)
}

func TestLookupUnknownProductIsNotCached(t *testing.T) {
	srv, _ := catalogServer(t, map[string]string{
		"/000000.json": `{"status":0,"status_verbose":"product not found"}`,
	})
	repo := newMockBarcodeRepository()

	res := newService(repo, srv.URL).Lookup(context.Background(), "000000")

	assert.Nil(t, res.Name)
	assert.Nil(t, res.Supplier)
	assert.Nil(t, res.Category)
	assert.Equal(t, 0, repo.upserts)
}

func TestLookupCatalogFailureDegrades(t *testing.T) {
	srv, _ := catalogServer(t, map[string]string{
		"/bad.json": `{not json`,
	})
	repo := newMockBarcodeRepository()
	svc := newService(repo, srv.URL)

	res := svc.Lookup(context.Background(), "bad")
	assert.Nil(t, res.Name)

	res = svc.Lookup(context.Background(), "missing")
	assert.Nil(t, res.Name)
	assert.Equal(t, 0, repo.upserts)
}

func TestLookupNamelessProductCachedWithEmptyName(t *testing.T) {
	srv, _ := catalogServer(t, map[string]string{
		"/999.json": `{"status":1,"product":{"brands":"NoName Co"}}`,
	})
	repo := newMockBarcodeRepository()

	res := newService(repo, srv.URL).Lookup(context.Background(), "999")

	assert.Nil(t, res.Name)
	require.Contains(t, repo.entries, "999")
	assert.Equal(t, "", repo.entries["999"].Name)
	require.NotNil(t, repo.entries["999"].Supplier)
	assert.Equal(t, "NoName Co", *repo.entries["999"].Supplier)
}

func TestLookupCacheWriteFailureIgnored(t *testing.T) {
	srv, _ := catalogServer(t, map[string]string{
		"/42.json": `{"status":1,"product":{"product_name":"Tea"}}`,
	})
	repo := newMockBarcodeRepository()
	repo.writeErr = errors.New("connection reset")

	res := newService(repo, srv.URL).Lookup(context.Background(), "42")

	require.NotNil(t, res.Name)
	assert.Equal(t, "Tea", *res.Name)
	assert.Equal(t, 1, repo.upserts)
}

func TestLookupEmptyCode(t *testing.T) {
	srv, hits := catalogServer(t, nil)

	res := newService(newMockBarcodeRepository(), srv.URL).Lookup(context.Background(), "   ")

	assert.Equal(t, "", res.Barcode)
	assert.Nil(t, res.Name)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}
