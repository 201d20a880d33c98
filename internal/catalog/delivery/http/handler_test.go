package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	catalogHttp "github.com/croptivize/catalog/internal/catalog/delivery/http"
	"github.com/croptivize/catalog/internal/catalog/domain"
	"github.com/croptivize/catalog/internal/catalog/repository"
	"github.com/croptivize/catalog/pkg/auth"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) (*mux.Router, *repository.GormProductRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	repo := repository.NewGormProductRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	router := mux.NewRouter()
	handler := catalogHttp.NewProductHandler(repo, nil)
	handler.RegisterRoutes(router)
	return router, repo
}

func seedProducts(t *testing.T, repo *repository.GormProductRepository, n int, category string) {
	t.Helper()
	for i := 0; i < n; i++ {
		p := &domain.Product{
			Name:     fmt.Sprintf("%s item %d", category, i),
			Price:    float64(10 + i),
			Category: category,
			Rating:   4,
		}
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func doRequest(t *testing.T, router *mux.Router, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return rec, env
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.SignToken(&auth.Claims{UserID: 1, Email: "admin@croptivize.dev", Role: "admin"})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func userToken(t *testing.T) string {
	t.Helper()
	token, err := auth.SignToken(&auth.Claims{UserID: 2, Email: "user@croptivize.dev", Role: "user"})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestListProductsEnvelope(t *testing.T) {
	router, repo := newTestServer(t)
	seedProducts(t, repo, 7, domain.CategoryTools)

	req := httptest.NewRequest("GET", "/api/products?limit=5", nil)
	rec, env := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !env.Success {
		t.Fatalf("success = false: %s", env.Error)
	}

	var page domain.PageEnvelope
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Products) != 5 {
		t.Fatalf("products = %d, want 5", len(page.Products))
	}
	if page.Pagination.TotalDocs != 7 || page.Pagination.TotalPages != 2 {
		t.Fatalf("pagination = %+v", page.Pagination)
	}
	if page.Pagination.HasPrevPage || !page.Pagination.HasNextPage {
		t.Fatalf("nav flags = %+v", page.Pagination)
	}
}

func TestListProductsMalformedParamsStillSucceed(t *testing.T) {
	router, repo := newTestServer(t)
	seedProducts(t, repo, 3, domain.CategorySeeds)

	// Garbage values fall back to defaults instead of failing the request.
	req := httptest.NewRequest("GET", "/api/products?page=banana&limit=-5&minPrice=abc&sort=by_vibes&category=Snacks&minRating=99", nil)
	rec, env := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var page domain.PageEnvelope
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Products) != 3 {
		t.Fatalf("products = %d, want 3 (filters should be neutral)", len(page.Products))
	}
	if page.Pagination.Page != 1 || page.Pagination.Limit != domain.DefaultLimit {
		t.Fatalf("pagination = %+v", page.Pagination)
	}
}

func TestListProductsPageBeyondEnd(t *testing.T) {
	router, repo := newTestServer(t)
	seedProducts(t, repo, 3, domain.CategorySeeds)

	req := httptest.NewRequest("GET", "/api/products?page=50", nil)
	rec, env := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var page domain.PageEnvelope
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Products == nil {
		t.Fatal("products must be an empty array, not null")
	}
	if len(page.Products) != 0 {
		t.Fatalf("products = %d, want 0", len(page.Products))
	}
	if page.Pagination.TotalDocs != 3 || page.Pagination.Page != 50 {
		t.Fatalf("pagination = %+v", page.Pagination)
	}
	if !page.Pagination.HasPrevPage || page.Pagination.HasNextPage {
		t.Fatalf("nav flags = %+v", page.Pagination)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/products/999", nil)
	rec, env := doRequest(t, router, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Success {
		t.Fatal("success must be false")
	}
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	router, _ := newTestServer(t)
	body := `{"name":"Hoe","price":12,"category":"Tools"}`

	// No token
	req := httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(body))
	rec, _ := doRequest(t, router, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	// Non-admin token
	req = httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+userToken(t))
	rec, _ = doRequest(t, router, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user token: status = %d, want 403", rec.Code)
	}

	// Admin token
	req = httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec, env := doRequest(t, router, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin token: status = %d, want 201 (%s)", rec.Code, env.Error)
	}

	var created domain.Product
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if created.ID == 0 || created.Name != "Hoe" {
		t.Fatalf("created = %+v", created)
	}
}

func TestCreateProductValidationError(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(`{"name":"","price":-3,"category":"Tools"}`))
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec, env := doRequest(t, router, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Success || env.Error == "" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestUpdateMissingProductReturns404(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest("PUT", "/api/products/404", bytes.NewBufferString(`{"name":"Ghost","price":1,"category":"Tools"}`))
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec, _ := doRequest(t, router, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteProduct(t *testing.T) {
	router, repo := newTestServer(t)
	seedProducts(t, repo, 1, domain.CategoryTools)

	req := httptest.NewRequest("DELETE", "/api/products/1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec, env := doRequest(t, router, req)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("delete: status = %d, envelope = %+v", rec.Code, env)
	}

	req = httptest.NewRequest("GET", "/api/products/1", nil)
	rec, _ = doRequest(t, router, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("after delete: status = %d, want 404", rec.Code)
	}
}

func TestRecordOrderAndListOrders(t *testing.T) {
	router, repo := newTestServer(t)
	seedProducts(t, repo, 1, domain.CategorySeeds)

	req := httptest.NewRequest("POST", "/api/products/1/order", nil)
	rec, env := doRequest(t, router, req)
	if rec.Code != http.StatusCreated || !env.Success {
		t.Fatalf("order: status = %d, envelope = %+v", rec.Code, env)
	}

	req = httptest.NewRequest("GET", "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec, env = doRequest(t, router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list orders: status = %d", rec.Code)
	}
	var orders []domain.Order
	if err := json.Unmarshal(env.Data, &orders); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ProductID != 1 {
		t.Fatalf("orders = %+v", orders)
	}
	if orders[0].Product.Name == "" {
		t.Fatal("order should preload its product")
	}
}

func TestAnalyticsRequiresAdmin(t *testing.T) {
	router, repo := newTestServer(t)
	seedProducts(t, repo, 4, domain.CategoryTools)

	req := httptest.NewRequest("GET", "/api/products/analytics", nil)
	rec, _ := doRequest(t, router, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/products/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec, env := doRequest(t, router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d", rec.Code)
	}
	var analytics domain.CatalogAnalytics
	if err := json.Unmarshal(env.Data, &analytics); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if analytics.TotalProducts != 4 {
		t.Fatalf("analytics = %+v", analytics)
	}
}

func TestInvalidProductIDPath(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/products/not-a-number", nil)
	rec, _ := doRequest(t, router, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
