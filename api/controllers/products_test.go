package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productsvc "github.com/angelmondragon/homeservices-backend/internal/products"
	"github.com/angelmondragon/homeservices-backend/pkg/logger"
)

type stubProductService struct {
	productsvc.Service
	created  *productsvc.CreateProductInput
	batchIDs []uuid.UUID
	filters  productsvc.ListFilters
	getCalls int
}

func (s *stubProductService) Create(_ context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	s.created = &input
	return &productsvc.ProductDTO{ID: uuid.New(), Name: input.Name, SKU: "PRD-001"}, nil
}

func (s *stubProductService) GetMany(_ context.Context, ids []uuid.UUID) ([]productsvc.ProductDTO, error) {
	s.batchIDs = ids
	return []productsvc.ProductDTO{}, nil
}

func (s *stubProductService) Get(_ context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	s.getCalls++
	return &productsvc.ProductDTO{ID: id}, nil
}

func (s *stubProductService) List(_ context.Context, filters productsvc.ListFilters) (*productsvc.ListResult, error) {
	s.filters = filters
	return &productsvc.ListResult{Products: []productsvc.ProductDTO{}}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestCreateProduct(t *testing.T) {
	svc := &stubProductService{}
	body := `{"name":"Deep Cleaning","description":"Full home","type":"service","category":"cleaning","price":"1299.50","maxStock":10,"stock":4,
		"procedure":[{"title":"Inspect","desc":"Walkthrough","img":""}],"faqs":[{"question":"How long?","answer":"Two hours"}]}`
	rec := httptest.NewRecorder()
	CreateProduct(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created == nil || svc.created.Price.String() != "1299.5" || len(svc.created.Procedure) != 1 || len(svc.created.FAQs) != 1 {
		t.Fatalf("payload not forwarded: %+v", svc.created)
	}
}

func TestCreateProductRejectsBadBodies(t *testing.T) {
	cases := map[string]string{
		"missing price":  `{"name":"a","description":"b","type":"c","category":"d","maxStock":1}`,
		"unknown field":  `{"name":"a","description":"b","type":"c","category":"d","price":1,"maxStock":1,"vendor":"x"}`,
		"rating too big": `{"name":"a","description":"b","type":"c","category":"d","price":1,"maxStock":1,"rating":7}`,
	}
	for name, body := range cases {
		svc := &stubProductService{}
		rec := httptest.NewRecorder()
		CreateProduct(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, rec.Code)
		}
		if svc.created != nil {
			t.Fatalf("%s: service should not run", name)
		}
	}
}

func TestBatchProductsParsesIDs(t *testing.T) {
	svc := &stubProductService{}
	a, b := uuid.New(), uuid.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/batch?ids="+a.String()+",%20,"+b.String(), nil)
	BatchProducts(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(svc.batchIDs) != 2 || svc.batchIDs[0] != a || svc.batchIDs[1] != b {
		t.Fatalf("unexpected ids %v", svc.batchIDs)
	}

	rec = httptest.NewRecorder()
	BatchProducts(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/batch?ids=nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestGetProductMalformedIDIsNotFound(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodGet, "/api/products/xyz", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("id", "xyz")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()
	GetProduct(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound || svc.getCalls != 0 {
		t.Fatalf("expected 404 without lookup, got %d", rec.Code)
	}
}

func TestListProductsForwardsFilters(t *testing.T) {
	svc := &stubProductService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products?category=cleaning&status=LOW&search=%20sofa%20&limit=5", nil)
	ListProducts(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.filters.Category != "cleaning" || svc.filters.Status != "low" || svc.filters.Search != "sofa" || svc.filters.Pagination.Limit != 5 {
		t.Fatalf("unexpected filters %+v", svc.filters)
	}
}
