package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productsvc "github.com/rangershop/backend/internal/products"
	pkgerrors "github.com/rangershop/backend/pkg/errors"
)

type stubProductService struct {
	created *productsvc.ProductDTO
	product *productsvc.ProductDTO
	list    *productsvc.ProductListResult
	err     error

	lastCreate productsvc.CreateProductInput
	lastQuery  productsvc.ListQuery
	deletedID  uuid.UUID
	lastAdjust int
}

func (s *stubProductService) Create(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	s.lastCreate = input
	return s.created, s.err
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.err
}

func (s *stubProductService) List(ctx context.Context, query productsvc.ListQuery) (*productsvc.ProductListResult, error) {
	s.lastQuery = query
	return s.list, s.err
}

func (s *stubProductService) IncrementStock(ctx context.Context, id uuid.UUID, n int) (*productsvc.ProductDTO, error) {
	s.lastAdjust = n
	return s.product, s.err
}

func (s *stubProductService) DecrementStock(ctx context.Context, id uuid.UUID, n int) (*productsvc.ProductDTO, error) {
	s.lastAdjust = -n
	return s.product, s.err
}

func productRouter(svc productsvc.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/products", CreateProduct(svc, nil))
	r.Get("/products", ListProducts(svc, nil))
	r.Get("/products/{productID}", GetProduct(svc, nil))
	r.Patch("/products/{productID}", UpdateProduct(svc, nil))
	r.Delete("/products/{productID}", DeleteProduct(svc, nil))
	r.Post("/products/{productID}/increment", IncrementProductStock(svc, nil))
	r.Post("/products/{productID}/decrement", DecrementProductStock(svc, nil))
	return r
}

func TestCreateProductSuccess(t *testing.T) {
	svc := &stubProductService{created: &productsvc.ProductDTO{
		ID:    uuid.New(),
		Name:  "Alpha Blaster",
		Price: "19.99",
	}}
	router := productRouter(svc)

	body := `{"name":"Alpha Blaster","price":"19.99","quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastCreate.Name != "Alpha Blaster" {
		t.Fatalf("unexpected name passed to service: %q", svc.lastCreate.Name)
	}
	if svc.lastCreate.Price.StringFixed(2) != "19.99" {
		t.Fatalf("unexpected price passed to service: %s", svc.lastCreate.Price)
	}

	var envelope struct {
		Data productsvc.ProductDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Price != "19.99" {
		t.Fatalf("expected price 19.99 got %q", envelope.Data.Price)
	}
}

func TestCreateProductRejectsBadPrice(t *testing.T) {
	router := productRouter(&stubProductService{})

	body := `{"name":"Alpha Blaster","price":"nineteen","quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetProductRejectsInvalidID(t *testing.T) {
	router := productRouter(&stubProductService{})

	req := httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router := productRouter(&stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")})

	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestListProductsPassesQuery(t *testing.T) {
	svc := &stubProductService{list: &productsvc.ProductListResult{
		Products: []productsvc.ProductView{{Name: "Alpha Blaster", Price: "19.99"}},
	}}
	router := productRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/products?limit=10&search=alpha", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastQuery.Pagination.Limit != 10 {
		t.Fatalf("expected limit 10 got %d", svc.lastQuery.Pagination.Limit)
	}
	if svc.lastQuery.Search != "alpha" {
		t.Fatalf("expected search alpha got %q", svc.lastQuery.Search)
	}
}

func TestDeleteProduct(t *testing.T) {
	svc := &stubProductService{}
	router := productRouter(svc)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/products/"+id.String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.deletedID != id {
		t.Fatalf("expected delete for %s got %s", id, svc.deletedID)
	}
}

func TestIncrementProductStock(t *testing.T) {
	svc := &stubProductService{product: &productsvc.ProductDTO{ID: uuid.New(), Quantity: 8}}
	router := productRouter(svc)

	body := `{"quantity":3}`
	req := httptest.NewRequest(http.MethodPost, "/products/"+uuid.NewString()+"/increment", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastAdjust != 3 {
		t.Fatalf("expected increment of 3 got %d", svc.lastAdjust)
	}
}

func TestDecrementProductStockInsufficient(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")}
	router := productRouter(svc)

	body := `{"quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/products/"+uuid.NewString()+"/decrement", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestAdjustStockRejectsZeroQuantity(t *testing.T) {
	router := productRouter(&stubProductService{})

	body := `{"quantity":0}`
	req := httptest.NewRequest(http.MethodPost, "/products/"+uuid.NewString()+"/decrement", bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
