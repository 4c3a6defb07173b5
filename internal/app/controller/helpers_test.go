package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type testServer struct {
	router *gin.Engine
	store  *repository.Store
}

func setupControllerTest(t *testing.T, opts ...service.OrderServiceOption) *testServer {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store := repository.NewStore(testDB)
	products := NewProductController(service.NewProductService(store))
	reviews := NewReviewController(service.NewReviewService(store))
	orders := NewOrderController(service.NewOrderService(store, opts...))
	reports := NewReportController(service.NewReportService(store))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())

	router.POST("/products", products.CreateProduct)
	router.GET("/products", products.GetAllProducts)
	router.GET("/products/:id", products.GetProductByID)
	router.PATCH("/products/:id", products.UpdateProduct)
	router.DELETE("/products/:id", products.DeleteProduct)
	router.GET("/products/:id/reviews", reviews.GetProductReviews)
	router.POST("/products/:id/reviews", reviews.CreateReview)
	router.POST("/reviews", reviews.CreateReview)
	router.GET("/reviews/:id", reviews.GetReview)
	router.DELETE("/reviews/:id", reviews.DeleteReview)
	router.POST("/orders", orders.CreateOrder)
	router.GET("/orders", orders.GetOrders)
	router.GET("/orders/:id", orders.GetOrderByID)
	router.DELETE("/orders/:id", orders.CancelOrder)
	router.GET("/reports/orders.xlsx", reports.DownloadOrdersReport)

	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *testServer) createProduct(t *testing.T, body string) uint {
	t.Helper()
	w := s.do(t, http.MethodPost, "/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode(t, w)["product"].(map[string]interface{})
	return uint(product["id"].(float64))
}

type mapIdempotency struct {
	mu   sync.Mutex
	keys map[string]uint
}

func (m *mapIdempotency) Reserve(ctx context.Context, key string) (uint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.keys[key]; ok {
		return id, false, nil
	}
	m.keys[key] = 0
	return 0, true, nil
}

func (m *mapIdempotency) Complete(ctx context.Context, key string, orderID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = orderID
	return nil
}

func (m *mapIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
