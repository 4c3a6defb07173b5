package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
)

func setupServiceTest(t *testing.T) (*gorm.DB, *repository.Store) {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB, repository.NewStore(testDB)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func seedProduct(t *testing.T, products ProductService, name, unitPrice string, stock int) *model.Product {
	t.Helper()
	product, err := products.CreateProduct(context.Background(), model.ProductInput{
		Name:          name,
		Price:         money(unitPrice),
		StockQuantity: intPtr(stock),
	})
	require.NoError(t, err)
	return product
}

func stockOf(t *testing.T, store *repository.Store, id uint) int {
	t.Helper()
	product, err := store.Products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return product.StockQuantity
}

// memoryIdempotency keeps keys in a map. Pending keys map to 0.
type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]uint
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: make(map[string]uint)}
}

func (m *memoryIdempotency) Reserve(ctx context.Context, key string) (uint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.keys[key]; ok {
		return id, false, nil
	}
	m.keys[key] = 0
	return 0, true, nil
}

func (m *memoryIdempotency) Complete(ctx context.Context, key string, orderID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = orderID
	return nil
}

func (m *memoryIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event, ok := payload.(OrderEvent); ok {
		p.events = append(p.events, event)
	}
}

func (p *recordingPublisher) Events() []OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]OrderEvent(nil), p.events...)
}
