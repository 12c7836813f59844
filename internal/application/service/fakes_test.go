package service

import (
	"context"
	"sync"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/repository"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"github.com/shopspring/decimal"
)

func catalogItem(id string, price int64, available, inSession bool) entity.CatalogItem {
	return entity.CatalogItem{
		ID:                  entity.ID(id),
		Name:                "Item " + id,
		Price:               decimal.NewFromInt(price),
		IsAvailable:         available,
		SelectableInSession: inSession,
	}
}

type fakeCatalog struct {
	mu          sync.Mutex
	categories  []entity.Category
	items       map[entity.ID][]entity.CatalogItem
	categoryErr error
	itemErr     error
	// block holds ListItems for a category until the channel is closed
	block         map[entity.ID]chan struct{}
	categoryCalls int
	itemCalls     []entity.ID
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: []entity.Category{{ID: "1", Name: "Hot drinks"}, {ID: "2", Name: "Cold drinks"}},
		items: map[entity.ID][]entity.CatalogItem{
			"1": {catalogItem("10", 20, true, true), catalogItem("11", 15, true, false), catalogItem("12", 30, false, true)},
			"2": {catalogItem("20", 12, true, true)},
		},
		block: map[entity.ID]chan struct{}{},
	}
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryCalls++
	if f.categoryErr != nil {
		return nil, f.categoryErr
	}
	return append([]entity.Category(nil), f.categories...), nil
}

func (f *fakeCatalog) ListItems(ctx context.Context, categoryID entity.ID) ([]entity.CatalogItem, error) {
	f.mu.Lock()
	f.itemCalls = append(f.itemCalls, categoryID)
	wait := f.block[categoryID]
	f.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return append([]entity.CatalogItem(nil), f.items[categoryID]...), nil
}

func (f *fakeCatalog) setPrice(categoryID, itemID entity.ID, price int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items[categoryID] {
		if it.ID == itemID {
			f.items[categoryID][i].Price = decimal.NewFromInt(price)
		}
	}
}

func (f *fakeCatalog) itemCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.itemCalls)
}

type fakeCache struct {
	mu         sync.Mutex
	categories []entity.Category
	items      map[entity.ID][]entity.CatalogItem
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[entity.ID][]entity.CatalogItem{}}
}

func (c *fakeCache) GetCategories(context.Context) ([]entity.Category, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories, c.categories != nil, nil
}

func (c *fakeCache) SetCategories(_ context.Context, categories []entity.Category, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = categories
	return nil
}

func (c *fakeCache) GetItems(_ context.Context, id entity.ID) ([]entity.CatalogItem, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.items[id]
	return items, ok, nil
}

func (c *fakeCache) SetItems(_ context.Context, id entity.ID, items []entity.CatalogItem, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = items
	return nil
}

type fakeOrders struct {
	mu       sync.Mutex
	requests []repository.OrderRequest
	sessions []repository.OrderRequest
	id       entity.ID
	err      error
}

func (f *fakeOrders) AddDirectSale(_ context.Context, req *repository.OrderRequest) (entity.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, *req)
	return f.id, f.err
}

func (f *fakeOrders) AddSessionItems(_ context.Context, req *repository.OrderRequest) (entity.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, *req)
	return f.id, f.err
}

func (f *fakeOrders) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests) + len(f.sessions)
}

type fakeEvents struct {
	mu        sync.Mutex
	events    []entity.SaleConfirmedEvent
	err       error
	onPublish func()
}

func (f *fakeEvents) PublishSaleConfirmed(_ context.Context, e entity.SaleConfirmedEvent) error {
	if f.onPublish != nil {
		f.onPublish()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

type fakeReports struct {
	mu           sync.Mutex
	sales        []entity.Sale
	sessions     []entity.Session
	clients      []entity.Client
	rooms        []entity.Room
	err          error
	salesCalls   int
	sessionCalls int
	lastQuery    repository.SessionQuery
}

func (f *fakeReports) ListSales(_ context.Context, _, _ *time.Time) ([]entity.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.salesCalls++
	return f.sales, f.err
}

func (f *fakeReports) ListSessions(_ context.Context, q repository.SessionQuery) ([]entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCalls++
	f.lastQuery = q
	return f.sessions, f.err
}

func (f *fakeReports) ListClients(context.Context) ([]entity.Client, error) {
	return f.clients, nil
}

func (f *fakeReports) ListRooms(context.Context) ([]entity.Room, error) {
	return f.rooms, nil
}

var errBackendDown = apperror.NewUpstreamError(500, "database down")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
