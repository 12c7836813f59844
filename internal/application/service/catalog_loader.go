package service

import (
	"context"
	"sync"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/repository"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"go.uber.org/zap"
)

// AvailabilityFilter decides whether a fetched item is offered on a checkout screen.
type AvailabilityFilter func(entity.CatalogItem) bool

// AvailableOnly offers every available item.
func AvailableOnly(item entity.CatalogItem) bool {
	return item.IsAvailable
}

// AvailableInSession offers available items that may be added to a running session.
func AvailableInSession(item entity.CatalogItem) bool {
	return item.IsAvailable && item.SelectableInSession
}

// NoticeLevel is the severity of a Notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the operator.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// CatalogState is what a checkout screen shows of the catalog.
type CatalogState struct {
	Categories        []entity.Category    `json:"categories"`
	SelectedCategory  entity.ID            `json:"selected_category_id,omitempty"`
	Items             []entity.CatalogItem `json:"items"`
	CategoriesLoading bool                 `json:"categories_loading"`
	ItemsLoading      bool                 `json:"items_loading"`
}

// CatalogLoaderOptions configures a CatalogLoader.
type CatalogLoaderOptions struct {
	Filter AvailabilityFilter
	// Cache fronts the repository; nil disables caching.
	Cache    repository.CatalogCache
	CacheTTL time.Duration
	// Notify receives a notice for every failed fetch.
	Notify func(Notice)
	Logger *zap.Logger
}

// CatalogLoader holds the catalog state of one checkout screen. Fetches run
// outside the lock; each fetch takes a sequence number and its result is
// dropped when a newer fetch of the same list has started meanwhile.
type CatalogLoader struct {
	repo   repository.CatalogRepository
	cache  repository.CatalogCache
	ttl    time.Duration
	filter AvailabilityFilter
	notify func(Notice)
	logger *zap.Logger

	mu                sync.Mutex
	categories        []entity.Category
	selected          entity.ID
	items             []entity.CatalogItem
	categoriesLoading bool
	itemsLoading      bool
	categorySeq       uint64
	itemSeq           uint64
}

// NewCatalogLoader creates a loader. A nil filter offers every item.
func NewCatalogLoader(repo repository.CatalogRepository, opts CatalogLoaderOptions) *CatalogLoader {
	l := &CatalogLoader{
		repo:   repo,
		cache:  opts.Cache,
		ttl:    opts.CacheTTL,
		filter: opts.Filter,
		notify: opts.Notify,
		logger: opts.Logger,
	}
	if l.filter == nil {
		l.filter = func(entity.CatalogItem) bool { return true }
	}
	if l.notify == nil {
		l.notify = func(Notice) {}
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// LoadCategories fetches the categories and, when there is at least one,
// selects the first and fetches its items. A failed fetch leaves the category
// list empty and selects nothing. refresh bypasses the cache.
func (l *CatalogLoader) LoadCategories(ctx context.Context, refresh bool) error {
	l.mu.Lock()
	l.categorySeq++
	seq := l.categorySeq
	l.categoriesLoading = true
	l.mu.Unlock()

	categories, err := l.fetchCategories(ctx, refresh)

	l.mu.Lock()
	if seq != l.categorySeq {
		l.mu.Unlock()
		return nil
	}
	l.categoriesLoading = false
	if err != nil {
		l.categories = nil
		l.mu.Unlock()
		l.fail("Failed to load categories", err)
		return err
	}
	l.categories = categories
	l.mu.Unlock()

	if len(categories) == 0 {
		return nil
	}
	return l.SelectCategory(ctx, categories[0].ID, refresh)
}

// SelectCategory makes categoryID current and fetches its items, keeping only
// those the filter accepts. A failed fetch leaves the item list empty.
func (l *CatalogLoader) SelectCategory(ctx context.Context, categoryID entity.ID, refresh bool) error {
	l.mu.Lock()
	l.itemSeq++
	seq := l.itemSeq
	l.selected = categoryID
	l.items = nil
	l.itemsLoading = true
	l.mu.Unlock()

	items, err := l.fetchItems(ctx, categoryID, refresh)

	l.mu.Lock()
	if seq != l.itemSeq {
		l.mu.Unlock()
		l.logger.Debug("dropped stale item list", zap.String("category_id", categoryID.String()))
		return nil
	}
	l.itemsLoading = false
	if err != nil {
		l.items = nil
		l.mu.Unlock()
		l.fail("Failed to load items", err)
		return err
	}
	filtered := make([]entity.CatalogItem, 0, len(items))
	for _, it := range items {
		if l.filter(it) {
			filtered = append(filtered, it)
		}
	}
	l.items = filtered
	l.mu.Unlock()
	return nil
}

// FindItem looks an item up among the items currently shown.
func (l *CatalogLoader) FindItem(id entity.ID) (entity.CatalogItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.ID == id {
			return it, true
		}
	}
	return entity.CatalogItem{}, false
}

// State returns a copy of the current catalog state.
func (l *CatalogLoader) State() CatalogState {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := CatalogState{
		Categories:        make([]entity.Category, len(l.categories)),
		SelectedCategory:  l.selected,
		Items:             make([]entity.CatalogItem, len(l.items)),
		CategoriesLoading: l.categoriesLoading,
		ItemsLoading:      l.itemsLoading,
	}
	copy(st.Categories, l.categories)
	copy(st.Items, l.items)
	return st
}

func (l *CatalogLoader) fetchCategories(ctx context.Context, refresh bool) ([]entity.Category, error) {
	if l.cache != nil && !refresh {
		cached, ok, err := l.cache.GetCategories(ctx)
		if err != nil {
			l.logger.Warn("catalog cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	categories, err := l.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		if err := l.cache.SetCategories(ctx, categories, l.ttl); err != nil {
			l.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

func (l *CatalogLoader) fetchItems(ctx context.Context, categoryID entity.ID, refresh bool) ([]entity.CatalogItem, error) {
	if l.cache != nil && !refresh {
		cached, ok, err := l.cache.GetItems(ctx, categoryID)
		if err != nil {
			l.logger.Warn("catalog cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	items, err := l.repo.ListItems(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		if err := l.cache.SetItems(ctx, categoryID, items, l.ttl); err != nil {
			l.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (l *CatalogLoader) fail(what string, err error) {
	l.logger.Warn(what, zap.Error(err))
	l.notify(Notice{
		Level:   NoticeError,
		Message: what + ": " + apperror.GetAppError(err).Message,
		At:      time.Now(),
	})
}
