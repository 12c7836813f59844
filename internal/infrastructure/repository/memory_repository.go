package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
	domainRepo "github.com/sangkips/pscafe-console/internal/domain/repository"
)

// In-memory repositories back the console when DB_ENABLED is false. Their
// contents are lost on restart.

type draftKey struct {
	variant  enum.CheckoutVariant
	terminal string
}

type memoryDraftRepository struct {
	mu     sync.Mutex
	drafts map[draftKey]entity.CartDraft
}

// NewMemoryDraftRepository creates a process-local cart draft repository
func NewMemoryDraftRepository() domainRepo.DraftRepository {
	return &memoryDraftRepository{drafts: make(map[draftKey]entity.CartDraft)}
}

func (r *memoryDraftRepository) Get(_ context.Context, variant enum.CheckoutVariant, terminal string) (*entity.CartDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[draftKey{variant, terminal}]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *memoryDraftRepository) Save(_ context.Context, draft *entity.CartDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := draftKey{draft.Variant, draft.Terminal}
	now := time.Now()
	if existing, ok := r.drafts[key]; ok {
		draft.ID = existing.ID
		draft.CreatedAt = existing.CreatedAt
	} else {
		if draft.ID == uuid.Nil {
			draft.ID = uuid.New()
		}
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now
	r.drafts[key] = *draft
	return nil
}

func (r *memoryDraftRepository) Delete(_ context.Context, variant enum.CheckoutVariant, terminal string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, draftKey{variant, terminal})
	return nil
}

type idempotencyKey struct {
	key      string
	operator string
}

type memoryIdempotencyRepository struct {
	mu   sync.Mutex
	keys map[idempotencyKey]entity.IdempotencyKey
}

// NewMemoryIdempotencyRepository creates a process-local idempotency repository
func NewMemoryIdempotencyRepository() domainRepo.IdempotencyRepository {
	return &memoryIdempotencyRepository{keys: make(map[idempotencyKey]entity.IdempotencyKey)}
}

func (r *memoryIdempotencyRepository) GetByKey(_ context.Context, key, operator string) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[idempotencyKey{key, operator}]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *memoryIdempotencyRepository) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = time.Now()
	}
	r.keys[idempotencyKey{ikey.Key, ikey.Operator}] = *ikey
	return nil
}

func (r *memoryIdempotencyRepository) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.keys {
		if v.IsExpired() {
			delete(r.keys, k)
		}
	}
	return nil
}
