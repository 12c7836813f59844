package repository

import (
	"context"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
)

// DraftRepository persists unsubmitted carts per checkout terminal
type DraftRepository interface {
	// Get returns nil, nil when no draft exists
	Get(ctx context.Context, variant enum.CheckoutVariant, terminal string) (*entity.CartDraft, error)
	// Save creates or replaces the draft for the draft's variant and terminal
	Save(ctx context.Context, draft *entity.CartDraft) error
	Delete(ctx context.Context, variant enum.CheckoutVariant, terminal string) error
}
