package repository

import (
	"context"
	"errors"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
	domainRepo "github.com/sangkips/pscafe-console/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new cart draft repository
func NewDraftRepository(db *gorm.DB) domainRepo.DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Get(ctx context.Context, variant enum.CheckoutVariant, terminal string) (*entity.CartDraft, error) {
	var draft entity.CartDraft
	err := r.db.WithContext(ctx).
		Scopes(ScreenScope(variant, terminal)).
		First(&draft).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &draft, err
}

// Save upserts on (variant, terminal)
func (r *draftRepository) Save(ctx context.Context, draft *entity.CartDraft) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "variant"}, {Name: "terminal"}},
			DoUpdates: clause.AssignmentColumns([]string{"lines", "updated_at"}),
		}).
		Create(draft).Error
}

func (r *draftRepository) Delete(ctx context.Context, variant enum.CheckoutVariant, terminal string) error {
	return r.db.WithContext(ctx).
		Scopes(ScreenScope(variant, terminal)).
		Delete(&entity.CartDraft{}).Error
}
