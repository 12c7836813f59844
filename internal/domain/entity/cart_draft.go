package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
)

// CartDraft persists an unsubmitted cart for one checkout terminal so it can
// be restored after a restart. Lines holds the JSON encoded []CartLine.
type CartDraft struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Variant   enum.CheckoutVariant `gorm:"type:varchar(32);not null;uniqueIndex:idx_cart_drafts_terminal"`
	Terminal  string               `gorm:"size:128;not null;uniqueIndex:idx_cart_drafts_terminal"`
	Lines     string               `gorm:"type:text;not null"`
	CreatedAt time.Time            `gorm:"autoCreateTime"`
	UpdatedAt time.Time            `gorm:"autoUpdateTime"`
}

// TableName returns the table name for CartDraft
func (CartDraft) TableName() string {
	return "cart_drafts"
}
