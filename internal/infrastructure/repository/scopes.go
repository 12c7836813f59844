package repository

import (
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/enum"
	"gorm.io/gorm"
)

// ScreenScope returns a GORM scope that filters rows of one checkout screen
// on one terminal. An empty terminal matches nothing.
func ScreenScope(variant enum.CheckoutVariant, terminal string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if terminal == "" {
			return db.Where("1 = 0")
		}
		return db.Where("variant = ? AND terminal = ?", variant, terminal)
	}
}

// OperatorKeyScope filters idempotency keys by key and owner
func OperatorKeyScope(key, operator string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("key = ? AND operator = ?", key, operator)
	}
}

// ExpiredScope filters rows whose expires_at is before now
func ExpiredScope(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at < ?", now)
	}
}
