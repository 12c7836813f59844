package repository

import (
	"context"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
)

// SessionQuery selects sessions either by client or by date range
type SessionQuery struct {
	ClientID entity.ID
	Start    *time.Time
	End      *time.Time
}

// SaleRepository lists direct sales for reports
type SaleRepository interface {
	ListSales(ctx context.Context, start, end *time.Time) ([]entity.Sale, error)
}

// SessionRepository lists play sessions for reports
type SessionRepository interface {
	ListSessions(ctx context.Context, query SessionQuery) ([]entity.Session, error)
}

// ClientRepository lists clients
type ClientRepository interface {
	ListClients(ctx context.Context) ([]entity.Client, error)
}

// RoomRepository lists rooms
type RoomRepository interface {
	ListRooms(ctx context.Context) ([]entity.Room, error)
}
