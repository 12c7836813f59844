package backend

import (
	"context"
	"net/url"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/repository"
)

const (
	pathSales    = "/api/DirectSales/GetAll"
	pathSessions = "/api/Sessions/GetAll"
	pathClients  = "/api/Clients/GetAll"
	pathRooms    = "/api/Rooms/GetAll"
)

func rangeQuery(q url.Values, start, end *time.Time) {
	if start != nil {
		q.Set("startRange", start.Format(time.RFC3339))
	}
	if end != nil {
		q.Set("endRange", end.Format(time.RFC3339))
	}
}

// ListSales returns direct sales, optionally limited to a date range.
func (c *Client) ListSales(ctx context.Context, start, end *time.Time) ([]entity.Sale, error) {
	q := url.Values{}
	rangeQuery(q, start, end)

	var out []entity.Sale
	if err := c.get(ctx, pathSales, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSessions returns sessions of one client, or of a date range when no
// client is given.
func (c *Client) ListSessions(ctx context.Context, query repository.SessionQuery) ([]entity.Session, error) {
	q := url.Values{}
	if !query.ClientID.IsZero() {
		q.Set("clientId", query.ClientID.String())
	} else {
		rangeQuery(q, query.Start, query.End)
	}

	var out []entity.Session
	if err := c.get(ctx, pathSessions, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListClients(ctx context.Context) ([]entity.Client, error) {
	var out []entity.Client
	if err := c.get(ctx, pathClients, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRooms(ctx context.Context) ([]entity.Room, error) {
	var out []entity.Room
	if err := c.get(ctx, pathRooms, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
