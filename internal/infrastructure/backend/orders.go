package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/repository"
)

const (
	pathDirectSaleAdd  = "/api/DirectSales/Add"
	pathSessionItemAdd = "/api/Sessions/AddItems"
)

// createdResponse reads the id of a created record. The backend answers with
// {"id": ...} (possibly echoing the record's items), {"data": {"id": ...}},
// a bare id, or nothing at all. A top-level id always wins over the envelope.
type createdResponse struct {
	ID entity.ID
}

func (r *createdResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		return json.Unmarshal(data, &r.ID)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := field(fields, "id"); ok {
		return json.Unmarshal(raw, &r.ID)
	}
	if raw, ok := field(fields, "data"); ok {
		return r.UnmarshalJSON(raw)
	}
	return nil
}

// field looks a key up the way encoding/json matches struct tags.
func field(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if raw, ok := fields[key]; ok {
		return raw, true
	}
	for k, raw := range fields {
		if strings.EqualFold(k, key) {
			return raw, true
		}
	}
	return nil, false
}

// AddDirectSale posts a drinks order.
func (c *Client) AddDirectSale(ctx context.Context, req *repository.OrderRequest) (entity.ID, error) {
	body := struct {
		Notes string                 `json:"notes"`
		Items []repository.OrderLine `json:"items"`
	}{req.Notes, req.Items}

	var out createdResponse
	if err := c.post(ctx, pathDirectSaleAdd, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// AddSessionItems posts items consumed during a play session onto its bill.
func (c *Client) AddSessionItems(ctx context.Context, req *repository.OrderRequest) (entity.ID, error) {
	var out createdResponse
	if err := c.post(ctx, pathSessionItemAdd, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
