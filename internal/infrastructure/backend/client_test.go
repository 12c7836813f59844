package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/repository"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recorded
	handler  http.HandlerFunc
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		buf := new(json.RawMessage)
		_ = json.NewDecoder(r.Body).Decode(buf)
		body = *buf
	}
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeBackend) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, token string, h http.HandlerFunc) (*Client, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{handler: h}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/", Token: token, Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	return c, fb
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestListCategories(t *testing.T) {
	c, fb := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[{"id":1,"name":"Hot drinks"},{"id":2,"name":"Snacks"}]`)
	})

	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []entity.Category{{ID: "1", Name: "Hot drinks"}, {ID: "2", Name: "Snacks"}}, cats)
	req := fb.last()
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/api/ItemTypes/GetAll", req.Path)
	assert.Empty(t, req.Auth)
}

func TestListItemsSendsTypeIDAndUnwrapsEnvelope(t *testing.T) {
	c, fb := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":[{"id":7,"name":"Cola","price":12.5,"isAvailable":true,"selectableInSession":true}]}`)
	})

	items, err := c.ListItems(context.Background(), "3")
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, entity.ID("3"), items[0].CategoryID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(items[0].Price))
	assert.Equal(t, "/api/Items/GetAll", fb.last().Path)
	assert.Equal(t, "typeId=3", fb.last().Query)
}

func TestAddDirectSaleBody(t *testing.T) {
	c, fb := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 201, `{"id": 991}`)
	})

	id, err := c.AddDirectSale(context.Background(), &repository.OrderRequest{
		Notes: "table 4",
		Items: []repository.OrderLine{{ItemID: "7", Quantity: 2}, {ItemID: "9", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ID("991"), id)
	req := fb.last()
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/api/DirectSales/Add", req.Path)
	assert.JSONEq(t, `{"notes":"table 4","items":[{"itemId":7,"quantity":2},{"itemId":9,"quantity":1}]}`, string(req.Body))
}

func TestAddDirectSaleWithoutID(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	id, err := c.AddDirectSale(context.Background(), &repository.OrderRequest{Items: []repository.OrderLine{{ItemID: "1", Quantity: 1}}})
	require.NoError(t, err)
	assert.True(t, id.IsZero())
}

func TestAddDirectSaleKeepsIDWhenItemsAreEchoed(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 201, `{"id": 42, "notes": "", "items": [{"itemId": 1, "quantity": 2}]}`)
	})

	id, err := c.AddDirectSale(context.Background(), &repository.OrderRequest{Items: []repository.OrderLine{{ItemID: "1", Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, entity.ID("42"), id)
}

func TestCreatedResponseShapes(t *testing.T) {
	cases := []struct {
		body string
		want entity.ID
	}{
		{`{"id": 42, "items": [{"itemId": 1}]}`, "42"},
		{`{"Id": "s-9", "data": {"id": 1}}`, "s-9"},
		{`{"data": {"id": 77, "items": []}}`, "77"},
		{`{"items": [{"id": 3}], "total": 12}`, ""},
		{`"abc"`, "abc"},
		{`15`, "15"},
		{`null`, ""},
	}
	for _, tc := range cases {
		var out createdResponse
		require.NoError(t, decodeBody([]byte(tc.body), &out), tc.body)
		assert.Equal(t, tc.want, out.ID, tc.body)
	}
}

func TestCreatedResponseRejectsGarbage(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"id": [1, 2]}`)
	})

	_, err := c.AddDirectSale(context.Background(), &repository.OrderRequest{Items: []repository.OrderLine{{ItemID: "1", Quantity: 1}}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apperror.GetAppError(err).Code)
}

func TestAddDirectSaleSendsPaddedIDAsString(t *testing.T) {
	c, fb := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 201, `{"id": 5}`)
	})

	_, err := c.AddDirectSale(context.Background(), &repository.OrderRequest{Items: []repository.OrderLine{{ItemID: "007", Quantity: 1}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"notes":"","items":[{"itemId":"007","quantity":1}]}`, string(fb.last().Body))
}

func TestAddSessionItemsIncludesSession(t *testing.T) {
	c, fb := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `"abc"`)
	})

	id, err := c.AddSessionItems(context.Background(), &repository.OrderRequest{
		SessionID: "55",
		Items:     []repository.OrderLine{{ItemID: "7", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ID("abc"), id)
	assert.Equal(t, "/api/Sessions/AddItems", fb.last().Path)
	assert.JSONEq(t, `{"sessionId":55,"notes":"","items":[{"itemId":7,"quantity":1}]}`, string(fb.last().Body))
}

func TestBearerTokenPrecedence(t *testing.T) {
	c, fb := newTestClient(t, "service-token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[]`)
	})

	_, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer service-token", fb.last().Auth)

	_, err = c.ListCategories(WithToken(context.Background(), "operator-token"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer operator-token", fb.last().Auth)
}

func TestSalesRangeQuery(t *testing.T) {
	c, fb := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[{"id":1,"totalPrice":40,"createdAt":"2024-05-01T10:00:00","items":[{"quantity":2,"unitPrice":20,"totalPrice":40,"item":{"id":7,"name":"Cola"}}]}]`)
	})
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	sales, err := c.ListSales(context.Background(), &start, &end)
	require.NoError(t, err)

	require.Len(t, sales, 1)
	assert.Equal(t, "Cola", sales[0].Items[0].Name())
	assert.Equal(t, "endRange=2024-05-02T00%3A00%3A00Z&startRange=2024-05-01T00%3A00%3A00Z", fb.last().Query)
}

func TestSessionsByClientIgnoresRange(t *testing.T) {
	c, fb := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[]`)
	})
	start := time.Now()

	_, err := c.ListSessions(context.Background(), repository.SessionQuery{ClientID: "12", Start: &start})
	require.NoError(t, err)
	assert.Equal(t, "clientId=12", fb.last().Query)
}

func TestServerErrorIsRetryable(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, `{"message":"database down"}`)
	})

	_, err := c.ListCategories(context.Background())
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusBadGateway, appErr.Code)
	assert.Contains(t, appErr.Message, "database down")
	assert.True(t, apperror.IsRetryable(err))
}

func TestUnauthorizedKeepsStatus(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ListCategories(context.Background())
	assert.Equal(t, http.StatusUnauthorized, apperror.GetAppError(err).Code)
	assert.False(t, apperror.IsRetryable(err))
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: url, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = c.ListCategories(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.GetAppError(err).Code)
}

func TestCancelledContextIsNotWrapped(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListCategories(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "backend.local"}, nil)
	assert.Error(t, err)
}
