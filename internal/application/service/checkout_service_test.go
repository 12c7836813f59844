package service

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
	"github.com/sangkips/pscafe-console/internal/domain/repository"
	infraRepo "github.com/sangkips/pscafe-console/internal/infrastructure/repository"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"github.com/sangkips/pscafe-console/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	catalog  *fakeCatalog
	orders   *fakeOrders
	drafts   repository.DraftRepository
	frame    *printer.SpoolFrame
	printers *PrinterService
	svc      *CheckoutService
}

func newCheckoutFixture(t *testing.T, drafts repository.DraftRepository) *checkoutFixture {
	t.Helper()
	frame, err := printer.NewSpoolFrame(t.TempDir())
	require.NoError(t, err)
	return newCheckoutFixtureWithFrame(t, drafts, frame)
}

func newCheckoutFixtureWithFrame(t *testing.T, drafts repository.DraftRepository, frame *printer.SpoolFrame) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		catalog: newFakeCatalog(),
		orders:  &fakeOrders{id: "900"},
		drafts:  drafts,
		frame:   frame,
	}
	var pf printer.Frame
	if frame != nil {
		pf = frame
	}
	f.printers = NewPrinterService(printer.NewSpooler(pf, printer.SpoolerOptions{}), PrinterOptions{
		Type:   "spool",
		Header: entity.ReceiptHeader{StoreName: "PS Café"},
		Layout: printer.DefaultLayout(),
	})
	f.svc = NewCheckoutService(f.catalog, f.printers, CheckoutOptions{Drafts: drafts},
		DrinksCheckout(f.orders),
		SessionCheckout(f.orders),
	)
	return f
}

func TestStateLoadsCatalogOnce(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	st, err := f.svc.State(ctx, enum.CheckoutDrinks, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTerminal, st.Terminal)
	assert.True(t, st.AllowPrint)
	assert.Equal(t, []entity.ID{"10", "11"}, ids(st.Catalog.Items))
	assert.Empty(t, st.Notices)

	_, err = f.svc.State(ctx, enum.CheckoutDrinks, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.catalog.categoryCalls)
}

func TestAddItemAggregates(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.State(ctx, enum.CheckoutDrinks, "bar")
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, enum.CheckoutDrinks, "bar", "10")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, enum.CheckoutDrinks, "bar", "10")
	require.NoError(t, err)
	st, err := f.svc.AddItem(ctx, enum.CheckoutDrinks, "bar", "11")
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(55).Equal(st.Cart.Total))
	assert.Equal(t, 3, st.Cart.ItemCount)
	assert.Equal(t, 2, st.Cart.LineCount)

	other, err := f.svc.State(ctx, enum.CheckoutDrinks, "lounge")
	require.NoError(t, err)
	assert.Zero(t, other.Cart.LineCount)

	_, err = f.svc.AddItem(ctx, enum.CheckoutDrinks, "bar", "12")
	assert.ErrorIs(t, err, apperror.ErrItemNotListed)
}

func TestSetQuantityAndRemove(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, enum.CheckoutDrinks, "", "10")
	_, _ = f.svc.AddItem(ctx, enum.CheckoutDrinks, "", "11")

	st, err := f.svc.SetQuantity(ctx, enum.CheckoutDrinks, "", "10", 4)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(95).Equal(st.Cart.Total))

	st, err = f.svc.SetQuantity(ctx, enum.CheckoutDrinks, "", "10", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Cart.LineCount)

	_, err = f.svc.SetQuantity(ctx, enum.CheckoutDrinks, "", "10", 2)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	st, err = f.svc.RemoveItem(ctx, enum.CheckoutDrinks, "", "11")
	require.NoError(t, err)
	assert.Zero(t, st.Cart.LineCount)
}

func TestClearNeedsConfirmation(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, enum.CheckoutDrinks, "", "10")

	_, err := f.svc.ClearCart(ctx, enum.CheckoutDrinks, "", false)
	assert.ErrorIs(t, err, apperror.ErrClearNotConfirmed)

	st, err := f.svc.ClearCart(ctx, enum.CheckoutDrinks, "", true)
	require.NoError(t, err)
	assert.Zero(t, st.Cart.LineCount)

	st, err = f.svc.ClearCart(ctx, enum.CheckoutDrinks, "", true)
	require.NoError(t, err)
	assert.Zero(t, st.Cart.LineCount)
}

func TestSubmitClearsCartAndPrints(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, enum.CheckoutDrinks, "", "10")
	_, _ = f.svc.AddItem(ctx, enum.CheckoutDrinks, "", "11")

	res, err := f.svc.Submit(ctx, enum.CheckoutDrinks, "", SubmitRequest{Notes: "table 1", Print: true})
	require.NoError(t, err)

	assert.True(t, res.Printed)
	assert.Empty(t, res.PrintError)
	assert.Equal(t, entity.ID("900"), res.Receipt.ID)
	assert.Zero(t, res.State.Cart.LineCount)
	require.NotNil(t, res.State.Receipt)

	html, err := os.ReadFile(f.frame.LastPath())
	require.NoError(t, err)
	assert.Contains(t, string(html), res.Receipt.OrderNumber)

	page, err := f.svc.RenderReceipt(ctx, enum.CheckoutDrinks, "")
	require.NoError(t, err)
	assert.Contains(t, string(page.HTML), "table 1")
}

func TestSaleEventIsPublishedOutsideTheScreenLock(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	events := &fakeEvents{}
	svc := NewCheckoutService(f.catalog, f.printers, CheckoutOptions{Events: events}, DrinksCheckout(f.orders))

	stateServed := make(chan bool, 1)
	events.onPublish = func() {
		done := make(chan struct{})
		go func() {
			_, _ = svc.State(ctx, enum.CheckoutDrinks, "bar")
			close(done)
		}()
		select {
		case <-done:
			stateServed <- true
		case <-time.After(2 * time.Second):
			stateServed <- false
		}
	}

	_, err := svc.AddItem(ctx, enum.CheckoutDrinks, "bar", "10")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, enum.CheckoutDrinks, "bar", SubmitRequest{})
	require.NoError(t, err)

	assert.True(t, <-stateServed, "the screen stays usable while the broker is slow")
	require.Len(t, events.events, 1)
	assert.Equal(t, "bar", events.events[0].Terminal)
}

func TestSubmitKeepsOrderWhenPrintFails(t *testing.T) {
	f := newCheckoutFixtureWithFrame(t, nil, nil)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, enum.CheckoutDrinks, "", "10")

	res, err := f.svc.Submit(ctx, enum.CheckoutDrinks, "", SubmitRequest{Print: true})
	require.NoError(t, err)

	assert.False(t, res.Printed)
	assert.Equal(t, apperror.ErrPrintUnavailable.Message, res.PrintError)
	require.NotNil(t, res.Receipt)

	receipt, err := f.svc.Receipt(ctx, enum.CheckoutDrinks, "")
	require.NoError(t, err)
	assert.Equal(t, res.Receipt.OrderNumber, receipt.OrderNumber)

	levels := map[NoticeLevel]bool{}
	for _, n := range res.State.Notices {
		levels[n.Level] = true
	}
	assert.True(t, levels[NoticeWarning])
}

func TestSubmitFailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, enum.CheckoutDrinks, "", "10")
	f.orders.err = errBackendDown

	_, err := f.svc.Submit(ctx, enum.CheckoutDrinks, "", SubmitRequest{})
	require.Error(t, err)

	st, err := f.svc.State(ctx, enum.CheckoutDrinks, "")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Cart.LineCount)
	assert.Nil(t, st.Receipt)
	require.Len(t, st.Notices, 1)
	assert.Equal(t, NoticeError, st.Notices[0].Level)
}

func TestSubmitEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	_, err := f.svc.Submit(context.Background(), enum.CheckoutDrinks, "", SubmitRequest{})

	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
	assert.Zero(t, f.orders.calls())

	st, err := f.svc.State(context.Background(), enum.CheckoutDrinks, "")
	require.NoError(t, err)
	require.Len(t, st.Notices, 1)
	assert.Equal(t, NoticeWarning, st.Notices[0].Level)
	assert.Equal(t, "Cart is empty", st.Notices[0].Message)
}

func TestSessionCheckoutDoesNotPrint(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	st, err := f.svc.State(ctx, enum.CheckoutSession, "")
	require.NoError(t, err)
	assert.False(t, st.AllowPrint)
	assert.Equal(t, []entity.ID{"10"}, ids(st.Catalog.Items))

	_, _ = f.svc.AddItem(ctx, enum.CheckoutSession, "", "10")
	res, err := f.svc.Submit(ctx, enum.CheckoutSession, "", SubmitRequest{SessionID: "31", Print: true})
	require.NoError(t, err)
	assert.False(t, res.Printed)
	assert.Equal(t, apperror.ErrPrintingDisabled.Message, res.PrintError)
	assert.Len(t, f.orders.sessions, 1)

	err = f.svc.PrintReceipt(ctx, enum.CheckoutSession, "")
	assert.ErrorIs(t, err, apperror.ErrPrintingDisabled)
}

func TestPrintReceiptWithoutReceipt(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	err := f.svc.PrintReceipt(context.Background(), enum.CheckoutDrinks, "")
	assert.ErrorIs(t, err, apperror.ErrNoReceipt)
}

func TestDraftIsRestoredOnNewSession(t *testing.T) {
	drafts := infraRepo.NewMemoryDraftRepository()
	ctx := context.Background()

	first := newCheckoutFixture(t, drafts)
	_, _ = first.svc.AddItem(ctx, enum.CheckoutDrinks, "bar", "10")
	_, _ = first.svc.AddItem(ctx, enum.CheckoutDrinks, "bar", "10")

	restarted := newCheckoutFixture(t, drafts)
	restarted.catalog.setPrice("1", "10", 99)
	st, err := restarted.svc.State(ctx, enum.CheckoutDrinks, "bar")
	require.NoError(t, err)

	require.Equal(t, 1, st.Cart.LineCount)
	assert.Equal(t, 2, st.Cart.Lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(40).Equal(st.Cart.Total), "restored lines keep their captured price")
	require.NotEmpty(t, st.Notices)
	assert.Equal(t, NoticeInfo, st.Notices[0].Level)

	_, err = restarted.svc.Submit(ctx, enum.CheckoutDrinks, "bar", SubmitRequest{})
	require.NoError(t, err)
	draft, err := drafts.Get(ctx, enum.CheckoutDrinks, "bar")
	require.NoError(t, err)
	assert.Nil(t, draft, "draft is removed once the order is confirmed")
}
