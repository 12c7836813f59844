package service

import (
	"context"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
	"github.com/sangkips/pscafe-console/internal/domain/repository"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"github.com/sangkips/pscafe-console/pkg/utils"
	"go.uber.org/zap"
)

// DefaultReceiptTimeLayout formats receipt timestamps when none is configured.
const DefaultReceiptTimeLayout = "2006-01-02 15:04"

// SubmitFunc posts an order to the backend and returns the id it assigned,
// or an empty id when it did not send one.
type SubmitFunc func(ctx context.Context, req *repository.OrderRequest) (entity.ID, error)

// SubmitInput carries what the operator entered alongside the cart.
type SubmitInput struct {
	Notes     string
	SessionID entity.ID
	Terminal  string
}

// OrderSubmitterOptions configures an OrderSubmitter.
type OrderSubmitterOptions struct {
	Header     entity.ReceiptHeader
	TimeLayout string
	// Events receives the SaleConfirmedEvent of every receipt passed to
	// Announce; nil disables it.
	Events repository.SaleEventPublisher
	Logger *zap.Logger
	Now    func() time.Time
}

// OrderSubmitter turns a cart into a backend order and a Receipt.
// It never mutates the cart.
type OrderSubmitter struct {
	variant    enum.CheckoutVariant
	submit     SubmitFunc
	header     entity.ReceiptHeader
	timeLayout string
	events     repository.SaleEventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewOrderSubmitter creates a submitter that posts through submit.
func NewOrderSubmitter(variant enum.CheckoutVariant, submit SubmitFunc, opts OrderSubmitterOptions) *OrderSubmitter {
	s := &OrderSubmitter{
		variant:    variant,
		submit:     submit,
		header:     opts.Header,
		timeLayout: opts.TimeLayout,
		events:     opts.Events,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if s.timeLayout == "" {
		s.timeLayout = DefaultReceiptTimeLayout
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Submit posts the cart lines as {itemId, quantity} pairs in cart order and
// builds the receipt from the cart as it was submitted. An empty cart, or a
// session order without a session, fails before any request is made.
func (s *OrderSubmitter) Submit(ctx context.Context, cart *entity.Cart, in SubmitInput) (*entity.Receipt, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, apperror.ErrEmptyCart
	}
	if s.variant == enum.CheckoutSession && in.SessionID.IsZero() {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "session_id", Message: "select the session to bill"},
		})
	}

	lines := cart.Lines()
	req := &repository.OrderRequest{
		SessionID: in.SessionID,
		Notes:     in.Notes,
		Items:     make([]repository.OrderLine, 0, len(lines)),
	}
	for _, l := range lines {
		req.Items = append(req.Items, repository.OrderLine{ItemID: l.Item.ID, Quantity: l.Quantity})
	}

	id, err := s.submit(ctx, req)
	if err != nil {
		s.logger.Warn("order submission failed",
			zap.String("variant", s.variant.String()),
			zap.Int("lines", len(lines)),
			zap.Error(err),
		)
		return nil, err
	}

	issued := s.now()
	if id.IsZero() {
		id = entity.ID(utils.FallbackID(issued))
	}
	receipt := &entity.Receipt{
		Header:      s.header,
		ID:          id,
		OrderNumber: utils.OrderNumber(issued),
		Variant:     s.variant,
		SessionID:   in.SessionID,
		Lines:       lines,
		Total:       cart.Total(),
		Notes:       in.Notes,
		Timestamp:   issued.Local().Format(s.timeLayout),
		IssuedAt:    issued,
	}

	s.logger.Info("order confirmed",
		zap.String("variant", s.variant.String()),
		zap.String("order_id", receipt.ID.String()),
		zap.String("order_number", receipt.OrderNumber),
		zap.String("total", receipt.Total.StringFixed(2)),
	)
	return receipt, nil
}

// Announce publishes the sale event of a confirmed receipt. Failures are
// logged only; the order is already stored by then. Callers run it outside
// any lock since the broker may be slow to answer.
func (s *OrderSubmitter) Announce(ctx context.Context, r *entity.Receipt, terminal string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishSaleConfirmed(ctx, entity.NewSaleConfirmedEvent(r, terminal)); err != nil {
		s.logger.Warn("sale event not published", zap.String("order_id", r.ID.String()), zap.Error(err))
	}
}
