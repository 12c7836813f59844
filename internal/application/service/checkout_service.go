package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
	"github.com/sangkips/pscafe-console/internal/domain/repository"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"github.com/sangkips/pscafe-console/pkg/printer"
	"go.uber.org/zap"
)

// DefaultTerminal is used when a request names no terminal.
const DefaultTerminal = "default"

// CheckoutConfig describes one checkout screen.
type CheckoutConfig struct {
	Variant    enum.CheckoutVariant
	Filter     AvailabilityFilter
	Submit     SubmitFunc
	AllowPrint bool
}

// DrinksCheckout sells available items as direct sales and prints receipts.
func DrinksCheckout(orders repository.OrderRepository) CheckoutConfig {
	return CheckoutConfig{
		Variant:    enum.CheckoutDrinks,
		Filter:     AvailableOnly,
		Submit:     orders.AddDirectSale,
		AllowPrint: true,
	}
}

// SessionCheckout adds items to a running session's bill. The bill is
// printed when the session closes, so receipts are not printed here.
func SessionCheckout(orders repository.OrderRepository) CheckoutConfig {
	return CheckoutConfig{
		Variant:    enum.CheckoutSession,
		Filter:     AvailableInSession,
		Submit:     orders.AddSessionItems,
		AllowPrint: false,
	}
}

// CheckoutOptions holds the collaborators shared by every checkout session.
type CheckoutOptions struct {
	Cache    repository.CatalogCache
	CacheTTL time.Duration
	// Drafts persists unsubmitted carts; nil disables drafts.
	Drafts     repository.DraftRepository
	Events     repository.SaleEventPublisher
	Header     entity.ReceiptHeader
	TimeLayout string
	Logger     *zap.Logger
	Now        func() time.Time
}

// CheckoutState is everything a checkout screen renders.
type CheckoutState struct {
	Variant    enum.CheckoutVariant `json:"variant"`
	Terminal   string               `json:"terminal"`
	AllowPrint bool                 `json:"allow_print"`
	Catalog    CatalogState         `json:"catalog"`
	Cart       entity.CartSnapshot  `json:"cart"`
	Receipt    *entity.Receipt      `json:"receipt,omitempty"`
	Printing   bool                 `json:"printing"`
	Notices    []Notice             `json:"notices"`
}

// SubmitRequest is the operator's confirmation of a cart.
type SubmitRequest struct {
	Notes     string
	SessionID entity.ID
	Print     bool
}

// SubmitResult is a confirmed order. PrintError is set when the receipt was
// requested but could not be printed; the order itself stands.
type SubmitResult struct {
	Receipt    *entity.Receipt `json:"receipt"`
	Printed    bool            `json:"printed"`
	PrintError string          `json:"print_error,omitempty"`
	State      *CheckoutState  `json:"state"`
}

type sessionKey struct {
	variant  enum.CheckoutVariant
	terminal string
}

// checkoutSession is the server side of one checkout screen. mu serializes
// cart access, including across an order submission.
type checkoutSession struct {
	key       sessionKey
	config    CheckoutConfig
	loader    *CatalogLoader
	submitter *OrderSubmitter
	started   atomic.Bool
	printing  atomic.Bool

	mu      sync.Mutex
	cart    *entity.Cart
	receipt *entity.Receipt

	noticeMu sync.Mutex
	notices  []Notice
}

func (cs *checkoutSession) notify(n Notice) {
	cs.noticeMu.Lock()
	cs.notices = append(cs.notices, n)
	cs.noticeMu.Unlock()
}

func (cs *checkoutSession) drainNotices() []Notice {
	cs.noticeMu.Lock()
	defer cs.noticeMu.Unlock()
	out := cs.notices
	cs.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// CheckoutService keeps one checkout session per (variant, terminal).
type CheckoutService struct {
	configs map[enum.CheckoutVariant]CheckoutConfig
	catalog repository.CatalogRepository
	printer *PrinterService
	opts    CheckoutOptions
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*checkoutSession
}

// NewCheckoutService creates a checkout service serving the given screens.
func NewCheckoutService(
	catalog repository.CatalogRepository,
	printerService *PrinterService,
	opts CheckoutOptions,
	configs ...CheckoutConfig,
) *CheckoutService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &CheckoutService{
		configs:  make(map[enum.CheckoutVariant]CheckoutConfig, len(configs)),
		catalog:  catalog,
		printer:  printerService,
		opts:     opts,
		logger:   opts.Logger.Named("checkout"),
		sessions: make(map[sessionKey]*checkoutSession),
	}
	for _, c := range configs {
		s.configs[c.Variant] = c
	}
	return s
}

// State returns the screen state and drains its notices. The first call for
// a terminal loads the catalog and restores any saved draft.
func (s *CheckoutService) State(ctx context.Context, variant enum.CheckoutVariant, terminal string) (*CheckoutState, error) {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}
	return s.state(cs), nil
}

// ReloadCatalog refetches the categories, bypassing the cache. Fetch failures
// are reported as notices in the returned state.
func (s *CheckoutService) ReloadCatalog(ctx context.Context, variant enum.CheckoutVariant, terminal string) (*CheckoutState, error) {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}
	_ = cs.loader.LoadCategories(ctx, true)
	return s.state(cs), nil
}

// SelectCategory shows the items of categoryID.
func (s *CheckoutService) SelectCategory(ctx context.Context, variant enum.CheckoutVariant, terminal string, categoryID entity.ID) (*CheckoutState, error) {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}
	_ = cs.loader.SelectCategory(ctx, categoryID, false)
	return s.state(cs), nil
}

// AddItem adds one unit of an item currently shown on the screen.
func (s *CheckoutService) AddItem(ctx context.Context, variant enum.CheckoutVariant, terminal string, itemID entity.ID) (*CheckoutState, error) {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}
	item, ok := cs.loader.FindItem(itemID)
	if !ok {
		return nil, apperror.ErrItemNotListed
	}

	cs.mu.Lock()
	cs.cart.Add(item)
	s.saveDraft(ctx, cs)
	cs.mu.Unlock()

	return s.state(cs), nil
}

// SetQuantity sets the quantity of a cart line; below 1 removes it.
func (s *CheckoutService) SetQuantity(ctx context.Context, variant enum.CheckoutVariant, terminal string, itemID entity.ID, quantity int) (*CheckoutState, error) {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	ok := cs.cart.SetQuantity(itemID, quantity)
	if ok {
		s.saveDraft(ctx, cs)
	}
	cs.mu.Unlock()

	if !ok {
		return nil, apperror.NewNotFoundError("Cart line")
	}
	return s.state(cs), nil
}

// RemoveItem removes a cart line. Removing an absent line is not an error.
func (s *CheckoutService) RemoveItem(ctx context.Context, variant enum.CheckoutVariant, terminal string, itemID entity.ID) (*CheckoutState, error) {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	cs.cart.Remove(itemID)
	s.saveDraft(ctx, cs)
	cs.mu.Unlock()

	return s.state(cs), nil
}

// ClearCart empties the cart once the operator has confirmed it.
func (s *CheckoutService) ClearCart(ctx context.Context, variant enum.CheckoutVariant, terminal string, confirm bool) (*CheckoutState, error) {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}
	if !confirm {
		return nil, apperror.ErrClearNotConfirmed
	}

	cs.mu.Lock()
	cs.cart.Clear()
	s.saveDraft(ctx, cs)
	cs.mu.Unlock()

	return s.state(cs), nil
}

// Submit confirms the cart. On success the receipt is kept, the cart and its
// draft are cleared and, when asked, the receipt is printed. A failed submit
// leaves the cart as it was.
func (s *CheckoutService) Submit(ctx context.Context, variant enum.CheckoutVariant, terminal string, req SubmitRequest) (*SubmitResult, error) {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	receipt, err := cs.submitter.Submit(ctx, cs.cart, SubmitInput{
		Notes:     req.Notes,
		SessionID: req.SessionID,
		Terminal:  terminal,
	})
	if err != nil {
		cs.mu.Unlock()
		msg := apperror.GetAppError(err).Message
		if apperror.IsValidation(err) {
			cs.notify(Notice{Level: NoticeWarning, Message: msg, At: s.opts.Now()})
		} else {
			cs.notify(Notice{Level: NoticeError, Message: "Order was not saved, please retry: " + msg, At: s.opts.Now()})
		}
		return nil, err
	}
	cs.receipt = receipt
	cs.cart.Clear()
	s.saveDraft(ctx, cs)
	cs.mu.Unlock()

	cs.submitter.Announce(ctx, receipt, terminal)

	cs.notify(Notice{Level: NoticeInfo, Message: "Order " + receipt.OrderNumber + " confirmed", At: s.opts.Now()})
	result := &SubmitResult{Receipt: receipt}

	if req.Print {
		if err := s.printReceipt(ctx, cs, receipt); err != nil {
			result.PrintError = apperror.GetAppError(err).Message
			cs.notify(Notice{Level: NoticeWarning, Message: "Order saved but the receipt was not printed: " + result.PrintError, At: s.opts.Now()})
		} else {
			result.Printed = true
		}
	}

	result.State = s.state(cs)
	return result, nil
}

// Receipt returns the last confirmed order of the screen.
func (s *CheckoutService) Receipt(ctx context.Context, variant enum.CheckoutVariant, terminal string) (*entity.Receipt, error) {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.receipt == nil {
		return nil, apperror.ErrNoReceipt
	}
	return cs.receipt, nil
}

// RenderReceipt renders the last receipt as a printable page.
func (s *CheckoutService) RenderReceipt(ctx context.Context, variant enum.CheckoutVariant, terminal string) (*printer.Page, error) {
	receipt, err := s.Receipt(ctx, variant, terminal)
	if err != nil {
		return nil, err
	}
	return s.printer.ReceiptDocument(receipt).Render()
}

// PrintReceipt prints the last receipt again.
func (s *CheckoutService) PrintReceipt(ctx context.Context, variant enum.CheckoutVariant, terminal string) error {
	cs, err := s.session(ctx, variant, terminal)
	if err != nil {
		return err
	}
	cs.mu.Lock()
	receipt := cs.receipt
	cs.mu.Unlock()
	if receipt == nil {
		return apperror.ErrNoReceipt
	}
	return s.printReceipt(ctx, cs, receipt)
}

func (s *CheckoutService) printReceipt(ctx context.Context, cs *checkoutSession, receipt *entity.Receipt) error {
	if !cs.config.AllowPrint {
		return apperror.ErrPrintingDisabled
	}
	if !cs.printing.CompareAndSwap(false, true) {
		return apperror.ErrPrintInProgress
	}
	defer cs.printing.Store(false)
	return s.printer.PrintReceipt(ctx, receipt)
}

func (s *CheckoutService) session(ctx context.Context, variant enum.CheckoutVariant, terminal string) (*checkoutSession, error) {
	cfg, ok := s.configs[variant]
	if !ok {
		return nil, apperror.NewNotFoundError("Checkout " + variant.String())
	}
	if terminal == "" {
		terminal = DefaultTerminal
	}
	key := sessionKey{variant: variant, terminal: terminal}

	s.mu.Lock()
	cs, ok := s.sessions[key]
	if !ok {
		cs = &checkoutSession{key: key, config: cfg, cart: entity.NewCart()}
		logger := s.logger.With(zap.String("variant", variant.String()), zap.String("terminal", terminal))
		cs.loader = NewCatalogLoader(s.catalog, CatalogLoaderOptions{
			Filter:   cfg.Filter,
			Cache:    s.opts.Cache,
			CacheTTL: s.opts.CacheTTL,
			Notify:   cs.notify,
			Logger:   logger,
		})
		cs.submitter = NewOrderSubmitter(variant, cfg.Submit, OrderSubmitterOptions{
			Header:     s.opts.Header,
			TimeLayout: s.opts.TimeLayout,
			Events:     s.opts.Events,
			Logger:     logger,
			Now:        s.opts.Now,
		})
		s.sessions[key] = cs
	}
	s.mu.Unlock()

	if cs.started.CompareAndSwap(false, true) {
		s.restoreDraft(ctx, cs)
		_ = cs.loader.LoadCategories(ctx, false)
	}
	return cs, nil
}

func (s *CheckoutService) state(cs *checkoutSession) *CheckoutState {
	cs.mu.Lock()
	st := &CheckoutState{
		Variant:    cs.key.variant,
		Terminal:   cs.key.terminal,
		AllowPrint: cs.config.AllowPrint,
		Cart:       cs.cart.Snapshot(),
		Receipt:    cs.receipt,
	}
	cs.mu.Unlock()

	st.Catalog = cs.loader.State()
	st.Printing = cs.printing.Load()
	st.Notices = cs.drainNotices()
	return st
}

// saveDraft must be called with cs.mu held. Failures are logged only.
func (s *CheckoutService) saveDraft(ctx context.Context, cs *checkoutSession) {
	if s.opts.Drafts == nil {
		return
	}
	if cs.cart.IsEmpty() {
		if err := s.opts.Drafts.Delete(ctx, cs.key.variant, cs.key.terminal); err != nil {
			s.logger.Warn("cart draft not deleted", zap.String("terminal", cs.key.terminal), zap.Error(err))
		}
		return
	}
	lines, err := json.Marshal(cs.cart.Lines())
	if err != nil {
		s.logger.Warn("cart draft not encoded", zap.Error(err))
		return
	}
	draft := &entity.CartDraft{Variant: cs.key.variant, Terminal: cs.key.terminal, Lines: string(lines)}
	if err := s.opts.Drafts.Save(ctx, draft); err != nil {
		s.logger.Warn("cart draft not saved", zap.String("terminal", cs.key.terminal), zap.Error(err))
	}
}

func (s *CheckoutService) restoreDraft(ctx context.Context, cs *checkoutSession) {
	if s.opts.Drafts == nil {
		return
	}
	draft, err := s.opts.Drafts.Get(ctx, cs.key.variant, cs.key.terminal)
	if err != nil {
		s.logger.Warn("cart draft not loaded", zap.String("terminal", cs.key.terminal), zap.Error(err))
		return
	}
	if draft == nil {
		return
	}
	var lines []entity.CartLine
	if err := json.Unmarshal([]byte(draft.Lines), &lines); err != nil {
		s.logger.Warn("cart draft unreadable", zap.String("terminal", cs.key.terminal), zap.Error(err))
		return
	}

	cs.mu.Lock()
	cs.cart.RestoreLines(lines)
	n := cs.cart.LineCount()
	cs.mu.Unlock()

	if n > 0 {
		cs.notify(Notice{Level: NoticeInfo, Message: "Restored the unsaved cart", At: s.opts.Now()})
	}
}
