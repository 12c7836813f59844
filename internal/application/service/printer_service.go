package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"github.com/sangkips/pscafe-console/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PrinterOptions configures the documents a PrinterService renders.
type PrinterOptions struct {
	Type     string
	Header   entity.ReceiptHeader
	Currency string
	Footer   string
	Layout   printer.Layout
	Logger   *zap.Logger
}

// PrinterService renders receipts and reports and hands them to the spooler.
type PrinterService struct {
	spooler *printer.Spooler
	opts    PrinterOptions
	logger  *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(spooler *printer.Spooler, opts PrinterOptions) *PrinterService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Footer == "" {
		opts.Footer = "Thank you for your visit"
	}
	return &PrinterService{spooler: spooler, opts: opts, logger: logger.Named("printer")}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Type       string `json:"type"`
	printer.Status
}

// GetStatus returns the spooler and frame status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.opts.Type != "none" && s.opts.Type != "",
		Type:       s.opts.Type,
		Status:     s.spooler.Status(),
	}
}

// TestPrint prints a sample receipt. The receipt is returned even when
// printing fails so the caller can show it.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	now := time.Now()
	receipt := &entity.Receipt{
		Header:      s.opts.Header,
		ID:          "TEST",
		OrderNumber: "TEST-001",
		Variant:     enum.CheckoutDrinks,
		Lines: []entity.CartLine{
			testLine("1", "Test Item 1", 1, decimal.NewFromInt(10)),
			testLine("2", "Test Item 2", 2, decimal.NewFromInt(5)),
		},
		Total:     decimal.NewFromInt(20),
		Notes:     "Printer test",
		Timestamp: now.Format(DefaultReceiptTimeLayout),
		IssuedAt:  now,
	}
	if receipt.Header.StoreName == "" {
		receipt.Header.StoreName = "PRINTER TEST"
	}

	if err := s.PrintReceipt(ctx, receipt); err != nil {
		return receipt, err
	}
	return receipt, nil
}

func testLine(id, name string, qty int, price decimal.Decimal) entity.CartLine {
	return entity.CartLine{
		Item:      entity.CatalogItem{ID: entity.ID(id), Name: name, Price: price, IsAvailable: true},
		Quantity:  qty,
		UnitPrice: price,
		LineTotal: price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// ReceiptDocument maps a receipt onto the printable receipt layout.
func (s *PrinterService) ReceiptDocument(r *entity.Receipt) *printer.ReceiptDocument {
	view := printer.ReceiptView{
		StoreName:   r.Header.StoreName,
		Address:     r.Header.Address,
		Phone:       r.Header.Phone,
		OrderNumber: r.OrderNumber,
		ReceiptID:   r.ID.String(),
		Timestamp:   r.Timestamp,
		Notes:       r.Notes,
		Lines:       make([]printer.ReceiptLine, 0, len(r.Lines)),
		ItemCount:   r.ItemCount(),
		Total:       formatMoney(r.Total),
		Currency:    s.opts.Currency,
		Footer:      s.opts.Footer,
	}
	if view.StoreName == "" {
		view.StoreName = s.opts.Header.StoreName
	}
	for _, l := range r.Lines {
		view.Lines = append(view.Lines, printer.ReceiptLine{
			Name:      l.Item.Name,
			Quantity:  l.Quantity,
			UnitPrice: formatMoney(l.UnitPrice),
			LineTotal: formatMoney(l.LineTotal),
		})
	}
	return &printer.ReceiptDocument{View: view, Layout: s.opts.Layout}
}

// ReportDocument wraps a report view with the configured layout and store name.
func (s *PrinterService) ReportDocument(view printer.ReportView) *printer.ReportDocument {
	if view.StoreName == "" {
		view.StoreName = s.opts.Header.StoreName
	}
	return &printer.ReportDocument{View: view, Layout: s.opts.Layout}
}

// PrintReceipt spools a receipt.
func (s *PrinterService) PrintReceipt(ctx context.Context, r *entity.Receipt) error {
	if err := s.spooler.Print(ctx, s.ReceiptDocument(r)); err != nil {
		s.logger.Warn("receipt print failed", zap.String("order_number", r.OrderNumber), zap.Error(err))
		return printError(err)
	}
	return nil
}

// PrintReport spools a report.
func (s *PrinterService) PrintReport(ctx context.Context, view printer.ReportView) error {
	if err := s.spooler.Print(ctx, s.ReportDocument(view)); err != nil {
		s.logger.Warn("report print failed", zap.String("title", view.Title), zap.Error(err))
		return printError(err)
	}
	return nil
}

// Close releases the print frame.
func (s *PrinterService) Close() error {
	return s.spooler.Close()
}

// LogTransition logs spooler state changes.
func LogTransition(logger *zap.Logger) func(printer.Transition) {
	return func(t printer.Transition) {
		fields := []zap.Field{
			zap.Uint64("job", t.Job),
			zap.Stringer("from", t.From),
			zap.Stringer("to", t.To),
		}
		if t.Err != nil {
			logger.Warn("print job failed", append(fields, zap.Error(t.Err))...)
			return
		}
		logger.Debug("print job state", fields...)
	}
}

func printError(err error) error {
	switch {
	case errors.Is(err, printer.ErrPrintUnavailable):
		return apperror.ErrPrintUnavailable
	case errors.Is(err, printer.ErrPrintInProgress):
		return apperror.ErrPrintInProgress
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperror.NewUnavailableError(fmt.Sprintf("Print failed: %v", err))
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
