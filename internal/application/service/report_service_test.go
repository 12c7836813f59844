package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"github.com/sangkips/pscafe-console/pkg/pagination"
	"github.com/sangkips/pscafe-console/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) entity.Timestamp {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		panic(err)
	}
	return entity.Timestamp{Time: t}
}

func newReportService(t *testing.T, reports *fakeReports) (*ReportService, *printer.SpoolFrame) {
	t.Helper()
	frame, err := printer.NewSpoolFrame(t.TempDir())
	require.NoError(t, err)
	ps := NewPrinterService(printer.NewSpooler(frame, printer.SpoolerOptions{}), PrinterOptions{
		Header: entity.ReceiptHeader{StoreName: "PS Café"},
	})
	svc := NewReportService(reports, reports, reports, reports, ps, ReportOptions{
		Now: fixedClock(time.Date(2024, 5, 2, 12, 0, 0, 0, time.Local)),
	})
	return svc, frame
}

func sampleSales() []entity.Sale {
	cola := &entity.CatalogItem{ID: "7", Name: "Cola"}
	tea := &entity.CatalogItem{ID: "8", Name: "Tea"}
	return []entity.Sale{
		{
			ID:         "1",
			TotalPrice: decimal.NewFromInt(40),
			CreatedAt:  ts("2024-05-01 10:00"),
			Items: []entity.SaleItem{
				{ItemID: "7", Quantity: 2, UnitPrice: decimal.NewFromInt(12), TotalPrice: decimal.NewFromInt(24), Item: cola},
				{ItemID: "8", Quantity: 2, UnitPrice: decimal.NewFromInt(8), TotalPrice: decimal.NewFromInt(16), Item: tea},
			},
		},
		{
			ID:        "2",
			CreatedAt: ts("2024-05-01 11:30"),
			Notes:     "staff",
			Items: []entity.SaleItem{
				{ItemID: "7", Quantity: 1, UnitPrice: decimal.NewFromInt(12), Item: cola},
			},
		},
	}
}

func stat(r *ReportPage, label string) string {
	for _, s := range r.Stats {
		if s.Label == label {
			return s.Value
		}
	}
	return ""
}

func TestSalesReportStats(t *testing.T) {
	reports := &fakeReports{sales: sampleSales()}
	svc, _ := newReportService(t, reports)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	end := start.Add(24 * time.Hour)

	page, err := svc.SalesReport(context.Background(), "", ReportFilter{Start: &start, End: &end}, pagination.Params{})
	require.NoError(t, err)

	assert.Equal(t, enum.ReportSales, page.Kind)
	assert.Equal(t, "2", stat(page, "Sales"))
	assert.Equal(t, "52.00", stat(page, "Revenue"))
	assert.Equal(t, "5", stat(page, "Units sold"))
	assert.Equal(t, "2", stat(page, "Distinct items"))

	require.Len(t, page.Rows.Items, 2)
	assert.Equal(t, []string{"1", "2024-05-01 10:00", "Cola x2, Tea x2", "4", "", "40.00"}, page.Rows.Items[0])
	assert.Equal(t, "12.00", page.Rows.Items[1][5])
	assert.Equal(t, []string{"#", "Date", "Items", "Qty", "Notes", "Total"}, page.Columns)
}

func TestInvalidRangeIsRejectedBeforeFetch(t *testing.T) {
	reports := &fakeReports{sales: sampleSales()}
	svc, _ := newReportService(t, reports)
	ctx := context.Background()

	_, err := svc.SalesReport(ctx, "", ReportFilter{}, pagination.Params{})
	require.NoError(t, err)
	before, err := svc.LastReport(enum.ReportSales, "")
	require.NoError(t, err)

	start := time.Date(2024, 5, 3, 0, 0, 0, 0, time.Local)
	end := start.Add(-48 * time.Hour)
	_, err = svc.SalesReport(ctx, "", ReportFilter{Start: &start, End: &end}, pagination.Params{})

	assert.ErrorIs(t, err, apperror.ErrInvalidDateRange)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 1, reports.salesCalls)
	after, err := svc.LastReport(enum.ReportSales, "")
	require.NoError(t, err)
	assert.Same(t, before.Report, after.Report)
}

func TestFetchFailureKeepsLastReport(t *testing.T) {
	reports := &fakeReports{sales: sampleSales()}
	svc, _ := newReportService(t, reports)
	ctx := context.Background()
	_, err := svc.SalesReport(ctx, "", ReportFilter{}, pagination.Params{})
	require.NoError(t, err)

	reports.err = errBackendDown
	_, err = svc.SalesReport(ctx, "", ReportFilter{}, pagination.Params{})
	require.Error(t, err)

	last, err := svc.LastReport(enum.ReportSales, "")
	require.NoError(t, err)
	assert.Equal(t, 2, last.RowCount())
}

func TestSessionsReportResolvesNames(t *testing.T) {
	reports := &fakeReports{
		sessions: []entity.Session{
			{ID: "1", ClientID: "5", RoomID: "2", StartTime: ts("2024-05-01 10:00"), EndTime: ts("2024-05-01 12:30"), TotalPrice: decimal.NewFromInt(50)},
			{ID: "2", ClientID: "5", Room: &entity.Room{ID: "3", Name: "VIP"}, StartTime: ts("2024-05-02 11:00"), TotalPrice: decimal.NewFromInt(20)},
		},
		clients: []entity.Client{{ID: "5", Name: "Omar"}},
		rooms:   []entity.Room{{ID: "2", Name: "Room 2"}},
	}
	svc, _ := newReportService(t, reports)

	page, err := svc.SessionsReport(context.Background(), "desk", ReportFilter{ClientID: "5"}, pagination.Params{})
	require.NoError(t, err)

	assert.Equal(t, entity.ID("5"), reports.lastQuery.ClientID)
	assert.Equal(t, []ReportField{{Label: "Client", Value: "Omar"}}, page.Info)
	assert.Equal(t, "2", stat(page, "Sessions"))
	assert.Equal(t, "70.00", stat(page, "Revenue"))
	assert.Equal(t, "3.50", stat(page, "Hours played"))

	rows := page.Rows.Items
	assert.Equal(t, []string{"1", "Omar", "Room 2", "2024-05-01 10:00", "2024-05-01 12:30", "2.50", "50.00"}, rows[0])
	assert.Equal(t, "VIP", rows[1][2])
	assert.Equal(t, "-", rows[1][4])
	assert.Equal(t, "1.00", rows[1][5])

	_, err = svc.LastReport(enum.ReportSessions, "")
	assert.ErrorIs(t, err, apperror.ErrNoReport, "reports are kept per terminal")
}

func TestReportRowsArePaginated(t *testing.T) {
	var sales []entity.Sale
	for i := 0; i < 5; i++ {
		sales = append(sales, entity.Sale{ID: entity.ID(string(rune('a' + i))), TotalPrice: decimal.NewFromInt(1)})
	}
	svc, _ := newReportService(t, &fakeReports{sales: sales})

	page, err := svc.SalesReport(context.Background(), "", ReportFilter{}, pagination.Params{Page: 2, PerPage: 2})
	require.NoError(t, err)

	assert.Len(t, page.Rows.Items, 2)
	assert.Equal(t, "c", page.Rows.Items[0][0])
	assert.Equal(t, int64(5), page.Rows.Pagination.Total)
}

func TestRenderAndPrintLastReport(t *testing.T) {
	svc, frame := newReportService(t, &fakeReports{sales: sampleSales()})
	ctx := context.Background()

	_, err := svc.RenderReport(enum.ReportSales, "")
	assert.ErrorIs(t, err, apperror.ErrNoReport)

	_, err = svc.SalesReport(ctx, "", ReportFilter{}, pagination.Params{})
	require.NoError(t, err)

	page, err := svc.RenderReport(enum.ReportSales, "")
	require.NoError(t, err)
	html := string(page.HTML)
	assert.Contains(t, html, `dir="rtl"`)
	assert.Contains(t, html, "Drink sales report")
	assert.Contains(t, html, "Cola x2, Tea x2")
	assert.Contains(t, html, "All time")

	require.NoError(t, svc.PrintReport(ctx, enum.ReportSales, ""))
	assert.NotEmpty(t, frame.LastPath())
}
