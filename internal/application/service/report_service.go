package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
	"github.com/sangkips/pscafe-console/internal/domain/repository"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"github.com/sangkips/pscafe-console/pkg/pagination"
	"github.com/sangkips/pscafe-console/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportFilter narrows a report. ClientID applies to session reports only
// and takes precedence over the date range there.
type ReportFilter struct {
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	ClientID entity.ID  `json:"client_id,omitempty"`
}

// Validate rejects a range that ends before it starts.
func (f ReportFilter) Validate() error {
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return apperror.ErrInvalidDateRange
	}
	return nil
}

// ReportField is a labelled value in a report's info block or stats strip.
type ReportField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Report is an aggregated, read-only view of backend records.
type Report struct {
	Kind        enum.ReportKind `json:"kind"`
	Title       string          `json:"title"`
	Filter      ReportFilter    `json:"filter"`
	Info        []ReportField   `json:"info"`
	Stats       []ReportField   `json:"stats"`
	Columns     []string        `json:"columns"`
	GeneratedAt time.Time       `json:"generated_at"`

	columns []printer.Column
	rows    [][]string
}

// RowCount is the number of table rows.
func (r *Report) RowCount() int {
	return len(r.rows)
}

// ReportPage is a report with one page of its rows.
type ReportPage struct {
	*Report
	Rows pagination.Result[[]string] `json:"rows"`
}

// ReportOptions configures a ReportService.
type ReportOptions struct {
	TimeLayout string
	Currency   string
	Logger     *zap.Logger
	Now        func() time.Time
}

type reportKey struct {
	kind     enum.ReportKind
	terminal string
}

// ReportService builds sales and session reports and keeps the last report
// of each terminal for printing.
type ReportService struct {
	sales    repository.SaleRepository
	sessions repository.SessionRepository
	clients  repository.ClientRepository
	rooms    repository.RoomRepository
	printer  *PrinterService
	opts     ReportOptions
	logger   *zap.Logger

	mu   sync.Mutex
	last map[reportKey]*Report
}

// NewReportService creates a new report service. clients and rooms may be nil;
// names are then shown as sent by the backend.
func NewReportService(
	sales repository.SaleRepository,
	sessions repository.SessionRepository,
	clients repository.ClientRepository,
	rooms repository.RoomRepository,
	printerService *PrinterService,
	opts ReportOptions,
) *ReportService {
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultReceiptTimeLayout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReportService{
		sales:    sales,
		sessions: sessions,
		clients:  clients,
		rooms:    rooms,
		printer:  printerService,
		opts:     opts,
		logger:   opts.Logger.Named("reports"),
		last:     make(map[reportKey]*Report),
	}
}

// SalesReport fetches direct sales in the filter's range. An invalid range is
// rejected before fetching and leaves the terminal's last report unchanged.
func (s *ReportService) SalesReport(ctx context.Context, terminal string, filter ReportFilter, page pagination.Params) (*ReportPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	sales, err := s.sales.ListSales(ctx, filter.Start, filter.End)
	if err != nil {
		s.logger.Warn("sales report fetch failed", zap.Error(err))
		return nil, err
	}

	report := s.buildSales(filter, sales)
	s.remember(terminal, report)
	return paginateReport(report, page), nil
}

// SessionsReport fetches sessions of one client, or of the filter's range.
func (s *ReportService) SessionsReport(ctx context.Context, terminal string, filter ReportFilter, page pagination.Params) (*ReportPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListSessions(ctx, repository.SessionQuery{
		ClientID: filter.ClientID,
		Start:    filter.Start,
		End:      filter.End,
	})
	if err != nil {
		s.logger.Warn("sessions report fetch failed", zap.Error(err))
		return nil, err
	}

	clientNames, roomNames := s.lookupNames(ctx, sessions, filter.ClientID)
	report := s.buildSessions(filter, sessions, clientNames, roomNames)
	s.remember(terminal, report)
	return paginateReport(report, page), nil
}

// LastReport returns the last report of kind generated on terminal.
func (s *ReportService) LastReport(kind enum.ReportKind, terminal string) (*ReportPage, error) {
	r, err := s.lastReport(kind, terminal)
	if err != nil {
		return nil, err
	}
	return paginateReport(r, pagination.Params{}), nil
}

// RenderReport renders the last report of kind as a printable page.
func (s *ReportService) RenderReport(kind enum.ReportKind, terminal string) (*printer.Page, error) {
	r, err := s.lastReport(kind, terminal)
	if err != nil {
		return nil, err
	}
	return s.printer.ReportDocument(s.view(r)).Render()
}

// PrintReport spools the last report of kind.
func (s *ReportService) PrintReport(ctx context.Context, kind enum.ReportKind, terminal string) error {
	r, err := s.lastReport(kind, terminal)
	if err != nil {
		return err
	}
	return s.printer.PrintReport(ctx, s.view(r))
}

func (s *ReportService) lastReport(kind enum.ReportKind, terminal string) (*Report, error) {
	if terminal == "" {
		terminal = DefaultTerminal
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.last[reportKey{kind, terminal}]
	if !ok {
		return nil, apperror.ErrNoReport
	}
	return r, nil
}

func (s *ReportService) remember(terminal string, r *Report) {
	if terminal == "" {
		terminal = DefaultTerminal
	}
	s.mu.Lock()
	s.last[reportKey{r.Kind, terminal}] = r
	s.mu.Unlock()
}

func (s *ReportService) buildSales(filter ReportFilter, sales []entity.Sale) *Report {
	r := &Report{
		Kind:        enum.ReportSales,
		Title:       "Drink sales report",
		Filter:      filter,
		Info:        s.rangeInfo(filter),
		GeneratedAt: s.opts.Now(),
		columns: []printer.Column{
			{Header: "#", Width: "8%", Align: "center"},
			{Header: "Date", Width: "16%"},
			{Header: "Items", Width: "38%"},
			{Header: "Qty", Width: "8%", Align: "center"},
			{Header: "Notes", Width: "16%"},
			{Header: "Total", Width: "14%", Align: "end"},
		},
	}

	revenue := decimal.Zero
	quantity := 0
	distinct := make(map[string]struct{})
	for _, sale := range sales {
		total := sale.Total()
		revenue = revenue.Add(total)
		quantity += sale.Quantity()

		names := make([]string, 0, len(sale.Items))
		for _, it := range sale.Items {
			key := it.ItemID.String()
			if key == "" {
				key = it.Name()
			}
			distinct[key] = struct{}{}
			names = append(names, fmt.Sprintf("%s x%d", it.Name(), it.Quantity))
		}

		r.rows = append(r.rows, []string{
			sale.ID.String(),
			s.formatTime(sale.CreatedAt.Time),
			strings.Join(names, ", "),
			strconv.Itoa(sale.Quantity()),
			sale.Notes,
			formatMoney(total),
		})
	}

	r.Stats = []ReportField{
		{Label: "Sales", Value: strconv.Itoa(len(sales))},
		{Label: "Revenue", Value: s.money(revenue)},
		{Label: "Units sold", Value: strconv.Itoa(quantity)},
		{Label: "Distinct items", Value: strconv.Itoa(len(distinct))},
	}
	r.Columns = headers(r.columns)
	return r
}

func (s *ReportService) buildSessions(filter ReportFilter, sessions []entity.Session, clientNames, roomNames map[entity.ID]string) *Report {
	now := s.opts.Now()
	r := &Report{
		Kind:        enum.ReportSessions,
		Title:       "Sessions report",
		Filter:      filter,
		GeneratedAt: now,
		columns: []printer.Column{
			{Header: "#", Width: "7%", Align: "center"},
			{Header: "Client", Width: "19%"},
			{Header: "Room", Width: "14%"},
			{Header: "Start", Width: "17%"},
			{Header: "End", Width: "17%"},
			{Header: "Hours", Width: "12%", Align: "center"},
			{Header: "Total", Width: "14%", Align: "end"},
		},
	}
	if !filter.ClientID.IsZero() {
		name := clientNames[filter.ClientID]
		if name == "" {
			name = "#" + filter.ClientID.String()
		}
		r.Info = []ReportField{{Label: "Client", Value: name}}
	} else {
		r.Info = s.rangeInfo(filter)
	}

	revenue := decimal.Zero
	hours := 0.0
	for _, ss := range sessions {
		revenue = revenue.Add(ss.TotalPrice)
		h := ss.Duration(now)
		hours += h

		client := ss.ClientName()
		if client == "" {
			client = clientNames[ss.ClientID]
		}
		room := ss.RoomName()
		if room == "" {
			room = roomNames[ss.RoomID]
		}
		end := "-"
		if !ss.EndTime.IsZero() {
			end = s.formatTime(ss.EndTime.Time)
		}

		r.rows = append(r.rows, []string{
			ss.ID.String(),
			client,
			room,
			s.formatTime(ss.StartTime.Time),
			end,
			strconv.FormatFloat(h, 'f', 2, 64),
			formatMoney(ss.TotalPrice),
		})
	}

	r.Stats = []ReportField{
		{Label: "Sessions", Value: strconv.Itoa(len(sessions))},
		{Label: "Revenue", Value: s.money(revenue)},
		{Label: "Hours played", Value: strconv.FormatFloat(hours, 'f', 2, 64)},
	}
	r.Columns = headers(r.columns)
	return r
}

// lookupNames resolves client and room names the backend left out. Lookups
// are best effort; a failed lookup leaves the names blank.
func (s *ReportService) lookupNames(ctx context.Context, sessions []entity.Session, clientID entity.ID) (map[entity.ID]string, map[entity.ID]string) {
	needClients := !clientID.IsZero()
	needRooms := false
	for _, ss := range sessions {
		if ss.ClientName() == "" && !ss.ClientID.IsZero() {
			needClients = true
		}
		if ss.RoomName() == "" && !ss.RoomID.IsZero() {
			needRooms = true
		}
	}

	clientNames := map[entity.ID]string{}
	if needClients && s.clients != nil {
		clients, err := s.clients.ListClients(ctx)
		if err != nil {
			s.logger.Warn("client names unavailable", zap.Error(err))
		}
		for _, c := range clients {
			clientNames[c.ID] = c.Name
		}
	}

	roomNames := map[entity.ID]string{}
	if needRooms && s.rooms != nil {
		rooms, err := s.rooms.ListRooms(ctx)
		if err != nil {
			s.logger.Warn("room names unavailable", zap.Error(err))
		}
		for _, rm := range rooms {
			roomNames[rm.ID] = rm.Name
		}
	}
	return clientNames, roomNames
}

func (s *ReportService) view(r *Report) printer.ReportView {
	v := printer.ReportView{
		Title:       r.Title,
		GeneratedAt: s.formatTime(r.GeneratedAt),
		Columns:     r.columns,
		Rows:        r.rows,
		EmptyText:   "No records for the selected filter",
		Footer:      fmt.Sprintf("%d records", len(r.rows)),
	}
	for _, f := range r.Info {
		v.Info = append(v.Info, printer.InfoField{Label: f.Label, Value: f.Value})
	}
	for _, f := range r.Stats {
		v.Stats = append(v.Stats, printer.StatCard{Label: f.Label, Value: f.Value})
	}
	return v
}

func (s *ReportService) rangeInfo(filter ReportFilter) []ReportField {
	var info []ReportField
	if filter.Start != nil {
		info = append(info, ReportField{Label: "From", Value: s.formatTime(*filter.Start)})
	}
	if filter.End != nil {
		info = append(info, ReportField{Label: "To", Value: s.formatTime(*filter.End)})
	}
	if info == nil {
		info = []ReportField{{Label: "Period", Value: "All time"}}
	}
	return info
}

func (s *ReportService) formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(s.opts.TimeLayout)
}

func (s *ReportService) money(d decimal.Decimal) string {
	if s.opts.Currency == "" {
		return formatMoney(d)
	}
	return formatMoney(d) + " " + s.opts.Currency
}

func headers(cols []printer.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

func paginateReport(r *Report, page pagination.Params) *ReportPage {
	return &ReportPage{Report: r, Rows: pagination.Paginate(r.rows, page)}
}
