package printer

import (
	"bytes"
	"fmt"
	"html/template"
)

// Page is a rendered, self-contained printable document.
type Page struct {
	Title string
	HTML  []byte
	// ESCPOS is set for documents that also have a thermal layout.
	ESCPOS []byte
}

// Document is anything the spooler can print.
type Document interface {
	Render() (*Page, error)
}

// Layout controls text direction and language of rendered HTML.
type Layout struct {
	Dir       string // "rtl" or "ltr"
	Lang      string
	CharWidth int // thermal line width in characters
}

// DefaultLayout is right-to-left Arabic on 80mm paper.
func DefaultLayout() Layout {
	return Layout{Dir: "rtl", Lang: "ar", CharWidth: 48}
}

func (l Layout) normalized() Layout {
	if l.Dir != "ltr" {
		l.Dir = "rtl"
	}
	if l.Lang == "" {
		l.Lang = "ar"
	}
	if l.CharWidth <= 0 {
		l.CharWidth = 48
	}
	return l
}

// ReceiptLine is one printed receipt line. Money values are preformatted.
type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// ReceiptView is the data printed on a narrow thermal receipt.
type ReceiptView struct {
	StoreName   string
	Address     string
	Phone       string
	OrderNumber string
	ReceiptID   string
	Timestamp   string
	Notes       string
	Lines       []ReceiptLine
	ItemCount   int
	Total       string
	Currency    string
	Footer      string
}

// ReceiptDocument renders a receipt for 80mm thermal paper.
type ReceiptDocument struct {
	View   ReceiptView
	Layout Layout
}

func (d *ReceiptDocument) Render() (*Page, error) {
	if d == nil {
		return nil, fmt.Errorf("printer: nil receipt")
	}
	if d.View.OrderNumber == "" {
		return nil, fmt.Errorf("printer: receipt has no order number")
	}
	layout := d.Layout.normalized()
	title := "Receipt " + d.View.OrderNumber

	html, err := execute(receiptTemplate, struct {
		Layout
		Title string
		ReceiptView
	}{layout, title, d.View})
	if err != nil {
		return nil, err
	}

	return &Page{
		Title:  title,
		HTML:   html,
		ESCPOS: d.escpos(layout.CharWidth),
	}, nil
}

func (d *ReceiptDocument) escpos(width int) []byte {
	v := d.View
	t := NewTicket(width)

	t.SetAlign(AlignCenter).
		SetBold(true).
		SetFontSize(FontDouble).
		Text(v.StoreName).
		SetFontSize(FontNormal).
		SetBold(false)
	if v.Address != "" {
		t.Text(v.Address)
	}
	if v.Phone != "" {
		t.Text(v.Phone)
	}

	t.SetAlign(AlignLeft).
		Separator('-').
		KeyValue("Order:", v.OrderNumber).
		KeyValue("Date:", v.Timestamp).
		Separator('-')

	for _, l := range v.Lines {
		t.ItemLine(l.Quantity, l.Name, l.LineTotal)
		if l.Quantity > 1 {
			t.TextF("  @ %s each", l.UnitPrice)
		}
	}

	t.Separator('-').
		KeyValue("Items:", fmt.Sprintf("%d", v.ItemCount)).
		SetBold(true).
		KeyValue("TOTAL:", money(v.Total, v.Currency)).
		SetBold(false)

	if v.Notes != "" {
		t.Separator('-').Text(v.Notes)
	}

	if v.Footer != "" {
		t.SetAlign(AlignCenter).
			LineFeed().
			Text(v.Footer).
			SetAlign(AlignLeft)
	}

	return t.FeedLines(3).PartialCut().Bytes()
}

// Column describes one report table column. Width is a CSS width such as "20%".
type Column struct {
	Header string
	Width  string
	Align  string // "start", "center" or "end"
}

// StatCard is one figure in the report summary strip.
type StatCard struct {
	Label string
	Value string
}

// InfoField is one label/value pair in the report info block.
type InfoField struct {
	Label string
	Value string
}

// ReportView is the data printed on an A4 landscape report.
type ReportView struct {
	StoreName   string
	Title       string
	Subtitle    string
	GeneratedAt string
	Info        []InfoField
	Stats       []StatCard
	Columns     []Column
	Rows        [][]string
	EmptyText   string
	Footer      string
}

// ReportDocument renders a tabular report for A4 paper.
type ReportDocument struct {
	View   ReportView
	Layout Layout
}

func (d *ReportDocument) Render() (*Page, error) {
	if d == nil {
		return nil, fmt.Errorf("printer: nil report")
	}
	if len(d.View.Columns) == 0 {
		return nil, fmt.Errorf("printer: report %q has no columns", d.View.Title)
	}
	for i, row := range d.View.Rows {
		if len(row) != len(d.View.Columns) {
			return nil, fmt.Errorf("printer: report row %d has %d cells, want %d", i, len(row), len(d.View.Columns))
		}
	}

	html, err := execute(reportTemplate, struct {
		Layout
		ReportView
	}{d.Layout.normalized(), d.View})
	if err != nil {
		return nil, err
	}
	return &Page{Title: d.View.Title, HTML: html}, nil
}

func execute(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("printer: render %s: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

func money(amount, currency string) string {
	if currency == "" {
		return amount
	}
	return amount + " " + currency
}
