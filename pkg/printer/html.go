package printer

import "html/template"

var templateFuncs = template.FuncMap{
	"money": money,
	"cellAlign": func(cols []Column, i int) string {
		if i < len(cols) && cols[i].Align != "" {
			return "a-" + cols[i].Align
		}
		return "a-start"
	},
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(templateFuncs).Parse(receiptHTML))

var reportTemplate = template.Must(template.New("report").Funcs(templateFuncs).Parse(reportHTML))

const receiptHTML = `<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  @page { size: 80mm auto; margin: 0; }
  * { box-sizing: border-box; }
  body { margin: 0; padding: 4mm; width: 80mm; font-family: Tahoma, Arial, sans-serif; font-size: 12px; color: #000; background: #fff; }
  .header { text-align: center; border-bottom: 1px dashed #000; padding-bottom: 6px; margin-bottom: 6px; }
  .store { font-size: 16px; font-weight: bold; }
  .meta { display: flex; justify-content: space-between; font-size: 11px; margin: 2px 0; }
  table { width: 100%; border-collapse: collapse; table-layout: fixed; }
  th, td { padding: 2px 0; text-align: start; vertical-align: top; word-wrap: break-word; }
  th { border-bottom: 1px solid #000; font-size: 11px; }
  .num { text-align: end; }
  .summary { border-top: 1px dashed #000; margin-top: 6px; padding-top: 6px; }
  .row { display: flex; justify-content: space-between; }
  .total { font-size: 14px; font-weight: bold; }
  .notes { margin-top: 6px; font-size: 11px; border-top: 1px dashed #000; padding-top: 4px; }
  .footer { text-align: center; margin-top: 10px; font-size: 11px; }
  @media screen { body { margin: 10px auto; box-shadow: 0 0 4px #999; } }
  @media print { body { box-shadow: none; } }
</style>
</head>
<body>
<div class="header">
  <div class="store">{{.StoreName}}</div>
  {{- if .Address}}<div>{{.Address}}</div>{{end}}
  {{- if .Phone}}<div>{{.Phone}}</div>{{end}}
</div>
<div class="meta"><span>Order</span><span>{{.OrderNumber}}</span></div>
<div class="meta"><span>Ref</span><span>{{.ReceiptID}}</span></div>
<div class="meta"><span>Date</span><span>{{.Timestamp}}</span></div>
<table>
  <colgroup><col style="width:46%"><col style="width:12%"><col style="width:20%"><col style="width:22%"></colgroup>
  <thead><tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr></thead>
  <tbody>
  {{- range .Lines}}
    <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.LineTotal}}</td></tr>
  {{- end}}
  </tbody>
</table>
<div class="summary">
  <div class="row"><span>Items</span><span>{{.ItemCount}}</span></div>
  <div class="row total"><span>Total</span><span>{{money .Total .Currency}}</span></div>
</div>
{{- if .Notes}}
<div class="notes">{{.Notes}}</div>
{{- end}}
{{- if .Footer}}
<div class="footer">{{.Footer}}</div>
{{- end}}
</body>
</html>
`

const reportHTML = `<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  @page { size: A4 landscape; margin: 12mm; }
  * { box-sizing: border-box; }
  body { margin: 0; font-family: Tahoma, Arial, sans-serif; font-size: 12px; color: #222; background: #fff; }
  .header { display: flex; justify-content: space-between; align-items: flex-end; border-bottom: 2px solid #333; padding-bottom: 8px; margin-bottom: 12px; }
  .header h1 { margin: 0; font-size: 20px; }
  .header .store { font-size: 14px; font-weight: bold; }
  .header .sub { color: #555; }
  .info { display: flex; flex-wrap: wrap; gap: 6px 24px; background: #f5f5f5; padding: 8px 12px; margin-bottom: 12px; border-radius: 4px; }
  .info .label { color: #666; margin-inline-end: 4px; }
  .stats { display: flex; gap: 12px; margin-bottom: 14px; }
  .card { flex: 1; border: 1px solid #ccc; border-radius: 4px; padding: 8px 12px; text-align: center; }
  .card .value { font-size: 18px; font-weight: bold; }
  .card .label { color: #666; font-size: 11px; }
  table { width: 100%; border-collapse: collapse; table-layout: fixed; }
  th, td { border: 1px solid #bbb; padding: 4px 6px; overflow: hidden; text-overflow: ellipsis; }
  th { background: #eee; }
  .a-start { text-align: start; }
  .a-center { text-align: center; }
  .a-end { text-align: end; }
  .empty { text-align: center; color: #777; padding: 16px; }
  .footer { margin-top: 14px; border-top: 1px solid #ccc; padding-top: 6px; display: flex; justify-content: space-between; color: #666; font-size: 10px; }
  @media screen { body { padding: 16px; } }
  @media print { tr { page-break-inside: avoid; } thead { display: table-header-group; } }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>{{.Title}}</h1>
    {{- if .Subtitle}}<div class="sub">{{.Subtitle}}</div>{{end}}
  </div>
  <div class="store">{{.StoreName}}</div>
</div>
{{- if .Info}}
<div class="info">
  {{- range .Info}}
  <div><span class="label">{{.Label}}:</span><span>{{.Value}}</span></div>
  {{- end}}
</div>
{{- end}}
{{- if .Stats}}
<div class="stats">
  {{- range .Stats}}
  <div class="card"><div class="value">{{.Value}}</div><div class="label">{{.Label}}</div></div>
  {{- end}}
</div>
{{- end}}
<table>
  <colgroup>
  {{- range .Columns}}<col{{if .Width}} style="width:{{.Width}}"{{end}}>{{end}}
  </colgroup>
  <thead><tr>
  {{- range .Columns}}<th class="{{with .Align}}a-{{.}}{{else}}a-start{{end}}">{{.Header}}</th>{{end}}
  </tr></thead>
  <tbody>
  {{- range $row := .Rows}}
    <tr>{{range $i, $cell := $row}}<td class="{{cellAlign $.Columns $i}}">{{$cell}}</td>{{end}}</tr>
  {{- else}}
    <tr><td class="empty" colspan="{{len .Columns}}">{{if .EmptyText}}{{.EmptyText}}{{else}}No records{{end}}</td></tr>
  {{- end}}
  </tbody>
</table>
<div class="footer">
  <span>{{.Footer}}</span>
  <span>{{.GeneratedAt}}</span>
</div>
</body>
</html>
`
