package quotations

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

var quotationTemplate = template.Must(template.New("quotation").Funcs(template.FuncMap{
	"money": FormatAmount,
	"date": func(t time.Time) string {
		return t.Format("02 Jan 2006")
	},
	"pct": func(v float64) string {
		return fmt.Sprintf("%g%%", v)
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1f2933; margin: 40px; }
  h1 { font-size: 22px; margin-bottom: 0; }
  .muted { color: #6b7280; font-size: 12px; }
  .header { display: flex; justify-content: space-between; margin-bottom: 32px; }
  table { width: 100%; border-collapse: collapse; margin-top: 24px; }
  th { text-align: left; border-bottom: 2px solid #1f2933; padding: 8px 4px; font-size: 12px; text-transform: uppercase; }
  td { border-bottom: 1px solid #e5e7eb; padding: 8px 4px; font-size: 13px; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 16px; margin-left: auto; width: 280px; }
  .totals td { border: none; padding: 4px; }
  .totals tr.grand td { border-top: 2px solid #1f2933; font-weight: bold; }
  .notes { margin-top: 32px; font-size: 12px; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <h1>Quotation {{.QuotationNumber}}</h1>
      <div class="muted">Issued {{date .IssueDate}} &middot; Valid until {{date .ExpiryDate}}</div>
    </div>
    <div>
      <strong>{{.Client.Name}}</strong><br>
      {{if .Client.Company}}{{.Client.Company}}<br>{{end}}
      {{.Client.Email}}<br>
      {{if .Client.Phone}}{{.Client.Phone}}<br>{{end}}
      {{if .Client.Address}}{{.Client.Address}}{{end}}
    </div>
  </div>

  <table>
    <thead>
      <tr><th>Description</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Amount</th></tr>
    </thead>
    <tbody>
    {{$currency := .Currency}}
    {{range .Items}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{.Quantity}}</td>
        <td class="num">{{money $currency .UnitPrice}}</td>
        <td class="num">{{money $currency .Total}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>

  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{money .Currency .Subtotal}}</td></tr>
    {{if gt .Discount 0.0}}<tr><td>Discount</td><td class="num">-{{money .Currency .Discount}}</td></tr>{{end}}
    <tr><td>Tax ({{pct .TaxRate}})</td><td class="num">{{money .Currency .TaxAmount}}</td></tr>
    <tr class="grand"><td>Total</td><td class="num">{{money .Currency .Total}}</td></tr>
  </table>

  {{if .Notes}}<div class="notes"><strong>Notes</strong><br>{{.Notes}}</div>{{end}}
  {{if .Terms}}<div class="notes"><strong>Terms</strong><br>{{.Terms}}</div>{{end}}
</body>
</html>`))

// RenderHTML produces the printable HTML document for a quotation. The
// renderer turns this into the PDF returned by the download endpoint.
func RenderHTML(q *Quotation) (string, error) {
	var out strings.Builder
	if err := quotationTemplate.Execute(&out, q); err != nil {
		return "", fmt.Errorf("render quotation template: %w", err)
	}
	return out.String(), nil
}
