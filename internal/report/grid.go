package report

import (
	"github.com/qhuube/vatreport/internal/core"
	"github.com/qhuube/vatreport/internal/schema"
)

// enrichedGrid flattens an enriched report into header and cell strings
// shared by the workbook and PDF renderers. Converted amounts replace the
// original currency, net price, and shipping cells; the computed VAT columns
// are appended after the original columns.
func enrichedGrid(rep *core.Report, labels map[string]string) ([]string, [][]string) {
	t := rep.Table
	currencyCol := t.ColumnIndex(schema.FieldCurrency)
	netCol := t.ColumnIndex(schema.FieldNetPrice)
	shippingCol := t.ColumnIndex(schema.FieldShippingAmount)

	headers := make([]string, 0, len(t.Columns)+5)
	for _, col := range t.Columns {
		headers = append(headers, headerLabel(labels, col))
	}
	headers = append(headers, "VAT Rate", "VAT Amount (EUR)", "Shipping VAT (EUR)", "Total VAT (EUR)", "Gross Total (EUR)")

	rows := make([][]string, len(rep.Rows))
	for i, er := range rep.Rows {
		out := make([]string, 0, len(headers))
		for j := range t.Columns {
			switch j {
			case currencyCol:
				out = append(out, er.Currency)
			case netCol:
				out = append(out, formatFloat(er.NetPrice))
			case shippingCol:
				out = append(out, formatFloat(er.ShippingAmount))
			default:
				out = append(out, t.Cell(er.Index, j))
			}
		}
		out = append(out,
			formatFloat(er.VATRate),
			formatFloat(er.VATAmount),
			formatFloat(er.ShippingVATAmount),
			formatFloat(er.TotalVAT),
			formatFloat(er.GrossTotal),
		)
		rows[i] = out
	}
	return headers, rows
}

// summaryGrid flattens the per-country summary with a trailing totals row.
func summaryGrid(rep *core.Report) ([]string, [][]string) {
	headers := []string{"Country", "Net Sales (EUR)", "VAT Amount (EUR)"}
	rows := make([][]string, 0, len(rep.Summary)+1)
	for _, s := range rep.Summary {
		rows = append(rows, []string{s.Country, formatFloat(s.NetSales), formatFloat(s.VATAmount)})
	}
	rows = append(rows, []string{"Total", formatFloat(rep.Totals.NetPrice), formatFloat(rep.Totals.VATAmount)})
	return headers, rows
}
