package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/qhuube/vatreport/internal/core"
)

// tablePDF renders a titled table as a landscape A4 document. Column widths
// are proportional to the longest content in each column.
func tablePDF(title string, headers []string, rows [][]string) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := columnWidths(headers, rows, 277) // printable width of landscape A4 with margins

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(217, 217, 217)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		for i := range headers {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths distributes the printable width across columns in proportion
// to each column's longest cell, with a floor so narrow columns stay legible.
func columnWidths(headers []string, rows [][]string, printable float64) []float64 {
	longest := make([]int, len(headers))
	total := 0
	for i, h := range headers {
		longest[i] = len(h)
		for _, row := range rows {
			if i < len(row) && len(row[i]) > longest[i] {
				longest[i] = len(row[i])
			}
		}
		if longest[i] < 6 {
			longest[i] = 6
		}
		total += longest[i]
	}

	widths := make([]float64, len(headers))
	for i := range headers {
		widths[i] = printable * float64(longest[i]) / float64(total)
	}
	return widths
}

// VATReportPDF renders the enriched table followed by the overall totals.
func VATReportPDF(rep *core.Report, labels map[string]string) ([]byte, error) {
	headers, rows := enrichedGrid(rep, labels)
	rows = append(rows,
		[]string{},
		[]string{"Overall Net Price (EUR)", formatFloat(rep.Totals.NetPrice)},
		[]string{"Overall VAT Amount (EUR)", formatFloat(rep.Totals.VATAmount)},
		[]string{"Overall Gross Total (EUR)", formatFloat(rep.Totals.GrossTotal)},
	)
	return tablePDF("VAT Report", headers, rows)
}

// SummaryPDF renders the per-country summary.
func SummaryPDF(rep *core.Report) ([]byte, error) {
	headers, rows := summaryGrid(rep)
	return tablePDF("VAT Summary by Country", headers, rows)
}
