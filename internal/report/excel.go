// Package report materializes validation and enrichment output into Excel
// workbooks, PDF tables, and the ZIP bundle used for download and email
// delivery.
package report

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/qhuube/vatreport/internal/core"
)

const dataSheet = "Data"

// workbookStyles holds the style ids registered on one workbook.
type workbookStyles struct {
	header int
	red    int
	orange int
	yellow int
}

func newWorkbook() (*excelize.File, workbookStyles, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), dataSheet); err != nil {
		return nil, workbookStyles{}, fmt.Errorf("rename sheet: %w", err)
	}

	var styles workbookStyles
	var err error
	styles.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
	})
	if err == nil {
		styles.red, err = f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Color: "9C0006"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		})
	}
	if err == nil {
		styles.orange, err = f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"FFD966"}, Pattern: 1},
		})
	}
	if err == nil {
		styles.yellow, err = f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"FFEB9C"}, Pattern: 1},
		})
	}
	if err != nil {
		return nil, workbookStyles{}, fmt.Errorf("register styles: %w", err)
	}
	return f, styles, nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleCell(f *excelize.File, sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

func styleRow(f *excelize.File, sheet string, row, width, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

// autosize widens each column to roughly fit its longest cell.
func autosize(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	for i, h := range headers {
		width := len(h)
		for _, row := range rows {
			if i < len(row) && len(row[i]) > width {
				width = len(row[i])
			}
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if width < 10 {
			width = 10
		}
		if width > 50 {
			width = 50
		}
		if err := f.SetColWidth(sheet, name, name, float64(width)+2); err != nil {
			return err
		}
	}
	return nil
}

func headerLabel(labels map[string]string, column string) string {
	if label, ok := labels[column]; ok {
		return label
	}
	return column
}

// AnnotatedWorkbook renders the uploaded table with every validation finding
// made visible: placeholder columns for missing headers in red, missing
// cells in orange, type and date violations in red, plus a sheet listing the
// findings in full.
func AnnotatedWorkbook(t *core.Table, result *core.ValidationResult) ([]byte, error) {
	f, styles, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	headers := make([]string, 0, len(t.Columns)+len(result.MissingHeadersDetailed))
	for _, col := range t.Columns {
		headers = append(headers, headerLabel(result.HeaderLabels, col))
	}
	for _, mh := range result.MissingHeadersDetailed {
		headers = append(headers, mh.Label+" (missing)")
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]string, len(headers))
		copy(out, row)
		rows[i] = out
	}

	if err := setRow(f, dataSheet, 1, headers); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	for i, row := range rows {
		if err := setRow(f, dataSheet, i+2, row); err != nil {
			return nil, fmt.Errorf("write data row %d: %w", i+2, err)
		}
	}
	if err := styleRow(f, dataSheet, 1, len(headers), styles.header); err != nil {
		return nil, err
	}

	// Missing header placeholder columns stay red for the whole column.
	for i := range result.MissingHeadersDetailed {
		col := len(t.Columns) + i + 1
		for row := 1; row <= len(rows)+1; row++ {
			if err := styleCell(f, dataSheet, col, row, styles.red); err != nil {
				return nil, err
			}
		}
	}

	for _, issue := range result.DataIssues {
		col := t.ColumnIndex(issue.Field) + 1
		if col == 0 {
			continue
		}
		style := styles.red
		if issue.Kind == core.IssueMissingData {
			style = styles.orange
		}
		for _, displayRow := range issueRows(issue) {
			if err := styleCell(f, dataSheet, col, displayRow, style); err != nil {
				return nil, err
			}
		}
	}

	if err := writeIssueSheet(f, result); err != nil {
		return nil, err
	}
	if err := autosize(f, dataSheet, headers, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// issueRows returns the sheet rows an issue points at. Display rows already
// account for the header, so they map straight onto sheet rows.
func issueRows(issue core.Issue) []int {
	if issue.Kind == core.IssueInvalidQuarter {
		rows := make([]int, len(issue.Quarter))
		for i, v := range issue.Quarter {
			rows[i] = v.Row
		}
		return rows
	}
	return issue.Rows
}

func writeIssueSheet(f *excelize.File, result *core.ValidationResult) error {
	const sheet = "Validation Issues"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create issues sheet: %w", err)
	}

	headers := []string{"Issue Type", "Column", "Description", "Affected Rows", "Percentage"}
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, mh := range result.MissingHeadersDetailed {
		cells := []string{string(core.IssueMissingHeader), mh.Label, mh.Description, "", ""}
		if err := setRow(f, sheet, row, cells); err != nil {
			return err
		}
		row++
	}
	for _, issue := range result.DataIssues {
		cells := []string{
			string(issue.Kind),
			issue.Label,
			issue.Description,
			strconv.Itoa(issue.Count),
			formatFloat(issue.Percentage) + "%",
		}
		if err := setRow(f, sheet, row, cells); err != nil {
			return err
		}
		row++
	}
	return autosize(f, sheet, headers, nil)
}

// VATReportWorkbook renders the enriched rows with the computed VAT columns
// and the overall totals below the table.
func VATReportWorkbook(rep *core.Report, labels map[string]string) ([]byte, error) {
	f, styles, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	headers, rows := enrichedGrid(rep, labels)
	if err := setRow(f, dataSheet, 1, headers); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	for i, row := range rows {
		if err := setRow(f, dataSheet, i+2, row); err != nil {
			return nil, fmt.Errorf("write data row %d: %w", i+2, err)
		}
	}
	if err := styleRow(f, dataSheet, 1, len(headers), styles.header); err != nil {
		return nil, err
	}

	totalsRow := len(rows) + 3
	totals := [][]string{
		{"Overall Net Price (EUR)", formatFloat(rep.Totals.NetPrice)},
		{"Overall VAT Amount (EUR)", formatFloat(rep.Totals.VATAmount)},
		{"Overall Gross Total (EUR)", formatFloat(rep.Totals.GrossTotal)},
	}
	for i, cells := range totals {
		if err := setRow(f, dataSheet, totalsRow+i, cells); err != nil {
			return nil, fmt.Errorf("write totals row: %w", err)
		}
		if err := styleCell(f, dataSheet, 1, totalsRow+i, styles.header); err != nil {
			return nil, err
		}
	}

	if err := autosize(f, dataSheet, headers, rows); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SummaryWorkbook renders the per-country totals.
func SummaryWorkbook(rep *core.Report) ([]byte, error) {
	f, styles, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	headers, rows := summaryGrid(rep)
	if err := setRow(f, dataSheet, 1, headers); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	for i, row := range rows {
		if err := setRow(f, dataSheet, i+2, row); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}
	if err := styleRow(f, dataSheet, 1, len(headers), styles.header); err != nil {
		return nil, err
	}
	if err := autosize(f, dataSheet, headers, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// QuarterIssuesWorkbook renders the uploaded table with every quarter
// violation highlighted, a legend below the data, and an "Issue Details"
// sheet listing each violating row with its reason.
func QuarterIssuesWorkbook(t *core.Table, issue *core.Issue, labels map[string]string) ([]byte, error) {
	f, styles, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = headerLabel(labels, col)
	}
	if err := setRow(f, dataSheet, 1, headers); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = row
		if err := setRow(f, dataSheet, i+2, row); err != nil {
			return nil, fmt.Errorf("write data row %d: %w", i+2, err)
		}
	}
	if err := styleRow(f, dataSheet, 1, len(headers), styles.header); err != nil {
		return nil, err
	}

	for _, v := range issue.Quarter {
		if err := styleRow(f, dataSheet, v.Row, len(headers), styles.red); err != nil {
			return nil, err
		}
	}

	legendRow := len(t.Rows) + 3
	if err := setRow(f, dataSheet, legendRow, []string{"Highlighted rows have order dates outside the accepted previous quarter"}); err != nil {
		return nil, err
	}
	if err := styleCell(f, dataSheet, 1, legendRow, styles.red); err != nil {
		return nil, err
	}

	const detailSheet = "Issue Details"
	if _, err := f.NewSheet(detailSheet); err != nil {
		return nil, fmt.Errorf("create detail sheet: %w", err)
	}
	detailHeaders := []string{"Row", "Order Date", "Issue"}
	if err := setRow(f, detailSheet, 1, detailHeaders); err != nil {
		return nil, err
	}
	for i, v := range issue.Quarter {
		cells := []string{strconv.Itoa(v.Row), v.Value, v.Reason}
		if err := setRow(f, detailSheet, i+2, cells); err != nil {
			return nil, err
		}
	}
	if err := autosize(f, detailSheet, detailHeaders, nil); err != nil {
		return nil, err
	}
	if err := autosize(f, dataSheet, headers, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ManualReviewWorkbook renders the uploaded table with a status column and
// the rows that found no VAT rule highlighted.
func ManualReviewWorkbook(set *core.ManualReviewSet, labels map[string]string) ([]byte, error) {
	f, styles, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	t := set.Table
	flagged := make(map[int]bool, len(set.Indexes))
	for _, idx := range set.Indexes {
		flagged[idx] = true
	}

	headers := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		headers = append(headers, headerLabel(labels, col))
	}
	headers = append(headers, "Status")
	if err := setRow(f, dataSheet, 1, headers); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]string, len(headers))
		copy(out, row)
		if flagged[i] {
			out[len(headers)-1] = string(core.StatusNotFound)
		}
		rows[i] = out
		if err := setRow(f, dataSheet, i+2, out); err != nil {
			return nil, fmt.Errorf("write data row %d: %w", i+2, err)
		}
		if flagged[i] {
			if err := styleRow(f, dataSheet, i+2, len(headers), styles.yellow); err != nil {
				return nil, err
			}
		}
	}
	if err := styleRow(f, dataSheet, 1, len(headers), styles.header); err != nil {
		return nil, err
	}
	if err := autosize(f, dataSheet, headers, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
