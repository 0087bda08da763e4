// Package core implements the validation and enrichment pipeline for
// merchant order uploads. This package has no HTTP or storage dependencies:
// the catalog (canonical fields, VAT rules, currency rates) is injected as a
// read-only snapshot, and the output is plain data consumed by the report
// and web layers.
package core

import (
	"context"

	"github.com/qhuube/vatreport/internal/schema"
)

// Row is one spreadsheet row, cells aligned with Table.Columns.
type Row []string

// Table is a parsed upload: a header row plus data rows. After header
// resolution each column name is either a canonical field identifier or an
// unrecognized passthrough column; no name appears twice.
type Table struct {
	Columns []string
	Rows    []Row
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col), tolerating ragged rows.
func (t *Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Renamed returns a copy of the table with columns renamed through the
// given mapping; unmapped columns keep their names. Used to swap canonical
// identifiers for human labels in report output.
func (t *Table) Renamed(names map[string]string) *Table {
	columns := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		if name, ok := names[col]; ok {
			columns[i] = name
		} else {
			columns[i] = col
		}
	}
	return &Table{Columns: columns, Rows: t.Rows}
}

// DisplayRow converts a 0-based data row index to the 1-based spreadsheet
// row number users see (header row occupies row 1).
func DisplayRow(idx int) int { return idx + 2 }

// IssueKind tags one class of detected data problem.
type IssueKind string

const (
	IssueMissingHeader  IssueKind = "MISSING_HEADER"
	IssueMissingData    IssueKind = "MISSING_DATA"
	IssueInvalidType    IssueKind = "INVALID_TYPE"
	IssueInvalidQuarter IssueKind = "INVALID_QUARTER"
)

// maxListedRows caps how many affected row numbers an issue lists. The true
// count and percentage always cover every affected row.
const maxListedRows = 10

// QuarterViolation is one rejected order date; quarter issues keep full
// per-row detail because the admin notification needs all of them.
type QuarterViolation struct {
	Row    int    `json:"row"`   // 1-based spreadsheet row
	Value  string `json:"value"` // raw cell content
	Reason string `json:"issue"`
}

// Issue describes one detected problem in a validated upload.
type Issue struct {
	Kind        IssueKind          `json:"issue_type"`
	Field       string             `json:"header_value"`
	Label       string             `json:"header_label"`
	Description string             `json:"issue_description"`
	Expected    string             `json:"expected_type,omitempty"`
	Rows        []int              `json:"rows,omitempty"` // capped at maxListedRows
	Quarter     []QuarterViolation `json:"invalid_rows,omitempty"`
	Count       int                `json:"count"`
	Percentage  float64            `json:"percentage"`
	HasMoreRows bool               `json:"has_more_rows"`
}

// MissingHeader describes one canonical field absent from the upload.
type MissingHeader struct {
	Value        string `json:"header_value"`
	Label        string `json:"header_label"`
	ExpectedName string `json:"expected_name"`
	Description  string `json:"description"`
}

// ValidationResult is the full outcome of validating one upload. It is the
// payload consumed by the UI and by the annotated-report generator.
type ValidationResult struct {
	MissingHeaders         []string          `json:"missing_headers"`
	MissingHeadersDetailed []MissingHeader   `json:"missing_headers_detailed"`
	MatchedColumns         map[string]string `json:"matched_columns"`
	HeaderLabels           map[string]string `json:"header_labels"`
	DataIssues             []Issue           `json:"data_issues"`
	TotalRows              int               `json:"total_rows"`
}

// HasIssues reports whether any missing headers or data issues were found.
func (r *ValidationResult) HasIssues() bool {
	return len(r.MissingHeaders) > 0 || len(r.DataIssues) > 0
}

// VATRule maps (product type, country) to VAT rates. Rates are percentages
// as stored in the catalog (21 means 21%).
type VATRule struct {
	ProductType     string
	Country         string
	VATRate         float64
	ShippingVATRate float64
	Category        string
}

// RuleKey is the normalized lookup key for a VAT rule.
type RuleKey struct {
	ProductType string
	Country     string
}

// RuleSet is a read-only VAT rule lookup table for one enrichment call.
type RuleSet map[RuleKey]VATRule

// BuildRuleSet indexes rules by normalized (product type, country). Rules
// with an empty key after normalization are skipped.
func BuildRuleSet(rules []VATRule) RuleSet {
	set := make(RuleSet, len(rules))
	for _, r := range rules {
		key := RuleKey{
			ProductType: NormalizeKey(r.ProductType),
			Country:     NormalizeKey(r.Country),
		}
		if key.ProductType == "" || key.Country == "" {
			continue
		}
		set[key] = r
	}
	return set
}

// RowStatus tags the outcome of enriching one row.
type RowStatus string

const (
	StatusFound    RowStatus = "Found"
	StatusNotFound RowStatus = "Not Found"
	StatusError    RowStatus = "Error"
)

// EnrichedRow is one input row augmented with conversion and VAT results.
// Monetary fields are explicit zeros (never omitted) for rows that could not
// be matched, so downstream aggregation treats all rows uniformly.
type EnrichedRow struct {
	Index             int       // 0-based data row index
	Status            RowStatus // Found, Not Found, or Error
	Currency          string    // currency after conversion (EUR when converted)
	PreviousCurrency  string    // original currency cell, preserved for audit
	PreviousNetPrice  string    // original net price cell, preserved for audit
	NetPrice          float64   // EUR after conversion
	ShippingAmount    float64   // EUR after conversion
	VATRate           float64   // fractional rate (0.21), zero unless Found
	ShippingVATRate   float64
	VATAmount         float64
	ShippingVATAmount float64
	TotalVAT          float64
	GrossTotal        float64
	Note              string // diagnostic detail, not user-facing
}

// CountrySummary aggregates net sales and VAT by resolved country.
type CountrySummary struct {
	Country   string  `json:"country"`
	NetSales  float64 `json:"net_sales"`
	VATAmount float64 `json:"vat_amount"`
}

// Totals are the batch aggregates over successfully enriched rows.
type Totals struct {
	NetPrice   float64 `json:"overall_net_price"`
	VATAmount  float64 `json:"overall_vat_amount"`
	GrossTotal float64 `json:"overall_gross_total"`
}

// Report is the fully enriched batch.
type Report struct {
	Table   *Table // the resolved input table the rows index into
	Rows    []EnrichedRow
	Summary []CountrySummary
	Totals  Totals
}

// ManualReviewSet is the blocked-batch outcome: the rows that failed VAT
// lookup (or errored), verbatim as uploaded, keyed by original row index.
type ManualReviewSet struct {
	Table   *Table
	Indexes []int // 0-based data row indexes, ascending
}

// Count returns the number of rows needing manual review.
func (m *ManualReviewSet) Count() int { return len(m.Indexes) }

// EnrichResult is the tagged outcome of an enrichment run. Exactly one of
// Report or ManualReview is non-nil: a single unmatched row blocks delivery
// of the whole batch.
type EnrichResult struct {
	Report       *Report
	ManualReview *ManualReviewSet
}

// Catalog provides the read-only configuration snapshots one pipeline run
// needs. Implementations load fresh per request so a run is internally
// consistent even while an admin edits the catalog.
type Catalog interface {
	Fields(ctx context.Context) ([]schema.Field, error)
	VATRules(ctx context.Context) ([]VATRule, error)
	Rates(ctx context.Context) (RateTable, error)
}
