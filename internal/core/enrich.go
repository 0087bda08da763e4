package core

// enrich.go implements the VAT enrichment engine: per-row currency
// conversion to EUR, VAT rule lookup by (product type, country), and the
// computation of VAT amounts and gross totals.
//
// Partial failure is routed, not raised: a row with no matching VAT rule
// (or one whose processing fails outright) lands in the manual review set
// with zeroed amounts, and a non-empty manual review set blocks delivery of
// the entire batch. Partial automated output is never shipped to the user.

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/qhuube/vatreport/internal/schema"
)

// Engine enriches a resolved table using one catalog snapshot.
type Engine struct {
	rules RuleSet
	rates RateTable
}

// NewEngine creates an enrichment engine over read-only rule and rate
// snapshots.
func NewEngine(rules RuleSet, rates RateTable) *Engine {
	return &Engine{rules: rules, rates: rates}
}

// Enrich processes every row and returns either the enriched report or the
// manual review set. The input table is not modified.
func (e *Engine) Enrich(t *Table) *EnrichResult {
	cols := columnRefs{
		orderDate:   t.ColumnIndex(schema.FieldOrderDate),
		productType: t.ColumnIndex(schema.FieldProductType),
		country:     t.ColumnIndex(schema.FieldCountry),
		currency:    t.ColumnIndex(schema.FieldCurrency),
		netPrice:    t.ColumnIndex(schema.FieldNetPrice),
		shipping:    t.ColumnIndex(schema.FieldShippingAmount),
	}

	rows := make([]EnrichedRow, 0, len(t.Rows))
	var manual []int

	for idx := range t.Rows {
		row := e.enrichRow(t, cols, idx)
		if row.Status != StatusFound {
			manual = append(manual, idx)
		}
		rows = append(rows, row)
	}

	if len(manual) > 0 {
		return &EnrichResult{ManualReview: &ManualReviewSet{Table: t, Indexes: manual}}
	}

	report := &Report{Table: t, Rows: rows}
	for _, r := range rows {
		report.Totals.NetPrice += r.NetPrice
		report.Totals.VATAmount += r.TotalVAT
		report.Totals.GrossTotal += r.GrossTotal
	}
	report.Totals.NetPrice = SafeRound(report.Totals.NetPrice)
	report.Totals.VATAmount = SafeRound(report.Totals.VATAmount)
	report.Totals.GrossTotal = SafeRound(report.Totals.GrossTotal)
	report.Summary = summarizeByCountry(t, cols.country, rows)

	return &EnrichResult{Report: report}
}

type columnRefs struct {
	orderDate, productType, country, currency, netPrice, shipping int
}

// enrichRow computes one row's enrichment. Any panic inside row processing
// demotes the row to manual review with an Error status and zeroed amounts
// rather than aborting the batch.
func (e *Engine) enrichRow(t *Table, cols columnRefs, idx int) (out EnrichedRow) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("row enrichment failed", "row", DisplayRow(idx), "panic", r)
			out = EnrichedRow{
				Index:            idx,
				Status:           StatusError,
				Currency:         strings.ToUpper(strings.TrimSpace(t.Cell(idx, cols.currency))),
				PreviousCurrency: t.Cell(idx, cols.currency),
				PreviousNetPrice: t.Cell(idx, cols.netPrice),
				Note:             fmt.Sprintf("error: %v", r),
			}
		}
	}()

	currency := "EUR"
	if cols.currency >= 0 {
		if c := strings.ToUpper(strings.TrimSpace(t.Cell(idx, cols.currency))); c != "" {
			currency = c
		}
	}
	orderDate := strings.TrimSpace(t.Cell(idx, cols.orderDate))
	productType := NormalizeKey(t.Cell(idx, cols.productType))
	country := NormalizeKey(t.Cell(idx, cols.country))
	netPrice := SafeFloat(t.Cell(idx, cols.netPrice), 0.0)
	shipping := SafeFloat(t.Cell(idx, cols.shipping), 0.0)

	out = EnrichedRow{
		Index:            idx,
		Currency:         currency,
		PreviousCurrency: currency,
		PreviousNetPrice: t.Cell(idx, cols.netPrice),
	}

	if currency != "EUR" && orderDate != "" {
		fx := 1 / e.rates.Lookup(orderDate, currency)
		netPrice = SafeRound(netPrice * fx)
		shipping = SafeRound(shipping * fx)
		out.Currency = "EUR"
	}
	out.NetPrice = netPrice
	out.ShippingAmount = shipping

	rule, ok := e.rules[RuleKey{ProductType: productType, Country: country}]
	if !ok {
		out.Status = StatusNotFound
		out.Note = fmt.Sprintf("no VAT rule for (%s, %s)", productType, country)
		return out
	}

	// The catalog stores percentages. The fractional rate is rounded to two
	// decimals before multiplication; this matches the documented reference
	// behavior and is load-bearing for rates like 33.33%.
	vatRate := SafeRound(rule.VATRate / 100)
	shippingVATRate := SafeRound(rule.ShippingVATRate / 100)

	out.Status = StatusFound
	out.VATRate = vatRate
	out.ShippingVATRate = shippingVATRate
	out.VATAmount = SafeRound(vatRate * netPrice)
	out.ShippingVATAmount = SafeRound(shippingVATRate * shipping)
	out.TotalVAT = SafeRound(out.VATAmount + out.ShippingVATAmount)
	out.GrossTotal = SafeRound(netPrice + out.VATAmount + out.ShippingVATAmount)
	return out
}

// summarizeByCountry aggregates converted net price and total VAT by the
// row's country cell, sorted by country for stable report output.
func summarizeByCountry(t *Table, countryCol int, rows []EnrichedRow) []CountrySummary {
	byCountry := make(map[string]*CountrySummary)
	for _, r := range rows {
		country := strings.TrimSpace(t.Cell(r.Index, countryCol))
		entry, ok := byCountry[country]
		if !ok {
			entry = &CountrySummary{Country: country}
			byCountry[country] = entry
		}
		entry.NetSales += r.NetPrice
		entry.VATAmount += r.TotalVAT
	}

	summary := make([]CountrySummary, 0, len(byCountry))
	for _, entry := range byCountry {
		entry.NetSales = SafeRound(entry.NetSales)
		entry.VATAmount = SafeRound(entry.VATAmount)
		summary = append(summary, *entry)
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].Country < summary[j].Country })
	return summary
}
