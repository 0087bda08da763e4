package core

// service.go wires the pipeline stages together for one request: parse the
// upload, resolve headers against the catalog snapshot, validate, and (for
// accepted files) enrich with VAT and currency conversion.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qhuube/vatreport/internal/schema"
)

// Service runs the validation and enrichment pipeline against an injected
// catalog. It holds no per-request state; every call loads fresh snapshots.
type Service struct {
	catalog Catalog
	now     func() time.Time
}

// NewService creates the pipeline service.
func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog, now: time.Now}
}

// Validate parses an upload, resolves its headers, and runs all row-level
// checks. It returns the resolved table alongside the validation result so
// callers can keep both in the session.
func (s *Service) Validate(ctx context.Context, fileName string, data []byte) (*Table, *ValidationResult, error) {
	table, err := ParseUpload(fileName, data)
	if err != nil {
		return nil, nil, err
	}

	fields, err := s.loadFields(ctx)
	if err != nil {
		return nil, nil, err
	}

	mapping := ResolveHeaders(table.Columns, fields)
	resolved := ApplyResolution(table, mapping)

	validator := NewValidator(fields)
	validator.now = s.now
	result := validator.Validate(resolved)

	slog.Info("upload validated",
		"file", fileName,
		"rows", result.TotalRows,
		"missing_headers", len(result.MissingHeaders),
		"data_issues", len(result.DataIssues),
	)
	return resolved, result, nil
}

// Enrich runs the VAT enrichment engine over a resolved table using fresh
// rule and rate snapshots.
func (s *Service) Enrich(ctx context.Context, t *Table) (*EnrichResult, error) {
	rules, err := s.catalog.VATRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load VAT rules: %w", err)
	}
	rates, err := s.catalog.Rates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load currency rates: %w", err)
	}

	result := NewEngine(BuildRuleSet(rules), rates).Enrich(t)
	if result.ManualReview != nil {
		slog.Info("enrichment blocked for manual review", "rows", result.ManualReview.Count())
	} else {
		slog.Info("enrichment completed",
			"rows", len(result.Report.Rows),
			"net_total", result.Report.Totals.NetPrice,
			"vat_total", result.Report.Totals.VATAmount,
		)
	}
	return result, nil
}

// FieldLabels returns the canonical field value -> label mapping from the
// current catalog snapshot.
func (s *Service) FieldLabels(ctx context.Context) (map[string]string, error) {
	fields, err := s.loadFields(ctx)
	if err != nil {
		return nil, err
	}
	return schema.Labels(fields), nil
}

// loadFields reads the catalog's field configuration, falling back to the
// built-in defaults when the catalog has none.
func (s *Service) loadFields(ctx context.Context) ([]schema.Field, error) {
	fields, err := s.catalog.Fields(ctx)
	if err != nil {
		return nil, fmt.Errorf("load field catalog: %w", err)
	}
	if len(fields) == 0 {
		return schema.DefaultFields, nil
	}
	return fields, nil
}
