package core

// validate.go performs row-level validation of a resolved upload.
//
// Three checks run per canonical column present in the file: missing data,
// type conformance, and (for the order date column) the quarter window
// policy. A failure inside one column's check is logged and that check is
// skipped; it never aborts validation of the remaining columns.

import (
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qhuube/vatreport/internal/schema"
)

// Validator runs the data-quality checks for one upload against a field
// configuration snapshot.
type Validator struct {
	fields []schema.Field
	labels map[string]string
	types  map[string]schema.FieldType
	now    func() time.Time
}

// NewValidator creates a validator for the given canonical field snapshot.
func NewValidator(fields []schema.Field) *Validator {
	types := make(map[string]schema.FieldType, len(fields))
	for _, f := range fields {
		types[f.Value] = f.Type
	}
	return &Validator{
		fields: fields,
		labels: schema.Labels(fields),
		types:  types,
		now:    time.Now,
	}
}

// Validate checks a resolved table and returns the aggregate issue report.
func (v *Validator) Validate(t *Table) *ValidationResult {
	result := &ValidationResult{
		MissingHeaders:         []string{},
		MissingHeadersDetailed: []MissingHeader{},
		MatchedColumns:         make(map[string]string, len(t.Columns)),
		HeaderLabels:           v.labels,
		DataIssues:             []Issue{},
		TotalRows:              len(t.Rows),
	}
	for _, col := range t.Columns {
		result.MatchedColumns[col] = col
	}

	for _, field := range v.fields {
		if t.ColumnIndex(field.Value) >= 0 {
			continue
		}
		result.MissingHeaders = append(result.MissingHeaders, field.Value)
		result.MissingHeadersDetailed = append(result.MissingHeadersDetailed, MissingHeader{
			Value:        field.Value,
			Label:        field.Label,
			ExpectedName: field.Label,
			Description:  fmt.Sprintf("Required column '%s' is missing from the file", field.Label),
		})
	}

	for idx, col := range t.Columns {
		v.runColumnCheck(col, "missing_data", func() {
			if issue := v.checkMissingData(t, col, idx); issue != nil {
				result.DataIssues = append(result.DataIssues, *issue)
			}
		})
		v.runColumnCheck(col, "type", func() {
			if issue := v.checkTypes(t, col, idx); issue != nil {
				result.DataIssues = append(result.DataIssues, *issue)
			}
		})
	}

	if idx := t.ColumnIndex(schema.FieldOrderDate); idx >= 0 {
		v.runColumnCheck(schema.FieldOrderDate, "quarter", func() {
			if issue := v.checkQuarter(t, idx); issue != nil {
				result.DataIssues = append(result.DataIssues, *issue)
			}
		})
	}

	return result
}

// runColumnCheck isolates one column's check so an unexpected panic skips
// only that check, matching the per-column error containment contract.
func (v *Validator) runColumnCheck(column, check string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("column check failed", "column", column, "check", check, "panic", r)
		}
	}()
	fn()
}

func (v *Validator) label(column string) string {
	if label, ok := v.labels[column]; ok {
		return label
	}
	return column
}

func (v *Validator) checkMissingData(t *Table, column string, idx int) *Issue {
	var missing []int
	for row := range t.Rows {
		if IsMissingCell(t.Cell(row, idx)) {
			missing = append(missing, DisplayRow(row))
		}
	}
	if len(missing) == 0 {
		return nil
	}

	label := v.label(column)
	listed := missing
	if len(listed) > maxListedRows {
		listed = listed[:maxListedRows]
	}

	description := fmt.Sprintf("Column '%s' has %d missing values", label, len(missing))
	if len(missing) > maxListedRows {
		description += fmt.Sprintf(" (showing first %d rows: %s...)", maxListedRows, joinRows(listed))
	} else {
		description += fmt.Sprintf(" in rows: %s", joinRows(listed))
	}

	return &Issue{
		Kind:        IssueMissingData,
		Field:       column,
		Label:       label,
		Description: description,
		Rows:        listed,
		Count:       len(missing),
		Percentage:  percentage(len(missing), len(t.Rows)),
		HasMoreRows: len(missing) > maxListedRows,
	}
}

func (v *Validator) checkTypes(t *Table, column string, idx int) *Issue {
	expected, ok := v.types[column]
	if !ok {
		expected = schema.TypeString
	}

	var invalid []int
	for row := range t.Rows {
		cell := t.Cell(row, idx)
		if IsMissingCell(cell) {
			continue
		}
		if !conformsToType(cell, expected) {
			invalid = append(invalid, DisplayRow(row))
		}
	}
	if len(invalid) == 0 {
		return nil
	}

	listed := invalid
	if len(listed) > maxListedRows {
		listed = listed[:maxListedRows]
	}

	return &Issue{
		Kind:        IssueInvalidType,
		Field:       column,
		Label:       v.label(column),
		Description: fmt.Sprintf("Invalid %s values in rows: %s", expected, joinRows(listed)),
		Expected:    expected.String(),
		Rows:        listed,
		Count:       len(invalid),
		Percentage:  percentage(len(invalid), len(t.Rows)),
		HasMoreRows: len(invalid) > maxListedRows,
	}
}

func (v *Validator) checkQuarter(t *Table, idx int) *Issue {
	today := v.now()
	var violations []QuarterViolation

	for row := range t.Rows {
		cell := t.Cell(row, idx)
		if IsMissingCell(cell) {
			continue
		}
		orderDate, ok := ParseDate(cell)
		if !ok {
			violations = append(violations, QuarterViolation{
				Row:    DisplayRow(row),
				Value:  cell,
				Reason: fmt.Sprintf("Invalid date format: %s", cell),
			})
			continue
		}
		if verdict := CheckQuarter(orderDate, today); verdict != QuarterAccepted {
			violations = append(violations, QuarterViolation{
				Row:    DisplayRow(row),
				Value:  cell,
				Reason: verdict.Message(),
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}

	// Every violating row is retained here: the admin notification needs
	// complete detail, not a 10-row preview.
	return &Issue{
		Kind:        IssueInvalidQuarter,
		Field:       schema.FieldOrderDate,
		Label:       v.label(schema.FieldOrderDate),
		Description: "Some order dates are not in the allowed previous quarter",
		Quarter:     violations,
		Count:       len(violations),
		Percentage:  percentage(len(violations), len(t.Rows)),
	}
}

// conformsToType checks a non-empty cell against a declared primitive type.
// String and JSON columns are treated permissively.
func conformsToType(value string, t schema.FieldType) bool {
	value = strings.TrimSpace(value)
	switch t {
	case schema.TypeInteger:
		_, err := strconv.ParseInt(value, 10, 64)
		return err == nil
	case schema.TypeFloat:
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	case schema.TypeDate:
		_, ok := ParseDate(value)
		return ok
	case schema.TypeBoolean:
		switch strings.ToLower(value) {
		case "true", "t", "yes", "y", "1", "false", "f", "no", "n", "0":
			return true
		}
		return false
	case schema.TypeEmail:
		_, err := mail.ParseAddress(value)
		return err == nil
	case schema.TypeURL:
		u, err := url.Parse(value)
		return err == nil && u.Scheme != "" && u.Host != ""
	default:
		return true
	}
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return SafeRound(float64(count) / float64(total) * 100)
}

func joinRows(rows []int) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ", ")
}
