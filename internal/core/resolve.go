package core

// resolve.go maps arbitrary upload column names onto canonical field
// identifiers using the alias lists from the field catalog.

import (
	"strings"

	"github.com/qhuube/vatreport/internal/schema"
)

// ResolveHeaders matches input column names against each field's alias list
// and returns original column name -> canonical field identifier.
//
// Matching is case and surrounding-whitespace insensitive. Fields are
// processed in configuration order and aliases in declaration order; the
// first alias that matches an input column claims it and scanning for that
// field stops. When two fields could claim the same column, the field
// configured first wins. Input columns with no match are left out of the
// mapping and pass through unrenamed.
func ResolveHeaders(columns []string, fields []schema.Field) map[string]string {
	normalized := make(map[string]string, len(columns)) // normalized -> original
	for _, col := range columns {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, exists := normalized[key]; !exists {
			normalized[key] = col
		}
	}

	claimed := make(map[string]bool, len(columns)) // original columns already mapped
	mapping := make(map[string]string)
	for _, field := range fields {
		for _, alias := range field.Aliases {
			original, ok := normalized[strings.ToLower(strings.TrimSpace(alias))]
			if !ok || claimed[original] {
				continue
			}
			mapping[original] = field.Value
			claimed[original] = true
			break
		}
	}
	return mapping
}

// ApplyResolution returns a copy of the table with resolved columns renamed
// to their canonical identifiers. Unmatched columns keep their original
// names.
func ApplyResolution(t *Table, mapping map[string]string) *Table {
	return t.Renamed(mapping)
}
