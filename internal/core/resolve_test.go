package core

import (
	"reflect"
	"testing"

	"github.com/qhuube/vatreport/internal/schema"
)

func TestResolveHeaders(t *testing.T) {
	fields := []schema.Field{
		{Value: "order_date", Label: "Order Date", Aliases: []string{"Order Date", "Date"}},
		{Value: "net_price", Label: "Net Price", Aliases: []string{"Net Price", "Amount"}},
		{Value: "country", Label: "Country", Aliases: []string{"Country"}},
	}

	tests := []struct {
		name    string
		columns []string
		want    map[string]string
	}{
		{
			name:    "exact match",
			columns: []string{"Order Date", "Net Price", "Country"},
			want: map[string]string{
				"Order Date": "order_date",
				"Net Price":  "net_price",
				"Country":    "country",
			},
		},
		{
			name:    "case and whitespace insensitive",
			columns: []string{" order date ", "NET PRICE"},
			want: map[string]string{
				" order date ": "order_date",
				"NET PRICE":    "net_price",
			},
		},
		{
			name:    "alias order within a field",
			columns: []string{"Date"},
			want:    map[string]string{"Date": "order_date"},
		},
		{
			name:    "first alias wins when both present",
			columns: []string{"Order Date", "Date"},
			want:    map[string]string{"Order Date": "order_date"},
		},
		{
			name:    "unmatched columns pass through",
			columns: []string{"Order Date", "Internal Notes"},
			want:    map[string]string{"Order Date": "order_date"},
		},
		{
			name:    "no matches",
			columns: []string{"Foo", "Bar"},
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveHeaders(tt.columns, fields)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveHeaders() = %v, want %v", got, tt.want)
			}
		})
	}
}

// A column matchable by two fields must go to the field configured first;
// this is the deliberate first-wins tie policy, not an error.
func TestResolveHeadersFirstFieldWins(t *testing.T) {
	fields := []schema.Field{
		{Value: "product_type", Aliases: []string{"Category"}},
		{Value: "product_category", Aliases: []string{"Category"}},
	}

	got := ResolveHeaders([]string{"Category"}, fields)
	want := map[string]string{"Category": "product_type"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveHeaders() = %v, want %v", got, want)
	}
}

// Resolution must be deterministic across repeated runs.
func TestResolveHeadersDeterministic(t *testing.T) {
	fields := []schema.Field{
		{Value: "order_date", Aliases: []string{"Order Date", "Date", "Invoice Date"}},
		{Value: "net_price", Aliases: []string{"Net Price", "Base Price", "Amount"}},
	}
	columns := []string{"Invoice Date", "Amount", "Extra"}

	first := ResolveHeaders(columns, fields)
	for i := 0; i < 50; i++ {
		if got := ResolveHeaders(columns, fields); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: ResolveHeaders() = %v, want %v", i, got, first)
		}
	}
}

func TestApplyResolution(t *testing.T) {
	table := &Table{
		Columns: []string{"Order Date", "Amount", "Notes"},
		Rows:    []Row{{"2025-01-01", "10", "x"}},
	}
	mapping := map[string]string{"Order Date": "order_date", "Amount": "net_price"}

	resolved := ApplyResolution(table, mapping)
	want := []string{"order_date", "net_price", "Notes"}
	if !reflect.DeepEqual(resolved.Columns, want) {
		t.Errorf("columns = %v, want %v", resolved.Columns, want)
	}

	// Original table untouched.
	if table.Columns[0] != "Order Date" {
		t.Errorf("original columns mutated: %v", table.Columns)
	}
}
