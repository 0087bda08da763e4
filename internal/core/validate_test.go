package core

import (
	"strings"
	"testing"
	"time"

	"github.com/qhuube/vatreport/internal/schema"
)

func testValidator(fields []schema.Field, today time.Time) *Validator {
	v := NewValidator(fields)
	v.now = func() time.Time { return today }
	return v
}

func singleColumnTable(name string, values ...string) *Table {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{v}
	}
	return &Table{Columns: []string{name}, Rows: rows}
}

func findIssue(issues []Issue, kind IssueKind, field string) *Issue {
	for i := range issues {
		if issues[i].Kind == kind && issues[i].Field == field {
			return &issues[i]
		}
	}
	return nil
}

func TestValidateMissingData(t *testing.T) {
	fields := []schema.Field{{Value: "country", Label: "Country", Type: schema.TypeString}}
	table := singleColumnTable("country", "", "nan", "", "ok", "   ")

	result := testValidator(fields, date(2025, time.May, 15)).Validate(table)

	issue := findIssue(result.DataIssues, IssueMissingData, "country")
	if issue == nil {
		t.Fatalf("no MISSING_DATA issue reported: %+v", result.DataIssues)
	}
	if issue.Count != 4 {
		t.Errorf("missing count = %d, want 4", issue.Count)
	}
	if issue.Percentage != 80.0 {
		t.Errorf("percentage = %v, want 80.0", issue.Percentage)
	}
	// Rows 1,2,3,5 of the data are missing; display numbers offset by 2.
	wantRows := []int{2, 3, 4, 6}
	if len(issue.Rows) != len(wantRows) {
		t.Fatalf("rows = %v, want %v", issue.Rows, wantRows)
	}
	for i, r := range wantRows {
		if issue.Rows[i] != r {
			t.Errorf("rows[%d] = %d, want %d", i, issue.Rows[i], r)
		}
	}
	if issue.HasMoreRows {
		t.Error("HasMoreRows = true for 4 rows")
	}
}

func TestValidateMissingDataCapsListedRows(t *testing.T) {
	fields := []schema.Field{{Value: "country", Label: "Country", Type: schema.TypeString}}
	values := make([]string, 25) // all empty
	table := singleColumnTable("country", values...)

	result := testValidator(fields, date(2025, time.May, 15)).Validate(table)

	issue := findIssue(result.DataIssues, IssueMissingData, "country")
	if issue == nil {
		t.Fatal("no MISSING_DATA issue reported")
	}
	if issue.Count != 25 {
		t.Errorf("count = %d, want 25 (true count over all rows)", issue.Count)
	}
	if len(issue.Rows) != 10 {
		t.Errorf("listed rows = %d, want 10 (capped)", len(issue.Rows))
	}
	if issue.Percentage != 100.0 {
		t.Errorf("percentage = %v, want 100.0", issue.Percentage)
	}
	if !issue.HasMoreRows {
		t.Error("HasMoreRows = false, want true")
	}
	if !strings.Contains(issue.Description, "showing first 10") {
		t.Errorf("description should mention the cap: %q", issue.Description)
	}
}

func TestValidateTypeConformance(t *testing.T) {
	fields := []schema.Field{{Value: "quantity", Label: "Quantity", Type: schema.TypeInteger}}
	table := singleColumnTable("quantity", "3", "x", "2.5", "", "7")

	result := testValidator(fields, date(2025, time.May, 15)).Validate(table)

	issue := findIssue(result.DataIssues, IssueInvalidType, "quantity")
	if issue == nil {
		t.Fatal("no INVALID_TYPE issue reported")
	}
	if issue.Count != 2 {
		t.Errorf("count = %d, want 2 (empty cells are skipped)", issue.Count)
	}
	if issue.Expected != "integer" {
		t.Errorf("expected type = %q, want integer", issue.Expected)
	}
	if issue.Percentage != 40.0 {
		t.Errorf("percentage = %v, want 40.0", issue.Percentage)
	}
}

func TestConformsToType(t *testing.T) {
	tests := []struct {
		value string
		typ   schema.FieldType
		want  bool
	}{
		{"42", schema.TypeInteger, true},
		{"4.2", schema.TypeInteger, false},
		{"4.2", schema.TypeFloat, true},
		{"abc", schema.TypeFloat, false},
		{"2025-02-01", schema.TypeDate, true},
		{"01.02.2025", schema.TypeDate, true},
		{"soon", schema.TypeDate, false},
		{"yes", schema.TypeBoolean, true},
		{"maybe", schema.TypeBoolean, false},
		{"a@b.example", schema.TypeEmail, true},
		{"not-an-email", schema.TypeEmail, false},
		{"https://example.com/x", schema.TypeURL, true},
		{"example", schema.TypeURL, false},
		{"anything", schema.TypeString, true},
		{`{"k":1}`, schema.TypeJSON, true},
	}

	for _, tt := range tests {
		if got := conformsToType(tt.value, tt.typ); got != tt.want {
			t.Errorf("conformsToType(%q, %v) = %v, want %v", tt.value, tt.typ, got, tt.want)
		}
	}
}

func TestValidateMissingHeaders(t *testing.T) {
	fields := []schema.Field{
		{Value: "order_date", Label: "Order Date", Type: schema.TypeDate},
		{Value: "net_price", Label: "Net Price", Type: schema.TypeFloat},
	}
	table := &Table{Columns: []string{"order_date", "Notes"}, Rows: []Row{{"2025-02-01", "x"}}}

	result := testValidator(fields, date(2025, time.May, 15)).Validate(table)

	if len(result.MissingHeaders) != 1 || result.MissingHeaders[0] != "net_price" {
		t.Errorf("missing headers = %v, want [net_price]", result.MissingHeaders)
	}
	detailed := result.MissingHeadersDetailed
	if len(detailed) != 1 {
		t.Fatalf("detailed = %v, want one entry", detailed)
	}
	if detailed[0].Label != "Net Price" {
		t.Errorf("label = %q, want Net Price", detailed[0].Label)
	}
	if !strings.Contains(detailed[0].Description, "'Net Price' is missing") {
		t.Errorf("description = %q", detailed[0].Description)
	}
	if result.MatchedColumns["Notes"] != "Notes" {
		t.Errorf("matched columns should include passthrough columns: %v", result.MatchedColumns)
	}
}

func TestValidateQuarterWindow(t *testing.T) {
	fields := []schema.Field{{Value: "order_date", Label: "Order Date", Type: schema.TypeDate}}
	table := singleColumnTable("order_date",
		"2025-02-01", // previous quarter: accepted
		"2025-04-01", // current quarter
		"2024-10-01", // too old
		"2025-08-01", // future
		"garbage",    // parse failure
		"",           // empty: skipped
	)

	result := testValidator(fields, date(2025, time.May, 15)).Validate(table)

	issue := findIssue(result.DataIssues, IssueInvalidQuarter, "order_date")
	if issue == nil {
		t.Fatal("no INVALID_QUARTER issue reported")
	}
	if issue.Count != 4 {
		t.Fatalf("count = %d, want 4: %+v", issue.Count, issue.Quarter)
	}

	wantReasons := map[int]string{
		3: "current quarter",
		4: "too old",
		5: "future",
		6: "Invalid date format",
	}
	for _, violation := range issue.Quarter {
		want, ok := wantReasons[violation.Row]
		if !ok {
			t.Errorf("unexpected violation row %d: %+v", violation.Row, violation)
			continue
		}
		if !strings.Contains(violation.Reason, want) {
			t.Errorf("row %d reason = %q, want substring %q", violation.Row, violation.Reason, want)
		}
	}
}

// A clean file must produce an empty issue list and no missing headers.
func TestValidateCleanFile(t *testing.T) {
	fields := []schema.Field{
		{Value: "order_date", Label: "Order Date", Type: schema.TypeDate},
		{Value: "net_price", Label: "Net Price", Type: schema.TypeFloat},
	}
	table := &Table{
		Columns: []string{"order_date", "net_price"},
		Rows:    []Row{{"2025-02-01", "10.5"}, {"2025-03-15", "20"}},
	}

	result := testValidator(fields, date(2025, time.May, 15)).Validate(table)

	if result.HasIssues() {
		t.Errorf("clean file reported issues: %+v", result.DataIssues)
	}
	if result.TotalRows != 2 {
		t.Errorf("total rows = %d, want 2", result.TotalRows)
	}
}
