package core

import "testing"

func TestBuildRateTable(t *testing.T) {
	observations := []RateObservation{
		{Date: "2024-06-07", Currency: "usd", Rate: 1.08},
		{Date: "2024-06-07", Currency: "GBP", Rate: 0.85},
		{Date: "2024-06-06", Currency: "USD", Rate: 1.07},
		{Date: "", Currency: "USD", Rate: 1.0},       // skipped: no date
		{Date: "2024-06-05", Currency: "", Rate: 1},  // skipped: no currency
		{Date: "2024-06-05", Currency: "JPY", Rate: 0}, // skipped: non-positive
	}

	table := BuildRateTable(observations)

	if len(table) != 2 {
		t.Fatalf("table has %d dates, want 2", len(table))
	}
	if got := table["2024-06-07"]["USD"]; got != 1.08 {
		t.Errorf("USD rate = %v, want 1.08 (currency code should be uppercased)", got)
	}
	// EUR injected at 1.0 for every date that has entries.
	for _, day := range []string{"2024-06-07", "2024-06-06"} {
		if got := table[day]["EUR"]; got != 1.0 {
			t.Errorf("EUR rate on %s = %v, want 1.0", day, got)
		}
	}
}

func TestRateTableLookup(t *testing.T) {
	// 2024-06-07 is a Friday.
	table := BuildRateTable([]RateObservation{
		{Date: "2024-06-07", Currency: "USD", Rate: 1.08},
	})

	tests := []struct {
		name      string
		orderDate string
		currency  string
		want      float64
	}{
		{name: "eur always identity", orderDate: "2024-06-08", currency: "EUR", want: 1.0},
		{name: "eur lowercase", orderDate: "anything", currency: "eur", want: 1.0},
		{name: "exact business day", orderDate: "2024-06-07", currency: "USD", want: 1.08},
		{name: "saturday rolls back to friday", orderDate: "2024-06-08", currency: "USD", want: 1.08},
		{name: "sunday rolls back to friday", orderDate: "2024-06-09", currency: "USD", want: 1.08},
		{name: "holiday gap walks backward", orderDate: "2024-06-12", currency: "USD", want: 1.08},
		{name: "missing currency falls back to identity", orderDate: "2024-06-07", currency: "CHF", want: 1.0},
		{name: "date before floor falls back to identity", orderDate: "2022-06-07", currency: "USD", want: 1.0},
		{name: "unparseable date falls back to identity", orderDate: "not-a-date", currency: "USD", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Lookup(tt.orderDate, tt.currency); got != tt.want {
				t.Errorf("Lookup(%q, %q) = %v, want %v", tt.orderDate, tt.currency, got, tt.want)
			}
		})
	}
}

// An empty table must still answer every lookup with the identity rate;
// missing FX data never aborts enrichment.
func TestRateTableLookupEmpty(t *testing.T) {
	table := RateTable{}
	if got := table.Lookup("2024-06-07", "USD"); got != 1.0 {
		t.Errorf("Lookup on empty table = %v, want 1.0", got)
	}
}
