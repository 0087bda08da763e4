package core

// fx.go implements the reference exchange-rate table and its lookup rules.
//
// The reference source publishes rates on business days only. A lookup for a
// weekend or holiday date must return "the rate in effect" on that day,
// which is the most recent published rate, not an interpolated value.

import (
	"strings"
	"time"
)

// rateFloorDate is the historical floor of the rate table; persisted
// observations only exist from this date forward.
var rateFloorDate = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// RateObservation is one persisted currency rate: EUR per one unit of the
// foreign currency, as published for the given calendar date.
type RateObservation struct {
	Date     string // ISO date, "2024-06-07"
	Currency string // ISO 4217 code
	Rate     float64
}

// RateTable maps ISO date -> currency code -> EUR-per-unit rate. EUR is
// present at 1.0 for every date that has any other entry. Built fresh per
// enrichment call and read-only once built.
type RateTable map[string]map[string]float64

// BuildRateTable groups observations by date. Zero or negative rates and
// blank keys are skipped; absence of a date is expected (non-publication
// days) and handled by Lookup, not treated as an error.
func BuildRateTable(observations []RateObservation) RateTable {
	table := make(RateTable)
	for _, obs := range observations {
		currency := strings.ToUpper(strings.TrimSpace(obs.Currency))
		if obs.Date == "" || currency == "" || obs.Rate <= 0 {
			continue
		}
		day := table[obs.Date]
		if day == nil {
			day = map[string]float64{"EUR": 1.0}
			table[obs.Date] = day
		}
		day[currency] = obs.Rate
	}
	return table
}

// Lookup finds the rate in effect for a currency on an order date.
//
// EUR short-circuits to 1.0. Weekend dates roll back to the preceding
// Friday, then the search walks backward one calendar day at a time across
// publication gaps until a rate is found or the historical floor is passed.
// When no rate exists anywhere (or the date does not parse) the identity
// rate 1.0 is returned: a missing rate must never abort enrichment, the
// conversion silently defaults to 1:1.
func (t RateTable) Lookup(orderDate, currency string) float64 {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "EUR" {
		return 1.0
	}

	day, ok := ParseDate(orderDate)
	if !ok {
		return 1.0
	}

	switch day.Weekday() {
	case time.Saturday:
		day = day.AddDate(0, 0, -1)
	case time.Sunday:
		day = day.AddDate(0, 0, -2)
	}

	for !day.Before(rateFloorDate) {
		if rate, ok := t[day.Format("2006-01-02")][currency]; ok {
			return rate
		}
		day = day.AddDate(0, 0, -1)
	}

	return 1.0
}
