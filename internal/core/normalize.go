package core

// normalize.go provides value cleanup helpers for user-provided spreadsheet
// data. Free-text lookup keys (country, product type) arrive with whatever
// encoding quirks the merchant's platform produced: non-breaking spaces from
// macOS exports, composed vs decomposed accents, stray control characters.
// Lookups against the VAT catalog must not miss because of any of that.

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// keyFold decomposes to NFD and drops combining marks, so "Österreich" and
// "Osterreich" normalize to the same key.
var keyFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey canonicalizes a free-text lookup key: every Unicode space
// becomes a plain space, runs of spaces collapse, accents and diacritics are
// stripped, and the result is lowercased and trimmed.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			b.WriteRune(' ')
		} else if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	s = strings.Join(strings.Fields(b.String()), " ")

	if folded, _, err := transform.String(keyFold, s); err == nil {
		s = folded
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// SafeFloat parses a cell as a float64, returning def for anything that is
// empty or not a number. Enrichment never aborts on a bad numeric cell; it
// proceeds with the default and lets validation report the cell separately.
func SafeFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return def
	}
	return v
}

// SafeRound rounds to two decimals, collapsing NaN and ±Inf to 0.0 so
// non-finite values never propagate into a report.
func SafeRound(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.0
	}
	return math.Round(v*100) / 100
}

// IsMissingCell reports whether a cell counts as missing data: empty after
// trimming, or one of the placeholder spellings spreadsheets and exports
// leave behind.
func IsMissingCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "none", "(empty)", "(null)":
		return true
	}
	return false
}
