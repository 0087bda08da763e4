package core

import (
	"testing"
	"time"
)

func TestParseDateFormats(t *testing.T) {
	want := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{
		"2025-02-03",
		"2025/02/03",
		"2025.02.03",
		"02/03/2025",
		"2/3/2025",
		"02-03-2025",
		"2025-02-03 00:00:00",
		"2025-02-03T00:00:00",
		"Feb 3, 2025",
		"3 Feb 2025",
		"20250203",
		"  2025-02-03  ",
	} {
		got, ok := ParseDate(input)
		if !ok {
			t.Errorf("ParseDate(%q) failed", input)
			continue
		}
		if got.Year() != want.Year() || got.Month() != want.Month() || got.Day() != want.Day() {
			t.Errorf("ParseDate(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseDateTwoDigitYear(t *testing.T) {
	got, ok := ParseDate("2/3/25")
	if !ok {
		t.Fatal("ParseDate failed")
	}
	if got.Year() != 2025 {
		t.Errorf("year = %d, want 2025", got.Year())
	}

	// A 2-digit year far in the future reads as last century.
	got, ok = ParseDate("2/3/99")
	if !ok {
		t.Fatal("ParseDate failed")
	}
	if got.Year() != 1999 {
		t.Errorf("year = %d, want 1999", got.Year())
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "not-a-date", "2025-13-40", "13/32/2025"} {
		if _, ok := ParseDate(input); ok {
			t.Errorf("ParseDate(%q) unexpectedly succeeded", input)
		}
	}
}
