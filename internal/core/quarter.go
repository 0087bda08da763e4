package core

// quarter.go implements the quarter window policy: only order dates from
// exactly the previous calendar quarter are accepted for processing.

import "time"

// QuarterVerdict classifies an order date against the reporting window.
type QuarterVerdict int

const (
	QuarterAccepted QuarterVerdict = iota
	QuarterCurrent
	QuarterTooOld
	QuarterFuture
)

// Message returns the user-facing verdict text.
func (v QuarterVerdict) Message() string {
	switch v {
	case QuarterAccepted:
		return "Accepted: Order date is valid for the previous quarter."
	case QuarterCurrent:
		return "Rejected: Order date is in the current quarter, not allowed."
	case QuarterTooOld:
		return "Rejected: Order date is too old, must be within the last quarter."
	default:
		return "Rejected: Order date is in the future, not allowed."
	}
}

// quarterIndex maps a date to year*4 + quarter number, so consecutive
// quarters differ by exactly one.
func quarterIndex(t time.Time) int {
	return t.Year()*4 + (int(t.Month())-1)/3 + 1
}

// CheckQuarter evaluates an order date against the system date. Only a date
// in exactly the quarter before the system's current quarter is accepted.
func CheckQuarter(orderDate, today time.Time) QuarterVerdict {
	fileQ := quarterIndex(orderDate)
	systemQ := quarterIndex(today)

	switch {
	case fileQ == systemQ-1:
		return QuarterAccepted
	case fileQ == systemQ:
		return QuarterCurrent
	case fileQ < systemQ-1:
		return QuarterTooOld
	default:
		return QuarterFuture
	}
}
