package models

import "time"

// CalculateFine returns the fine owed for a book due at dueDate and evaluated
// at evalDate, at ratePerDay per whole calendar day late. Both dates are
// truncated to local midnight, so time-of-day never affects the amount.
// Returning on or before the due day costs nothing.
func CalculateFine(dueDate, evalDate time.Time, ratePerDay int64) int64 {
	daysLate := DaysLate(dueDate, evalDate)
	if daysLate <= 0 {
		return 0
	}
	return int64(daysLate) * ratePerDay
}

// DaysLate returns the number of whole calendar days evalDate is past dueDate.
// Zero or negative means the book is not late.
func DaysLate(dueDate, evalDate time.Time) int {
	due := midnight(dueDate)
	eval := midnight(evalDate)
	return int(eval.Sub(due).Hours() / 24)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
