package rent

import "time"

const (
	// GracePeriodDays is how long a book may be out before the penalty
	// starts accruing.
	GracePeriodDays = 7

	// DailyPenaltyRate is charged per whole day past the grace period,
	// in pesos.
	DailyPenaltyRate = 100
)

// Penalty maps a loan duration to the amount owed. Days are counted by
// whole-day truncation of the absolute difference, so 7 days 23 hours
// is still 7 days and costs nothing.
func Penalty(checkoutDate, returnDate time.Time) (amount int64, daysElapsed int) {
	d := returnDate.Sub(checkoutDate)
	if d < 0 {
		d = -d
	}
	daysElapsed = int(d / (24 * time.Hour))
	if daysElapsed <= GracePeriodDays {
		return 0, daysElapsed
	}
	return int64(daysElapsed-GracePeriodDays) * DailyPenaltyRate, daysElapsed
}

// EstimatedReturnDate is when a checkout is expected back: the end of
// the grace period.
func EstimatedReturnDate(checkoutDate time.Time) time.Time {
	return checkoutDate.AddDate(0, 0, GracePeriodDays)
}
