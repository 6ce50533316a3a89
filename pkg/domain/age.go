package domain

import "time"

// IsMinor returns true if the person with the given birth date is under 18
// years old at the specified reference time. Uses calendar arithmetic
// (AddDate) for accurate birthday-boundary handling.
//
// Example:
//
//	dob := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)
//	now := time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC) // Exactly 18th birthday
//	IsMinor(dob, now) // returns false
func IsMinor(dob, now time.Time) bool {
	adultAt := dob.UTC().AddDate(18, 0, 0)
	return now.UTC().Before(adultAt)
}
