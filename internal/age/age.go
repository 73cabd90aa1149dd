// Package age computes whole years between a birth date and a reference date.
package age

import "time"

// Years returns the number of completed years between birth and ref.
// Calendar components are compared as given; callers pick the location.
func Years(birth, ref time.Time) int {
	years := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		years--
	}
	return years
}

// Today returns the age on the calendar date reported by now.
func Today(birth time.Time, now func() time.Time) int {
	if now == nil {
		now = time.Now
	}
	return Years(birth, now())
}
