// Package fiscal maps calendar dates to the society's financial-year labels.
// The financial year runs April through March and is labelled "YYYY-YYYY",
// e.g. 2024-04-01 falls in "2024-2025" and 2024-03-31 in "2023-2024".
package fiscal

import (
	"fmt"
	"time"
)

// Resolve returns the financial-year label for the given date.
func Resolve(t time.Time) string {
	year := t.Year()
	if t.Month() >= time.April {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// Current returns the financial-year label for the current date.
func Current() string {
	return Resolve(time.Now())
}
