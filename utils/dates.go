// utils/dates.go - Release date string handling
package utils

import (
	"strings"
	"time"
)

// releaseDateLayout matches the DD-MON-YYYY strings the release tables use,
// e.g. "01-JAN-2026".
const releaseDateLayout = "02-Jan-2006"

// NormalizeReleaseDate trims and upper-cases a release date string so it can
// be compared against DATE_FORMAT output.
func NormalizeReleaseDate(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidReleaseDate reports whether s parses as DD-MON-YYYY.
func ValidReleaseDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := time.Parse(releaseDateLayout, titleCaseMonth(s))
	return err == nil
}

// titleCaseMonth rewrites "01-JAN-2026" as "01-Jan-2026" so time.Parse
// accepts it regardless of the caller's casing.
func titleCaseMonth(s string) string {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[1]) == 0 {
		return s
	}
	mon := strings.ToLower(parts[1])
	parts[1] = strings.ToUpper(mon[:1]) + mon[1:]
	return strings.Join(parts, "-")
}
