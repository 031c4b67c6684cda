package utils

import "time"

// FormatRFC3339 renders a time in RFC3339 format with sub-second
// precision preserved
func FormatRFC3339(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
