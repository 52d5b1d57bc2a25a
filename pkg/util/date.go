package util

import "time"

// ISOTimestamp formats t as an ISO-8601 string, the wire format for every
// protocol message timestamp.
func ISOTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// NowISO returns the current time in wire format.
func NowISO() string {
	return ISOTimestamp(time.Now())
}
