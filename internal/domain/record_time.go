package domain

import (
	"fmt"
	"time"
)

// RecordTimeLayout is the textual form timestamps take in the record
// store: fractional seconds and a colon-separated UTC offset, e.g.
// "2024-03-01 10:00:00.123456+00:00". Both GeneratedOn and AccessedOn
// are persisted in this layout.
const RecordTimeLayout = "2006-01-02 15:04:05.000000-07:00"

// FormatRecordTime serializes a timestamp into the record-store form.
func FormatRecordTime(t time.Time) string {
	return t.Format(RecordTimeLayout)
}

// ParseRecordTime parses a stored timestamp. Any deviation from the
// fixed layout is an error; values are never coerced.
func ParseRecordTime(value string) (time.Time, error) {
	t, err := time.Parse(RecordTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed record timestamp %q: %w", value, err)
	}
	return t, nil
}
