package models

import "time"

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Submission is one persisted form entry. Data holds whatever fields the
// caller posted; values are strings, numbers or booleans.
type Submission struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// FormatTimestamp renders t in the layout used for Submission.Timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
