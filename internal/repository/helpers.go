package repository

import (
	"fmt"
	"time"
)

// timeLayout is the storage format for all timestamps.
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// nullableString converts "" to a SQL NULL value.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
