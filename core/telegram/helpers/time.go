package helpers

import (
	"strings"
	"time"
)

// StampLayout renders timestamps the way Ukrainian locale clocks do: "18.10.2026, 14:03:05".
const StampLayout = "02.01.2006, 15:04:05"

var stampLayouts = []string{
	StampLayout,
	"2.01.2006, 15:04:05",
	"02.01.2006 15:04:05",
	"02.01.2006, 15:04",
	time.RFC3339,
}

// FormatStamp renders t in local time using StampLayout.
func FormatStamp(t time.Time) string {
	return t.Local().Format(StampLayout)
}

// ParseStamp accepts StampLayout and a few looser variants found in older records.
func ParseStamp(input string) (time.Time, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range stampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
