// Package timecode converts between textual subtitle time-codes and
// seconds offsets. Parsing is intentionally lenient: subtitle sources are
// untrusted and heterogeneous, so malformed input degrades to 0 instead
// of returning an error.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts "HH:MM:SS", "HH:MM:SS.mmm", "HH:MM:SS,mmm" or "MM:SS"
// into seconds. A comma is accepted as the decimal separator (SRT
// dialect). Any other shape, and any unparseable component, yields 0.
func Parse(text string) float64 {
	clean := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	parts := strings.Split(clean, ":")

	switch len(parts) {
	case 3:
		return num(parts[0])*3600 + num(parts[1])*60 + num(parts[2])
	case 2:
		return num(parts[0])*60 + num(parts[1])
	default:
		return 0
	}
}

func num(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Truncate drops a fractional or millisecond suffix from a time-code,
// e.g. "00:01:02,500" -> "00:01:02". Used for the display form.
func Truncate(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ",."); i != -1 {
		return text[:i]
	}
	return text
}

// Format renders a non-negative seconds offset as "HH:MM:SS".
func Format(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
