package aggregate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for timestamps without a zone marker. Policy: a naive
// timestamp is treated as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeTimestamp converts a heterogeneous timestamp representation into
// an absolute instant expressed in loc, so that subsequent calendar
// operations (day/hour boundaries) happen in the display timezone. Accepted
// inputs: an ISO-8601/RFC3339 string with offset, an ISO-8601-like string
// without offset (treated as UTC), a numeric epoch (values at or above 1e12
// are milliseconds, everything else seconds), or an already-parsed
// time.Time. A nil loc means UTC.
//
// Returns ok=false for empty or unparseable input; the caller skips the
// sample. Malformed data never produces a panic past this boundary.
func NormalizeTimestamp(raw any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}

	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.In(loc), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return v.In(loc), true
	case string:
		return parseTimestampString(v, loc)
	case float64:
		return epochToInstant(v, loc)
	case float32:
		return epochToInstant(float64(v), loc)
	case int:
		return epochToInstant(float64(v), loc)
	case int64:
		return epochToInstant(float64(v), loc)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochToInstant(f, loc)
	default:
		return time.Time{}, false
	}
}

func parseTimestampString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Zone-qualified forms first.
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true
	}

	// Naive forms are read as UTC.
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.In(loc), true
		}
	}

	// Some agents report the epoch as a quoted number.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return epochToInstant(f, loc)
	}

	return time.Time{}, false
}

func epochToInstant(v float64, loc *time.Location) (time.Time, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return time.Time{}, false
	}

	// Millisecond epochs passed the 1e12 mark in 2001; second epochs will
	// not reach it for tens of thousands of years.
	if v >= 1e12 {
		v /= 1000
	}

	sec := int64(v)
	nsec := int64((v - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).In(loc), true
}
