package aggregate

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestNormalizeTimestamp(t *testing.T) {
	utc := time.UTC
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("loading Europe/Berlin: %v", err)
	}

	ref := time.Date(2026, 3, 10, 12, 30, 45, 0, time.UTC)

	tests := map[string]struct {
		raw    any
		loc    *time.Location
		want   time.Time
		wantOK bool
	}{
		"time.Time passthrough":   {raw: ref, loc: utc, want: ref, wantOK: true},
		"time.Time converts zone": {raw: ref, loc: berlin, want: ref.In(berlin), wantOK: true},
		"zero time.Time":          {raw: time.Time{}, loc: utc, wantOK: false},
		"rfc3339 with offset":     {raw: "2026-03-10T14:30:45+02:00", loc: utc, want: ref, wantOK: true},
		"rfc3339 zulu":            {raw: "2026-03-10T12:30:45Z", loc: utc, want: ref, wantOK: true},
		"rfc3339 fractional":      {raw: "2026-03-10T12:30:45.500Z", loc: utc, want: ref.Add(500 * time.Millisecond), wantOK: true},
		"naive treated as utc":    {raw: "2026-03-10T12:30:45", loc: berlin, want: ref.In(berlin), wantOK: true},
		"naive with space":        {raw: "2026-03-10 12:30:45", loc: utc, want: ref, wantOK: true},
		"date only":               {raw: "2026-03-10", loc: utc, want: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), wantOK: true},
		"epoch seconds":           {raw: float64(ref.Unix()), loc: utc, want: ref, wantOK: true},
		"epoch millis":            {raw: float64(ref.UnixMilli()), loc: utc, want: ref, wantOK: true},
		"epoch int":               {raw: int(ref.Unix()), loc: utc, want: ref, wantOK: true},
		"epoch int64 millis":      {raw: ref.UnixMilli(), loc: utc, want: ref, wantOK: true},
		"quoted epoch":            {raw: "1773145845", loc: utc, want: time.Unix(1773145845, 0).UTC(), wantOK: true},
		"json.Number":             {raw: json.Number("1773145845"), loc: utc, want: time.Unix(1773145845, 0).UTC(), wantOK: true},
		"nil loc falls back":      {raw: "2026-03-10T12:30:45Z", loc: nil, want: ref, wantOK: true},
		"empty string":            {raw: "", loc: utc, wantOK: false},
		"whitespace string":       {raw: "   ", loc: utc, wantOK: false},
		"garbage string":          {raw: "not-a-time", loc: utc, wantOK: false},
		"nil":                     {raw: nil, loc: utc, wantOK: false},
		"bool":                    {raw: true, loc: utc, wantOK: false},
		"nan epoch":               {raw: math.NaN(), loc: utc, wantOK: false},
		"inf epoch":               {raw: math.Inf(1), loc: utc, wantOK: false},
		"negative epoch":          {raw: float64(-5), loc: utc, wantOK: false},
		"zero epoch":              {raw: float64(0), loc: utc, wantOK: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := NormalizeTimestamp(tc.raw, tc.loc)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got ok=%v (value %s)", tc.wantOK, ok, got)
			}
			if !tc.wantOK {
				return
			}
			if !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNormalizeTimestampExpressesInLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("loading Europe/Berlin: %v", err)
	}

	got, ok := NormalizeTimestamp("2026-03-10T12:30:45Z", berlin)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Location() != berlin {
		t.Fatalf("expected location Europe/Berlin, got %s", got.Location())
	}
}

func TestNormalizeTimestampMillisThreshold(t *testing.T) {
	// Just below the threshold is read as seconds, at the threshold as
	// milliseconds.
	below, ok := NormalizeTimestamp(1e12-1, time.UTC)
	if !ok {
		t.Fatalf("expected ok below threshold")
	}
	at, ok := NormalizeTimestamp(1e12, time.UTC)
	if !ok {
		t.Fatalf("expected ok at threshold")
	}

	if got := below.Unix(); got != int64(1e12-1) {
		t.Fatalf("below threshold: expected seconds interpretation, got %d", got)
	}
	if got := at.Unix(); got != int64(1e9) {
		t.Fatalf("at threshold: expected milliseconds interpretation, got %d", got)
	}
}
