package timezone

import (
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	tests := map[string]struct {
		name    string
		want    string
		wantErr bool
	}{
		"empty":        {name: "", want: "UTC"},
		"utc":          {name: "UTC", want: "UTC"},
		"utc lowercase": {name: "utc", want: "UTC"},
		"utc padded":   {name: "  UTC  ", want: "UTC"},
		"iana":         {name: "Europe/Berlin", want: "Europe/Berlin"},
		"unknown":      {name: "Mars/Olympus", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			loc, err := Resolve(tc.name)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", loc)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tc.name, err)
			}
			if loc.String() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, loc)
			}
		})
	}
}

func TestResolveOrUTCFallsBack(t *testing.T) {
	if loc := ResolveOrUTC("Not/AZone"); loc != time.UTC {
		t.Fatalf("expected fallback to UTC, got %s", loc)
	}
	if loc := ResolveOrUTC("Europe/Berlin"); loc.String() != "Europe/Berlin" {
		t.Fatalf("expected Europe/Berlin, got %s", loc)
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		t.Setenv("VNSTAT_DISPLAY_TIMEZONE", "Asia/Tokyo")
		t.Setenv("TZ", "Europe/Berlin")
		if got := FromEnv("America/New_York"); got != "Asia/Tokyo" {
			t.Fatalf("expected Asia/Tokyo, got %s", got)
		}
	})

	t.Run("tz used only when unconfigured", func(t *testing.T) {
		t.Setenv("VNSTAT_DISPLAY_TIMEZONE", "")
		t.Setenv("TZ", "Europe/Berlin")
		if got := FromEnv(""); got != "Europe/Berlin" {
			t.Fatalf("expected Europe/Berlin, got %s", got)
		}
		if got := FromEnv("America/New_York"); got != "America/New_York" {
			t.Fatalf("expected configured value kept, got %s", got)
		}
	})

	t.Run("configured passthrough", func(t *testing.T) {
		t.Setenv("VNSTAT_DISPLAY_TIMEZONE", "")
		t.Setenv("TZ", "")
		if got := FromEnv("Europe/Berlin"); got != "Europe/Berlin" {
			t.Fatalf("expected passthrough, got %s", got)
		}
	})
}
