// Package timezone resolves the display timezone the aggregation engine
// performs its calendar operations in.
package timezone

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
)

// Resolve turns a configured timezone name into a *time.Location. An empty
// name or the sentinel "UTC" (any case) resolves to UTC; anything else is
// looked up as an IANA identifier.
func Resolve(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("resolving timezone %q: %w", name, err)
	}
	return loc, nil
}

// ResolveOrUTC resolves a timezone name, falling back to UTC with a warning
// when the name is unknown. Chart rendering should degrade, not fail, on a
// bad timezone setting.
func ResolveOrUTC(name string) *time.Location {
	loc, err := Resolve(name)
	if err != nil {
		log := logger.Default().WithComponent("timezone")
		log.Warn("Unknown display timezone, falling back to UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// FromEnv returns the display timezone override from the environment, or
// the provided configured name when no override is set.
func FromEnv(configured string) string {
	if v := os.Getenv("VNSTAT_DISPLAY_TIMEZONE"); v != "" {
		return v
	}
	if v := os.Getenv("TZ"); v != "" && configured == "" {
		return v
	}
	return configured
}
