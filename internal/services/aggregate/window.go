package aggregate

import (
	"time"
)

// TargetPointCount is the fixed number of output points a chart expects
// regardless of the look-back window length.
const TargetPointCount = 60

// Window describes one look-back window: the total span of history it
// covers, the bucket width the span is divided into (sized so that
// duration/width comes out at roughly TargetPointCount), and the coarser
// snap interval applied before bucketing to absorb small clock skew between
// independently-clocked reporting servers.
type Window struct {
	Label        string
	Duration     time.Duration
	BucketWidth  time.Duration
	SnapInterval time.Duration
}

// The snap intervals are a skew-tolerance heuristic; they are data here
// rather than constants baked into the bucketing code so they can be tuned
// without touching the algorithm.
var windows = []Window{
	{Label: "1h", Duration: time.Hour, BucketWidth: time.Minute, SnapInterval: 5 * time.Second},
	{Label: "6h", Duration: 6 * time.Hour, BucketWidth: 6 * time.Minute, SnapInterval: 5 * time.Second},
	{Label: "12h", Duration: 12 * time.Hour, BucketWidth: 12 * time.Minute, SnapInterval: 30 * time.Second},
	{Label: "1d", Duration: 24 * time.Hour, BucketWidth: 24 * time.Minute, SnapInterval: 30 * time.Second},
	{Label: "3d", Duration: 72 * time.Hour, BucketWidth: 72 * time.Minute, SnapInterval: time.Minute},
	{Label: "1w", Duration: 168 * time.Hour, BucketWidth: 168 * time.Minute, SnapInterval: time.Minute},
}

// WindowFor returns the window configuration for a label. Unknown labels
// fall back to the 1h window so a chart stays usable under an unexpected
// or future label.
func WindowFor(label string) Window {
	for _, w := range windows {
		if w.Label == label {
			return w
		}
	}
	return windows[0]
}

// WindowLabels returns the supported look-back labels in display order.
func WindowLabels() []string {
	labels := make([]string, len(windows))
	for i, w := range windows {
		labels[i] = w.Label
	}
	return labels
}

// Cutoff returns the earliest instant retained by this window. Samples
// strictly earlier are dropped before bucketing, independent of bucket
// alignment.
func (w Window) Cutoff(now time.Time) time.Time {
	return now.Add(-w.Duration)
}

// Standardize snaps an instant to the window's snap interval. This happens
// strictly before the bucket key is computed.
func (w Window) Standardize(t time.Time) time.Time {
	return t.Truncate(w.SnapInterval)
}

// BucketKey floors an instant to the start of its containing bucket. Buckets
// are anchored at the start of the instant's calendar day in its location,
// so every instant inside the same width-window maps to an identical key.
func (w Window) BucketKey(t time.Time) time.Time {
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(dayStart)
	return dayStart.Add(offset - offset%w.BucketWidth)
}

// KeyFunc returns the deterministic instant-to-bucket-start mapping for a
// window label, for callers that want to bucket instants themselves.
func KeyFunc(label string) func(time.Time) time.Time {
	w := WindowFor(label)
	return func(t time.Time) time.Time {
		return w.BucketKey(w.Standardize(t))
	}
}
