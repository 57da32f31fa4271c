package aggregate

import (
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// Fixed parameters of the live chart, independent of the general window
// table.
const (
	RealtimeWindow      = 15 * time.Minute
	RealtimeBucketWidth = 30 * time.Second
	RealtimeBucketCount = int(RealtimeWindow / RealtimeBucketWidth)
)

// AggregateRealtime produces the short high-resolution series for the live
// chart: for each server independently, all buckets spanning [now-15m, now)
// at 30-second spacing are pre-created, so a server that went quiet shows
// explicit zero points instead of a gap. Each point's value is the bucket's
// mean rx plus mean tx, a single combined throughput scalar.
func AggregateRealtime(perServer map[string][]models.Sample, now time.Time, loc *time.Location) map[string][]models.RealtimePoint {
	if loc == nil {
		loc = time.UTC
	}

	end := now.Truncate(RealtimeBucketWidth)
	start := end.Add(-RealtimeWindow).In(loc)

	out := make(map[string][]models.RealtimePoint, len(perServer))
	for name, samples := range perServer {
		accs := make([]rateAccum, RealtimeBucketCount)

		for _, vs := range collectValid(samples, start, loc) {
			if !vs.at.Before(end) {
				continue
			}
			idx := int(vs.at.Truncate(RealtimeBucketWidth).Sub(start) / RealtimeBucketWidth)
			if idx < 0 || idx >= RealtimeBucketCount {
				continue
			}
			accs[idx].add(vs)
		}

		points := make([]models.RealtimePoint, RealtimeBucketCount)
		for i := range accs {
			points[i] = models.RealtimePoint{
				Timestamp:   start.Add(time.Duration(i) * RealtimeBucketWidth),
				Throughput:  accs[i].meanRx() + accs[i].meanTx(),
				SampleCount: accs[i].count,
			}
		}
		out[name] = points
	}

	return out
}
