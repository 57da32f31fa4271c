package aggregate

import (
	"sort"
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// combinedBucket tracks samples per server separately so each server can be
// averaged on its own before servers are summed.
type combinedBucket struct {
	start     time.Time
	perServer map[string]*rateAccum
}

// Combine merges multiple servers' raw samples into shared time buckets and
// produces one combined point per bucket. Within a bucket, each server that
// has at least one valid sample contributes its own per-bucket mean; the
// bucket's totals are the sums of those means across contributing servers.
// Summing means rather than raw samples keeps the total from tilting toward
// servers that happened to report more often inside the bucket.
//
// Buckets that end up with no contributing server are dropped from the
// output entirely, not emitted as zero points. Sorting and truncation match
// Aggregate.
func Combine(perServer map[string][]models.Sample, label string, now time.Time, loc *time.Location) []models.CombinedPoint {
	if loc == nil {
		loc = time.UTC
	}
	w := WindowFor(label)
	cutoff := w.Cutoff(now)

	buckets := make(map[int64]*combinedBucket)

	// Servers are visited in name order so the per-bucket sums accumulate
	// in a fixed order and repeated calls stay bit-identical.
	names := make([]string, 0, len(perServer))
	for name := range perServer {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, vs := range collectValid(perServer[name], cutoff, loc) {
			key := w.BucketKey(w.Standardize(vs.at))
			k := key.UnixNano()
			b, exists := buckets[k]
			if !exists {
				b = &combinedBucket{start: key, perServer: make(map[string]*rateAccum)}
				buckets[k] = b
			}
			acc, exists := b.perServer[name]
			if !exists {
				acc = &rateAccum{}
				b.perServer[name] = acc
			}
			acc.add(vs)
		}
	}

	points := make([]models.CombinedPoint, 0, len(buckets))
	for _, b := range buckets {
		point := models.CombinedPoint{Timestamp: b.start}

		servers := make([]string, 0, len(b.perServer))
		for name := range b.perServer {
			servers = append(servers, name)
		}
		sort.Strings(servers)

		for _, name := range servers {
			acc := b.perServer[name]
			if acc.count == 0 {
				continue
			}
			point.TotalRx += acc.meanRx()
			point.TotalTx += acc.meanTx()
			point.ServerCount++
			point.DataPointCount += acc.count
		}

		if point.ServerCount == 0 {
			continue
		}
		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	if len(points) > TargetPointCount {
		points = points[len(points)-TargetPointCount:]
	}

	return points
}
