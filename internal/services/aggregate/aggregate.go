// Package aggregate is the time-series bucketing engine behind the dashboard
// charts. It takes irregularly-sampled, multi-server throughput samples and
// produces fixed-size, time-aligned, averaged series for arbitrary look-back
// windows, plus a dense short-window series for the live chart.
//
// Everything here is pure, synchronous computation over in-memory slices:
// no I/O, no clock reads, no retained state. `now` and the display timezone
// are explicit parameters so repeated calls with the same inputs produce
// bit-identical output.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// validSample is a sample that survived validation: normalized timestamp,
// concrete non-negative rates.
type validSample struct {
	at time.Time
	rx float64
	tx float64
}

// validateSample normalizes a raw sample. ok=false means the sample is
// malformed (missing or unparseable timestamp, missing or non-finite or
// negative rate) and must be skipped; it contributes no data but does not
// abort the batch.
func validateSample(s models.Sample, loc *time.Location) (validSample, bool) {
	at, ok := NormalizeTimestamp(s.Timestamp, loc)
	if !ok {
		return validSample{}, false
	}
	if !validRate(s.RxRate) || !validRate(s.TxRate) {
		return validSample{}, false
	}
	return validSample{at: at, rx: *s.RxRate, tx: *s.TxRate}, true
}

func validRate(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v >= 0
}

// collectValid filters, normalizes and cutoff-trims one sample slice, then
// sorts the survivors by (instant, rx, tx). The sort makes every downstream
// floating-point accumulation independent of input ordering, which is what
// keeps aggregation output stable when the caller shuffles its input.
func collectValid(samples []models.Sample, cutoff time.Time, loc *time.Location) []validSample {
	kept := make([]validSample, 0, len(samples))
	for _, s := range samples {
		vs, ok := validateSample(s, loc)
		if !ok {
			continue
		}
		if vs.at.Before(cutoff) {
			continue
		}
		kept = append(kept, vs)
	}

	sort.Slice(kept, func(i, j int) bool {
		if !kept[i].at.Equal(kept[j].at) {
			return kept[i].at.Before(kept[j].at)
		}
		if kept[i].rx != kept[j].rx {
			return kept[i].rx < kept[j].rx
		}
		return kept[i].tx < kept[j].tx
	})

	return kept
}

// rateAccum accumulates rx/tx values for one bucket.
type rateAccum struct {
	rxSum float64
	txSum float64
	count int
}

func (a *rateAccum) add(vs validSample) {
	a.rxSum += vs.rx
	a.txSum += vs.tx
	a.count++
}

// meanRx returns the arithmetic mean of accumulated rx values, 0 when the
// bucket holds no samples.
func (a *rateAccum) meanRx() float64 {
	if a.count == 0 {
		return 0
	}
	return a.rxSum / float64(a.count)
}

func (a *rateAccum) meanTx() float64 {
	if a.count == 0 {
		return 0
	}
	return a.txSum / float64(a.count)
}

// Aggregate buckets one server's raw samples for the given look-back window
// and returns a per-bucket averaged series, sorted ascending by bucket start
// and truncated to the trailing TargetPointCount points. Empty input, or
// input where every sample is filtered out, yields an empty series rather
// than an error. Input slices are never mutated.
func Aggregate(samples []models.Sample, label string, now time.Time, loc *time.Location) []models.BucketedPoint {
	if loc == nil {
		loc = time.UTC
	}
	w := WindowFor(label)
	cutoff := w.Cutoff(now)

	buckets := make(map[int64]*rateAccum)
	starts := make(map[int64]time.Time)

	for _, vs := range collectValid(samples, cutoff, loc) {
		key := w.BucketKey(w.Standardize(vs.at))
		k := key.UnixNano()
		acc, exists := buckets[k]
		if !exists {
			acc = &rateAccum{}
			buckets[k] = acc
			starts[k] = key
		}
		acc.add(vs)
	}

	points := make([]models.BucketedPoint, 0, len(buckets))
	for k, acc := range buckets {
		points = append(points, models.BucketedPoint{
			Timestamp:      starts[k],
			RxRate:         acc.meanRx(),
			TxRate:         acc.meanTx(),
			DataPointCount: acc.count,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	if len(points) > TargetPointCount {
		points = points[len(points)-TargetPointCount:]
	}

	return points
}
