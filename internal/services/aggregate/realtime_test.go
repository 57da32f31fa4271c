package aggregate

import (
	"testing"
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

func TestAggregateRealtimeFixedBucketCount(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 7, 0, time.UTC)

	perServer := map[string][]models.Sample{
		"web01": {models.NewSample("web01", now.Add(-time.Minute), 10, 5)},
		"quiet": {},
	}

	series := AggregateRealtime(perServer, now, time.UTC)
	if len(series) != 2 {
		t.Fatalf("expected series for 2 servers, got %d", len(series))
	}

	for name, points := range series {
		if len(points) != RealtimeBucketCount {
			t.Fatalf("%s: expected %d buckets, got %d", name, RealtimeBucketCount, len(points))
		}
	}

	// A server with no samples still gets a full series of explicit zeros.
	for i, p := range series["quiet"] {
		if p.Throughput != 0 || p.SampleCount != 0 {
			t.Fatalf("quiet server bucket %d: expected zero point, got %+v", i, p)
		}
	}
}

func TestAggregateRealtimeThroughputCombinesRxAndTx(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	at := now.Add(-time.Minute)

	perServer := map[string][]models.Sample{
		"web01": {
			models.NewSample("web01", at.Add(2*time.Second), 10, 5),
			models.NewSample("web01", at.Add(12*time.Second), 20, 15),
		},
	}

	series := AggregateRealtime(perServer, now, time.UTC)
	points := series["web01"]

	var hit *models.RealtimePoint
	for i := range points {
		if points[i].SampleCount > 0 {
			if hit != nil {
				t.Fatalf("expected samples in a single bucket, also found %s", points[i].Timestamp)
			}
			hit = &points[i]
		}
	}
	if hit == nil {
		t.Fatalf("expected one populated bucket")
	}
	// mean rx 15 plus mean tx 10
	if hit.Throughput != 25 {
		t.Fatalf("expected throughput 25, got %v", hit.Throughput)
	}
	if hit.SampleCount != 2 {
		t.Fatalf("expected 2 samples, got %d", hit.SampleCount)
	}
}

func TestAggregateRealtimeWindowBounds(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	perServer := map[string][]models.Sample{
		"web01": {
			models.NewSample("web01", now.Add(-16*time.Minute), 100, 100), // too old
			models.NewSample("web01", now.Add(30*time.Second), 100, 100),  // future, past end
			models.NewSample("web01", now.Add(-RealtimeWindow), 10, 0),    // first bucket
			models.NewSample("web01", now.Add(-RealtimeBucketWidth), 20, 0), // last bucket
		},
	}

	series := AggregateRealtime(perServer, now, time.UTC)
	points := series["web01"]

	if points[0].SampleCount != 1 || points[0].Throughput != 10 {
		t.Fatalf("expected oldest in-window sample in first bucket, got %+v", points[0])
	}
	last := points[len(points)-1]
	if last.SampleCount != 1 || last.Throughput != 20 {
		t.Fatalf("expected newest in-window sample in last bucket, got %+v", last)
	}

	var total int
	for _, p := range points {
		total += p.SampleCount
	}
	if total != 2 {
		t.Fatalf("expected exactly the 2 in-window samples counted, got %d", total)
	}
}

func TestAggregateRealtimeBucketTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 17, 0, time.UTC)

	series := AggregateRealtime(map[string][]models.Sample{"web01": {}}, now, time.UTC)
	points := series["web01"]

	end := now.Truncate(RealtimeBucketWidth)
	start := end.Add(-RealtimeWindow)
	for i, p := range points {
		want := start.Add(time.Duration(i) * RealtimeBucketWidth)
		if !p.Timestamp.Equal(want) {
			t.Fatalf("bucket %d: expected %s, got %s", i, want, p.Timestamp)
		}
	}
}
