// Package ingest validates reported samples and moves them into storage.
package ingest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/config"
	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
	"github.com/reaperofpower/vnstat-dashboard/internal/services/aggregate"
)

// Validate normalizes one wire-format sample into its storable form. The
// returned reason names what was wrong when ok=false, for the rejection
// counter.
func Validate(s models.Sample) (models.Sample, string, bool) {
	if s.ServerName == "" {
		return models.Sample{}, "missing_server_name", false
	}

	// Normalize to UTC here; the display timezone is applied at read time.
	ts, ok := aggregate.NormalizeTimestamp(s.Timestamp, time.UTC)
	if !ok {
		return models.Sample{}, "bad_timestamp", false
	}
	if s.RxRate == nil || s.TxRate == nil {
		return models.Sample{}, "missing_rate", false
	}
	if *s.RxRate < 0 || *s.TxRate < 0 {
		return models.Sample{}, "negative_rate", false
	}

	return models.NewSample(s.ServerName, ts, *s.RxRate, *s.TxRate), "", true
}

// Submit validates a batch and queues the valid samples for the processor.
// Malformed records are counted and skipped; they never abort the batch.
func Submit(appState *config.AppState, samples []models.Sample, remoteAddr string) models.IngestResult {
	log := logger.Default().WithComponent("ingest")

	var result models.IngestResult
	for _, raw := range samples {
		sample, reason, ok := Validate(raw)
		if !ok {
			result.Rejected++
			config.SamplesRejectedTotal.WithLabelValues(reason).Inc()
			log.Debug("Sample rejected", "server_name", raw.ServerName, "reason", reason)
			continue
		}

		appState.SampleChan <- config.IncomingSample{Sample: sample, RemoteAddr: remoteAddr}
		result.Accepted++
	}

	return result
}

// StartProcessor starts the goroutine that drains the sample channel into
// storage and updates the per-server gauges.
func StartProcessor(ctx context.Context, appState *config.AppState) {
	log := logger.Default().WithComponent("ingest-processor")
	log.Info("Starting ingest processor")

	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Info("Stopping ingest processor")
				return
			case incoming := <-appState.SampleChan:
				processSample(appState, incoming)
			}
		}
	}()
}

func processSample(appState *config.AppState, incoming config.IncomingSample) {
	log := logger.Default().WithComponent("ingest-processor")
	sample := incoming.Sample

	if err := appState.Storage.AddSample(sample); err != nil {
		log.Error("Failed to store sample", "server_name", sample.ServerName, "error", err)
		config.SamplesRejectedTotal.WithLabelValues("storage_error").Inc()
		return
	}

	atomic.AddInt64(&appState.TotalSamples, 1)
	config.SamplesIngestedTotal.WithLabelValues(sample.ServerName).Inc()
	config.ServerRxRateGauge.WithLabelValues(sample.ServerName).Set(*sample.RxRate)
	config.ServerTxRateGauge.WithLabelValues(sample.ServerName).Set(*sample.TxRate)

	appState.TouchServer(sample.ServerName, incoming.RemoteAddr, time.Now())
}

// StartRetentionWorker prunes samples older than the configured retention
// window on a fixed cadence.
func StartRetentionWorker(ctx context.Context, appState *config.AppState, interval time.Duration) {
	log := logger.Default().WithComponent("retention")
	retention := appState.Config.Storage.Retention
	log.Info("Starting retention worker", "interval", interval, "retention", retention)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("Stopping retention worker")
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				pruned, err := appState.Storage.PruneBefore(cutoff)
				if err != nil {
					log.Error("Failed to prune samples", "error", err)
					continue
				}
				if pruned > 0 {
					config.StoredSamplesPruned.Add(float64(pruned))
					log.Info("Pruned old samples", "count", pruned, "cutoff", cutoff)
				}
			}
		}
	}()
}
