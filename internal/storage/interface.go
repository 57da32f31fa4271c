package storage

import (
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// Storage interface for pluggable sample stores. Implementations receive
// samples whose Timestamp has already been normalized to a concrete
// time.Time by the ingest pipeline.
type Storage interface {
	AddSample(s models.Sample) error
	AddSamples(samples []models.Sample) (int, error)
	SamplesSince(server string, since time.Time) ([]models.Sample, error)
	AllSamplesSince(since time.Time) (map[string][]models.Sample, error)
	Servers() ([]models.ServerInfo, error)
	PruneBefore(t time.Time) (int64, error)
	Close() error
}

// CreateStorage creates a storage instance based on configuration
func CreateStorage(config models.Config) (Storage, error) {
	switch config.Storage.Type {
	case "sqlite":
		return NewSQLiteStorage(config.Storage.SQLitePath)
	case "memory":
		fallthrough
	default:
		maxSamples := config.Storage.MaxSamples
		if maxSamples <= 0 {
			maxSamples = 100000
		}
		return NewMemoryStorage(maxSamples), nil
	}
}
