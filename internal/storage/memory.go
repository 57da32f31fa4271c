package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// memorySample is the flattened stored form of a sample.
type memorySample struct {
	server string
	at     time.Time
	rx     float64
	tx     float64
}

// MemoryStorage implements in-memory sample storage with a ring buffer.
// Intended for tests and small ephemeral deployments.
type MemoryStorage struct {
	samples    []memorySample
	maxSamples int
	mu         sync.RWMutex
}

// NewMemoryStorage creates a new memory storage instance
func NewMemoryStorage(maxSamples int) *MemoryStorage {
	if maxSamples <= 0 {
		maxSamples = 100000
	}
	return &MemoryStorage{
		samples:    make([]memorySample, 0, maxSamples),
		maxSamples: maxSamples,
	}
}

func (m *MemoryStorage) AddSample(sample models.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(sample)
}

func (m *MemoryStorage) add(sample models.Sample) error {
	ts, ok := sample.Timestamp.(time.Time)
	if !ok || ts.IsZero() {
		return fmt.Errorf("sample for %q has no normalized timestamp", sample.ServerName)
	}
	if sample.RxRate == nil || sample.TxRate == nil {
		return fmt.Errorf("sample for %q is missing a rate", sample.ServerName)
	}

	ms := memorySample{
		server: sample.ServerName,
		at:     ts.UTC(),
		rx:     *sample.RxRate,
		tx:     *sample.TxRate,
	}

	// Ring buffer behavior
	if len(m.samples) >= m.maxSamples {
		m.samples = append(m.samples[1:], ms)
	} else {
		m.samples = append(m.samples, ms)
	}
	return nil
}

func (m *MemoryStorage) AddSamples(samples []models.Sample) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sample := range samples {
		if err := m.add(sample); err != nil {
			return i, err
		}
	}
	return len(samples), nil
}

func (m *MemoryStorage) SamplesSince(server string, since time.Time) ([]models.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Sample
	for _, ms := range m.samples {
		if ms.server != server || ms.at.Before(since) {
			continue
		}
		out = append(out, models.NewSample(ms.server, ms.at, ms.rx, ms.tx))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.(time.Time).Before(out[j].Timestamp.(time.Time))
	})
	return out, nil
}

func (m *MemoryStorage) AllSamplesSince(since time.Time) (map[string][]models.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	grouped := make(map[string][]models.Sample)
	for _, ms := range m.samples {
		if ms.at.Before(since) {
			continue
		}
		grouped[ms.server] = append(grouped[ms.server], models.NewSample(ms.server, ms.at, ms.rx, ms.tx))
	}

	for server := range grouped {
		samples := grouped[server]
		sort.Slice(samples, func(i, j int) bool {
			return samples[i].Timestamp.(time.Time).Before(samples[j].Timestamp.(time.Time))
		})
	}
	return grouped, nil
}

func (m *MemoryStorage) Servers() ([]models.ServerInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byName := make(map[string]*models.ServerInfo)
	for _, ms := range m.samples {
		info, exists := byName[ms.server]
		if !exists {
			info = &models.ServerInfo{Name: ms.server, FirstSeen: ms.at, LastSeen: ms.at}
			byName[ms.server] = info
		}
		if ms.at.Before(info.FirstSeen) {
			info.FirstSeen = ms.at
		}
		if ms.at.After(info.LastSeen) {
			info.LastSeen = ms.at
		}
		info.SampleCount++
	}

	servers := make([]models.ServerInfo, 0, len(byName))
	for _, info := range byName {
		servers = append(servers, *info)
	}
	sort.Slice(servers, func(i, j int) bool {
		return servers[i].Name < servers[j].Name
	})
	return servers, nil
}

func (m *MemoryStorage) PruneBefore(t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.samples[:0]
	var pruned int64
	for _, ms := range m.samples {
		if ms.at.Before(t) {
			pruned++
			continue
		}
		kept = append(kept, ms)
	}
	m.samples = kept
	return pruned, nil
}

func (m *MemoryStorage) Close() error {
	// Nothing to close for memory storage
	return nil
}
