package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// SQLiteStorage implements SQLite-based persistent sample storage
type SQLiteStorage struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log := logger.Default().WithComponent("storage-sqlite")
	log.Info("SQLite storage initialized", "path", dbPath)
	return storage, nil
}

func (s *SQLiteStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS traffic_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		server_name TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		rx_rate REAL NOT NULL,
		tx_rate REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON traffic_samples(timestamp);
	CREATE INDEX IF NOT EXISTS idx_server_name ON traffic_samples(server_name);
	CREATE INDEX IF NOT EXISTS idx_server_timestamp ON traffic_samples(server_name, timestamp);
	`

	_, err := s.db.Exec(query)
	return err
}

// sampleTime extracts the concrete instant from a sample. Feeding samples
// with a raw, un-normalized timestamp to storage is a caller bug.
func sampleTime(s models.Sample) (time.Time, error) {
	ts, ok := s.Timestamp.(time.Time)
	if !ok || ts.IsZero() {
		return time.Time{}, fmt.Errorf("sample for %q has no normalized timestamp", s.ServerName)
	}
	return ts.UTC(), nil
}

func sampleRates(s models.Sample) (float64, float64, error) {
	if s.RxRate == nil || s.TxRate == nil {
		return 0, 0, fmt.Errorf("sample for %q is missing a rate", s.ServerName)
	}
	return *s.RxRate, *s.TxRate, nil
}

func (s *SQLiteStorage) AddSample(sample models.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertSample(s.db, sample)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStorage) insertSample(ex execer, sample models.Sample) error {
	ts, err := sampleTime(sample)
	if err != nil {
		return err
	}
	rx, tx, err := sampleRates(sample)
	if err != nil {
		return err
	}

	_, err = ex.Exec(
		`INSERT INTO traffic_samples (server_name, timestamp, rx_rate, tx_rate) VALUES (?, ?, ?, ?)`,
		sample.ServerName, ts, rx, tx,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) AddSamples(samples []models.Sample) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	inserted := 0
	for _, sample := range samples {
		if err := s.insertSample(tx, sample); err != nil {
			tx.Rollback()
			return 0, err
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit samples: %w", err)
	}
	return inserted, nil
}

func (s *SQLiteStorage) SamplesSince(server string, since time.Time) ([]models.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT server_name, timestamp, rx_rate, tx_rate
		 FROM traffic_samples
		 WHERE server_name = ? AND timestamp >= ?
		 ORDER BY timestamp ASC`,
		server, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

func (s *SQLiteStorage) AllSamplesSince(since time.Time) (map[string][]models.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT server_name, timestamp, rx_rate, tx_rate
		 FROM traffic_samples
		 WHERE timestamp >= ?
		 ORDER BY server_name ASC, timestamp ASC`,
		since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	samples, err := scanSamples(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.Sample)
	for _, sample := range samples {
		grouped[sample.ServerName] = append(grouped[sample.ServerName], sample)
	}
	return grouped, nil
}

func scanSamples(rows *sql.Rows) ([]models.Sample, error) {
	var samples []models.Sample
	for rows.Next() {
		var (
			name   string
			ts     time.Time
			rx, tx float64
		)
		if err := rows.Scan(&name, &ts, &rx, &tx); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, models.NewSample(name, ts.UTC(), rx, tx))
	}
	return samples, rows.Err()
}

func (s *SQLiteStorage) Servers() ([]models.ServerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT server_name, MIN(timestamp), MAX(timestamp), COUNT(*)
		 FROM traffic_samples
		 GROUP BY server_name
		 ORDER BY server_name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query servers: %w", err)
	}
	defer rows.Close()

	var servers []models.ServerInfo
	for rows.Next() {
		var (
			info              models.ServerInfo
			firstRaw, lastRaw string
		)
		// MIN/MAX are expressions, so the driver hands them back as text.
		if err := rows.Scan(&info.Name, &firstRaw, &lastRaw, &info.SampleCount); err != nil {
			return nil, fmt.Errorf("failed to scan server info: %w", err)
		}
		if info.FirstSeen, err = parseStoredTime(firstRaw); err != nil {
			return nil, err
		}
		if info.LastSeen, err = parseStoredTime(lastRaw); err != nil {
			return nil, err
		}
		servers = append(servers, info)
	}
	return servers, rows.Err()
}

// Layouts go-sqlite3 uses when it writes a time.Time into a DATETIME column.
var storedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseStoredTime(raw string) (time.Time, error) {
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable stored timestamp %q", raw)
}

func (s *SQLiteStorage) PruneBefore(t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM traffic_samples WHERE timestamp < ?`, t.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune samples: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
