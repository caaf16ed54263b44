// Package store provides the durable JSON-file-backed stores behind the
// effectiveness ledger and session checkpoints.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EffectivenessRecord is the persisted learning state for one
// (source, domain) pair
type EffectivenessRecord struct {
	Source      string    `json:"source"`
	Domain      string    `json:"domain"`
	Score       float64   `json:"score"`
	LastQuality float64   `json:"last_quality"`
	Queries     int       `json:"queries"`
	Successes   int       `json:"successes"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DiskEffectivenessStore persists effectiveness records as one JSON file
// per (source, domain) pair. Upserts are atomic: serialized by a mutex
// and written via temp-file rename, so concurrent sessions are
// last-writer-wins on a key.
type DiskEffectivenessStore struct {
	dir string
	mu  sync.Mutex
}

// NewDiskEffectivenessStore creates a store rooted at dir
func NewDiskEffectivenessStore(dir string) *DiskEffectivenessStore {
	return &DiskEffectivenessStore{dir: dir}
}

// Get returns the current score for (source, domain); ok is false when
// no record exists
func (s *DiskEffectivenessStore) Get(source, domain string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(source, domain)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read effectiveness record: %w", err)
	}
	return rec.Score, true, nil
}

// Set upserts the record for (source, domain), maintaining the implicit
// query/success counters
func (s *DiskEffectivenessStore) Set(source, domain string, score, lastQuality float64, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(source, domain)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read effectiveness record: %w", err)
		}
		rec = &EffectivenessRecord{Source: source, Domain: domain}
	}

	rec.Score = score
	rec.LastQuality = lastQuality
	rec.Queries++
	if success {
		rec.Successes++
	}
	rec.UpdatedAt = time.Now().UTC()

	return s.write(rec)
}

// All returns every persisted record, optionally filtered by domain
// (empty domain means all)
func (s *DiskEffectivenessStore) All(domain string) ([]EffectivenessRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list effectiveness records: %w", err)
	}

	var records []EffectivenessRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var rec EffectivenessRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		if domain != "" && rec.Domain != domain {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *DiskEffectivenessStore) read(source, domain string) (*EffectivenessRecord, error) {
	data, err := os.ReadFile(s.path(source, domain))
	if err != nil {
		return nil, err
	}
	var rec EffectivenessRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *DiskEffectivenessStore) write(rec *EffectivenessRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	return atomicWrite(s.path(rec.Source, rec.Domain), data)
}

func (s *DiskEffectivenessStore) path(source, domain string) string {
	return filepath.Join(s.dir, safeName(domain)+"__"+safeName(source)+".json")
}

// atomicWrite writes via a temp file and rename so readers never see a
// partial record
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// safeName makes a key usable as a file name component
func safeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return replacer.Replace(name)
}
