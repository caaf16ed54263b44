package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

// DiskSessionStore checkpoints CycleState as one JSON file per session
// so a crashed session can resume from its last completed phase
type DiskSessionStore struct {
	dir string
	mu  sync.Mutex
}

// NewDiskSessionStore creates a session store rooted at dir
func NewDiskSessionStore(dir string) *DiskSessionStore {
	return &DiskSessionStore{dir: dir}
}

// Save checkpoints the session state
func (s *DiskSessionStore) Save(state *model.CycleState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return atomicWrite(s.path(state.SessionID), data)
}

// Load returns the checkpoint for a session id; ok is false when no
// checkpoint exists
func (s *DiskSessionStore) Load(sessionID string) (*model.CycleState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read session: %w", err)
	}

	var state model.CycleState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return &state, true, nil
}

// List returns the ids of all checkpointed sessions
func (s *DiskSessionStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

// Delete removes a session checkpoint (archival after export)
func (s *DiskSessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.Remove(s.path(sessionID))
}

func (s *DiskSessionStore) path(sessionID string) string {
	return filepath.Join(s.dir, safeName(sessionID)+".json")
}
