// Package store holds the datasets of the current session in memory.
// There is no persistence: a load cycle replaces the previous snapshot
// wholesale.
package store

import (
	"sync"
	"time"

	"github.com/reisemkt/dashboard-api/internal/models"
)

// Snapshot is one immutable load result. Readers must not mutate it.
type Snapshot struct {
	Daily    []models.DailyRecord
	Crm      *models.CrmDataset
	LoadedAt time.Time
}

// MemoryStore guards the active snapshot and arbitrates racing loads: each
// load cycle takes a generation up front and may only commit while it is
// still the newest one, so a superseded load discards its result instead of
// overwriting fresher data.
type MemoryStore struct {
	mu     sync.RWMutex
	gen    uint64
	loaded bool
	snap   Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Begin registers a new load cycle and returns its generation token.
func (s *MemoryStore) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Commit installs the snapshot if gen is still the latest load cycle.
// It reports whether the snapshot was installed.
func (s *MemoryStore) Commit(gen uint64, snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.snap = snap
	s.loaded = true
	return true
}

// Snapshot returns the active snapshot; ok is false before the first commit.
func (s *MemoryStore) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.loaded
}
