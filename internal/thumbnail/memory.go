package thumbnail

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps run history in process memory. History is lost on
// restart; use the SQLite store to keep it.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryRepository creates an empty run history.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		runs: make(map[string]*Run),
	}
}

// Save stores a snapshot of run, replacing any earlier snapshot with the
// same ID. The snapshot is taken before the history lock so a run being
// advanced by its pipeline never waits on readers.
func (r *MemoryRepository) Save(_ context.Context, run *Run) error {
	snapshot := run.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[snapshot.ID] = snapshot
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run.Clone(), nil
}

// List returns snapshots of every run, oldest first. Runs created in the
// same instant are ordered by ID, matching the SQLite store.
func (r *MemoryRepository) List(_ context.Context) ([]*Run, error) {
	r.mu.RLock()
	result := make([]*Run, 0, len(r.runs))
	for _, run := range r.runs {
		result = append(result, run.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(result, func(a, b *Run) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[id]; !ok {
		return ErrRunNotFound
	}
	delete(r.runs, id)
	return nil
}
