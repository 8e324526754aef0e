package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/spacesedan/contentflow/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

// Store persists jobs. Implementations must be safe for concurrent use.
type Store interface {
	Save(ctx context.Context, job models.Job) error
	Get(ctx context.Context, id string) (models.Job, error)
	Ping(ctx context.Context) error
}

// MemoryStore keeps jobs in process memory; state is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]models.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]models.Job)}
}

func (s *MemoryStore) Save(_ context.Context, job models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, ErrJobNotFound
	}
	return job, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
