package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spacesedan/contentflow/internal/clients"
	"github.com/spacesedan/contentflow/internal/models"
)

const VALKEY_JOB_KEY_PREFIX = "contentflow:job:"

type keyValue interface {
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
}

// ValkeyStore keeps jobs as JSON strings that expire after TTL, so jobs
// survive API restarts and are shared between replicas.
type ValkeyStore struct {
	kv  keyValue
	ttl time.Duration
}

func NewValkeyStore(kv *clients.ValkeyClient, ttl time.Duration) *ValkeyStore {
	return &ValkeyStore{kv: kv, ttl: ttl}
}

func jobKey(id string) string {
	return VALKEY_JOB_KEY_PREFIX + id
}

func (s *ValkeyStore) Save(ctx context.Context, job models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("[ValkeyStore] marshal job %s: %w", job.ID, err)
	}
	if err := s.kv.SetWithTTL(ctx, jobKey(job.ID), data, s.ttl); err != nil {
		return fmt.Errorf("[ValkeyStore] save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *ValkeyStore) Get(ctx context.Context, id string) (models.Job, error) {
	data, err := s.kv.Get(ctx, jobKey(id))
	if errors.Is(err, clients.ErrValkeyKeyNotFound) {
		return models.Job{}, ErrJobNotFound
	}
	if err != nil {
		return models.Job{}, fmt.Errorf("[ValkeyStore] get job %s: %w", id, err)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return models.Job{}, fmt.Errorf("[ValkeyStore] unmarshal job %s: %w", id, err)
	}
	return job, nil
}

func (s *ValkeyStore) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}
