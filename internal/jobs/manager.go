package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/contentflow/internal/models"
)

const (
	DEFAULT_MAX_CONCURRENT_JOBS = 4
	DEFAULT_JOB_TIMEOUT         = 5 * time.Minute
	publishTimeout              = 5 * time.Second
)

var ErrShuttingDown = errors.New("server is shutting down")

type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.ScriptResult, error)
}

type EventPublisher interface {
	PublishJobEvent(ctx context.Context, event models.JobEvent) error
}

// Archiver keeps completed jobs beyond the store's retention.
type Archiver interface {
	StoreScript(ctx context.Context, job models.Job) error
	GetScript(ctx context.Context, id string) (models.Job, error)
}

type Option func(*Manager)

func WithEventPublisher(p EventPublisher) Option {
	return func(m *Manager) { m.events = p }
}

func WithArchiver(a Archiver) Option {
	return func(m *Manager) { m.archive = a }
}

func WithMaxConcurrentJobs(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.sem = make(chan struct{}, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(m *Manager) { m.jobTimeout = d }
}

// Manager owns the job lifecycle: submitted, processing, then completed or
// failed. Jobs run in their own goroutine; at most cap(sem) generate at once.
type Manager struct {
	store      Store
	gen        Generator
	events     EventPublisher
	archive    Archiver
	sem        chan struct{}
	jobTimeout time.Duration
	now        func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	closing bool
}

func NewManager(store Store, gen Generator, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		store:      store,
		gen:        gen,
		sem:        make(chan struct{}, DEFAULT_MAX_CONCURRENT_JOBS),
		jobTimeout: DEFAULT_JOB_TIMEOUT,
		now:        func() time.Time { return time.Now().UTC() },
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewJobID returns ids of the form job_<yyyymmddHHMMSS>_<8 hex chars>.
func NewJobID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("job_%s_%s", now.Format("20060102150405"), suffix)
}

// Submit records a new job and starts it in the background.
func (m *Manager) Submit(ctx context.Context, req models.GenerationRequest) (models.Job, error) {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return models.Job{}, ErrShuttingDown
	}
	m.wg.Add(1)
	m.mu.Unlock()

	now := m.now()
	job := models.Job{
		ID:        NewJobID(now),
		Status:    models.JobStatusSubmitted,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, job); err != nil {
		m.wg.Done()
		return models.Job{}, fmt.Errorf("store job: %w", err)
	}
	m.publish(job)

	slog.Info("[JobManager] Job submitted",
		slog.String("job_id", job.ID),
		slog.String("video_style", req.VideoStyle),
		slog.Int("content_limit", req.ContentLimit))

	go m.run(job)
	return job, nil
}

// Get looks the job up in the store, then in the archive.
func (m *Manager) Get(ctx context.Context, id string) (models.Job, error) {
	job, err := m.store.Get(ctx, id)
	if err == nil || !errors.Is(err, ErrJobNotFound) || m.archive == nil {
		return job, err
	}

	archived, archiveErr := m.archive.GetScript(ctx, id)
	if archiveErr != nil {
		slog.Debug("[JobManager] Job not in archive",
			slog.String("job_id", id), slog.String("error", archiveErr.Error()))
		return models.Job{}, ErrJobNotFound
	}
	return archived, nil
}

// Ping reports the health of the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// Shutdown stops accepting jobs and waits for running ones. When ctx expires
// first, running jobs are cancelled and recorded as failed.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closing = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.cancel()
		return nil
	case <-ctx.Done():
		m.cancel()
		<-done
		return ctx.Err()
	}
}

func (m *Manager) run(job models.Job) {
	defer m.wg.Done()

	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-m.ctx.Done():
		m.finish(job, nil, ErrShuttingDown)
		return
	}

	job.Status = models.JobStatusProcessing
	job.UpdatedAt = m.now()
	m.save(job)
	m.publish(job)

	ctx, cancel := context.WithTimeout(m.ctx, m.jobTimeout)
	defer cancel()

	start := time.Now()
	result, err := m.gen.Generate(ctx, job.Request)
	if err == nil && result == nil {
		err = errors.New("generator returned no result")
	}
	m.finish(job, result, err)

	slog.Info("[JobManager] Job finished",
		slog.String("job_id", job.ID),
		slog.Bool("ok", err == nil),
		slog.Duration("duration", time.Since(start)))
}

func (m *Manager) finish(job models.Job, result *models.ScriptResult, err error) {
	job.UpdatedAt = m.now()
	if err != nil {
		job.Status = models.JobStatusFailed
		job.Error = err.Error()
		slog.Warn("[JobManager] Job failed",
			slog.String("job_id", job.ID),
			slog.String("error", job.Error))
	} else {
		job.Status = models.JobStatusCompleted
		job.Result = result
	}

	m.save(job)
	m.publish(job)

	if job.Status == models.JobStatusCompleted && m.archive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := m.archive.StoreScript(ctx, job); err != nil {
			slog.Error("[JobManager] Failed to archive script",
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()))
		}
	}
}

func (m *Manager) save(job models.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := m.store.Save(ctx, job); err != nil {
		slog.Error("[JobManager] Failed to save job",
			slog.String("job_id", job.ID),
			slog.String("status", string(job.Status)),
			slog.String("error", err.Error()))
	}
}

func (m *Manager) publish(job models.Job) {
	if m.events == nil {
		return
	}
	event := models.JobEvent{
		JobID:      job.ID,
		Status:     job.Status,
		Error:      job.Error,
		OccurredAt: job.UpdatedAt,
	}
	if job.Result != nil {
		event.Title = job.Result.Title
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := m.events.PublishJobEvent(ctx, event); err != nil {
		slog.Warn("[JobManager] Failed to publish job event",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
	}
}
