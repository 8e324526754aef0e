package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/spacesedan/contentflow/internal/models"
)

var ErrTrackerClosed = errors.New("tracker is closed")

// Handle is one running poll loop.
type Handle struct {
	JobID string

	cancel context.CancelFunc
	done   chan struct{}
	result *models.ScriptResult
	err    error
}

// Done is closed when the loop has ended.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result is valid once Done is closed.
func (h *Handle) Result() (*models.ScriptResult, error) {
	<-h.done
	return h.result, h.err
}

// Wait blocks until the loop ends or ctx is done. Returning on ctx does not
// stop the loop; use Tracker.Stop for that.
func (h *Handle) Wait(ctx context.Context) (*models.ScriptResult, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Tracker keeps at most one poll loop per job id.
type Tracker struct {
	client *Client
	opts   PollOptions

	mu     sync.Mutex
	loops  map[string]*Handle
	wg     sync.WaitGroup
	closed bool
}

func NewTracker(c *Client, opts PollOptions) *Tracker {
	return &Tracker{
		client: c,
		opts:   opts,
		loops:  make(map[string]*Handle),
	}
}

// Watch starts polling jobID unless a loop for it is already running, in
// which case that loop's handle is returned and onStatus is ignored.
func (t *Tracker) Watch(ctx context.Context, jobID string, onStatus StatusFunc) (*Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrTrackerClosed
	}
	if h, ok := t.loops[jobID]; ok {
		slog.Debug("[JobTracker] Reusing active poll loop", slog.String("job_id", jobID))
		return h, nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{JobID: jobID, cancel: cancel, done: make(chan struct{})}
	t.loops[jobID] = h
	t.wg.Add(1)

	go func() {
		defer t.wg.Done()
		defer cancel()

		h.result, h.err = t.client.Poll(loopCtx, jobID, t.opts, onStatus)

		t.mu.Lock()
		if t.loops[jobID] == h {
			delete(t.loops, jobID)
		}
		t.mu.Unlock()
		close(h.done)
	}()

	return h, nil
}

// Submit sends req and starts watching the new job.
func (t *Tracker) Submit(ctx context.Context, req models.GenerationRequest, onStatus StatusFunc) (*Handle, error) {
	job, err := t.client.GenerateScript(ctx, req)
	if err != nil {
		return nil, err
	}
	if onStatus != nil {
		onStatus(job.Status)
	}
	return t.Watch(ctx, job.ID, onStatus)
}

// Stop cancels the loop for jobID, if any. A Watch after Stop starts a new
// loop even if the cancelled one has not exited yet.
func (t *Tracker) Stop(jobID string) {
	t.mu.Lock()
	h, ok := t.loops[jobID]
	if ok {
		delete(t.loops, jobID)
	}
	t.mu.Unlock()
	if ok {
		h.cancel()
	}
}

// Active reports the number of running loops.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.loops)
}

// Close cancels every loop and waits for them to exit. Watch fails afterwards.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	for _, h := range t.loops {
		h.cancel()
	}
	t.mu.Unlock()
	t.wg.Wait()
}
