// Package poller waits for controller-side long-running jobs to reach a terminal state.
//
// A job is polled immediately and then once per interval until its status leaves
// IN_PROGRESS. Batches are polled concurrently, one scheduler worker per job, so a
// job that finishes early never waits behind a slow one.
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
	"github.com/cyperf-demos/pan-demo-setup/pkg/scheduler"
)

const DefaultInterval = time.Second

// Handle is a submitted long-running operation.
type Handle interface {
	ID() string
	Status(ctx context.Context) (models.AsyncJob, error)
}

// HandleFunc adapts a status function into a Handle.
func HandleFunc(id string, fn func(ctx context.Context) (models.AsyncJob, error)) Handle {
	return handleFunc{id: id, fn: fn}
}

type handleFunc struct {
	id string
	fn func(ctx context.Context) (models.AsyncJob, error)
}

func (h handleFunc) ID() string { return h.id }

func (h handleFunc) Status(ctx context.Context) (models.AsyncJob, error) { return h.fn(ctx) }

type Poller struct {
	interval time.Duration
}

func New(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{interval: interval}
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Await blocks until the job leaves IN_PROGRESS. A job ending in ERROR is
// reported as a RemoteOperationError carrying the server message.
func (p *Poller) Await(ctx context.Context, h Handle) (models.AsyncJob, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		job, err := h.Status(ctx)
		if err != nil {
			return job, err
		}

		switch job.Status {
		case models.JobStatusComplete:
			return job, nil
		case models.JobStatusError:
			return job, srvErrors.NewRemoteOperationError(h.ID(), job.Message)
		case models.JobStatusInProgress:
		default:
			return job, srvErrors.NewRemoteOperationError(h.ID(), "unknown job status "+string(job.Status))
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

type indexedResult struct {
	idx int
	r   scheduler.Result[models.AsyncJob]
}

// AwaitAll polls every handle concurrently and returns the terminal jobs in
// submission order. The first failure cancels the remaining polls.
func (p *Poller) AwaitAll(ctx context.Context, handles []Handle) ([]models.AsyncJob, error) {
	if len(handles) == 0 {
		return nil, nil
	}

	s := scheduler.NewScheduler[models.AsyncJob](ctx, len(handles))
	defer s.Close()

	done := make(chan indexedResult, len(handles))
	pending := make(map[int]Handle, len(handles))
	for i, h := range handles {
		pending[i] = h
		future := s.AddWork(func(ctx context.Context) (models.AsyncJob, error) {
			return p.Await(ctx, h)
		})
		go func() {
			done <- indexedResult{idx: i, r: <-future.C()}
		}()
	}

	jobs := make([]models.AsyncJob, len(handles))
	for len(pending) > 0 {
		res := <-done
		h := pending[res.idx]
		delete(pending, res.idx)
		if res.r.Err != nil {
			zap.S().Named("poller").Debugw("job failed", "job", h.ID(), "pending", len(pending), "error", res.r.Err)
			return nil, res.r.Err
		}
		zap.S().Named("poller").Debugw("job resolved", "job", h.ID(), "pending", len(pending))
		jobs[res.idx] = res.r.Data
	}

	return jobs, nil
}
