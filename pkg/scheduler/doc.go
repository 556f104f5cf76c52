// Package scheduler implements a typed worker pool for executing async work with futures.
//
// The scheduler manages a fixed pool of workers that execute work functions
// concurrently. Work is submitted via AddWork and returns a Future that can
// be used to retrieve the result or cancel the work. The poller package uses
// one scheduler per batch of controller jobs so that every job is polled on
// its own worker.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                         Scheduler[T]                                │
//	│                                                                     │
//	│  ┌──────────────┐      ┌──────────────┐      ┌──────────────┐       │
//	│  │   Worker 1   │      │   Worker 2   │      │   Worker N   │       │
//	│  └──────────────┘      └──────────────┘      └──────────────┘       │
//	│         ▲                     ▲                     ▲               │
//	│         └─────────────────────┼─────────────────────┘               │
//	│                        ┌──────┴──────┐                              │
//	│                        │  dispatch() │                              │
//	│                        └──────┬──────┘                              │
//	│  ┌────────────────────────────┴────────────────────────────┐        │
//	│  │                      Work Queue                         │        │
//	│  └─────────────────────────────────────────────────────────┘        │
//	│                               ▲                                     │
//	│                        AddWork(fn)                                  │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Future Mechanism
//
// AddWork returns a Future immediately:
//
//   - C() <-chan Result[T]: receives exactly one result when work completes
//   - Stop(): cancels the work's context
//
// Usage pattern:
//
//	s := scheduler.NewScheduler[models.AsyncJob](ctx, len(handles))
//	defer s.Close()
//
//	future := s.AddWork(func(ctx context.Context) (models.AsyncJob, error) {
//	    return p.Await(ctx, h)
//	})
//
//	select {
//	case r := <-future.C():
//	    // r.Data, r.Err
//	case <-ctx.Done():
//	    future.Stop()
//	}
//
// # Cancellation
//
// Each work request gets a context derived from the scheduler's main context,
// which itself derives from the parent passed to NewScheduler:
//
//	parent ctx ──► main ctx ──► work ctx
//
//   - cancelling the parent cancels every piece of work
//   - future.Stop() cancels a single piece of work
//   - scheduler.Close() cancels the main context
//
// # Panic Recovery
//
// Workers recover from panics in work functions, log them and deliver
// them to the future as an error. The worker returns to the pool.
//
// # Graceful Shutdown
//
// Close() cancels the main context, signals the event loop and returns once
// every in-flight worker has returned. Close() is idempotent.
package scheduler
