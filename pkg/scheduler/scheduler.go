package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type queue[T any] []T

func (q *queue[T]) Len() int { return len(*q) }

func (q *queue[T]) Pop() T {
	old := *q
	x := old[0]
	*q = old[1:]
	return x
}

func (q *queue[T]) Push(t T) {
	*q = append(*q, t)
}

type workRequest[T any] struct {
	fn     Work[T]
	c      chan Result[T]
	ctx    context.Context
	cancel context.CancelFunc
}

type worker[T any] struct {
	done chan any
	wg   *sync.WaitGroup
}

func (w worker[T]) Work(r workRequest[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Named("scheduler").Errorw("work panicked", "panic", rec)
			r.c <- Result[T]{Err: fmt.Errorf("worker panicked: %v", rec)}
		}
		r.cancel()
		w.done <- struct{}{}
		w.wg.Done()
	}()

	v, err := r.fn(r.ctx)
	r.c <- Result[T]{Data: v, Err: err}
}

// Scheduler runs work on a fixed pool of workers. Every piece of work gets a
// context derived from the parent context given to NewScheduler.
type Scheduler[T any] struct {
	workers    *queue[worker[T]]
	workQueue  *queue[workRequest[T]]
	close      chan any
	done       chan any
	exited     chan struct{}
	work       chan workRequest[T]
	mainCtx    context.Context
	mainCancel context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewScheduler[T any](parent context.Context, nbWorkers int) *Scheduler[T] {
	if nbWorkers < 1 {
		nbWorkers = 1
	}
	done := make(chan any, nbWorkers)
	ctx, cancel := context.WithCancel(parent)
	s := &Scheduler[T]{
		workers:    &queue[worker[T]]{},
		workQueue:  &queue[workRequest[T]]{},
		close:      make(chan any),
		done:       done,
		exited:     make(chan struct{}),
		work:       make(chan workRequest[T]),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	for range nbWorkers {
		s.workers.Push(worker[T]{done: done, wg: &s.wg})
	}
	go s.run()
	return s
}

func (s *Scheduler[T]) AddWork(w Work[T]) *Future[Result[T]] {
	c := make(chan Result[T], 1)
	ctx, cancel := context.WithCancel(s.mainCtx)

	select {
	case <-s.mainCtx.Done():
		// closing or parent gone: the work never runs
		cancel()
		c <- Result[T]{Err: context.Canceled}
	case s.work <- workRequest[T]{fn: w, c: c, ctx: ctx, cancel: cancel}:
	}

	return NewFuture(c, cancel)
}

// Close cancels all work and waits for in-flight workers to return.
func (s *Scheduler[T]) Close() {
	s.once.Do(func() {
		s.mainCancel()
		s.close <- struct{}{}
		<-s.exited
	})
}

func (s *Scheduler[T]) run() {
	defer close(s.exited)
	for {
		select {
		case w := <-s.work:
			s.workQueue.Push(w)
			s.dispatch()
		case <-s.done:
			s.workers.Push(worker[T]{done: s.done, wg: &s.wg})
			s.dispatch()
		case <-s.close:
			s.wg.Wait()
			return
		}
	}
}

// dispatch drains the workQueue as much as possible
// based on available workers
func (s *Scheduler[T]) dispatch() {
	for s.workers.Len() > 0 && s.workQueue.Len() > 0 {
		r := s.workQueue.Pop()
		w := s.workers.Pop()
		s.wg.Add(1)
		go w.Work(r)
	}
}
