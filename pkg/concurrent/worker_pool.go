package concurrent

import (
	"errors"
	"sync"
	"time"
)

// ErrScheduleTimeout is returned by ScheduleTimeout when every pooled
// goroutine stayed busy for the whole wait.
var ErrScheduleTimeout = errors.New("concurrent: schedule timed out")

type JobFunc[T any, G any] func(job T) G

// WorkerPool bounds the number of goroutines doing work at once. It serves
// two callers: batch jobs that fan in results (Start/AddJob/Wait) and
// long-lived connection handlers that reuse goroutines instead of spawning
// one per event (Spawn/Schedule/ScheduleTimeout).
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup

	sem  chan struct{}
	work chan func()
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
		sem:        make(chan struct{}, numWorkers),
		work:       make(chan func(), jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- jobFunc(job)
	}
}

// Start launches the batch workers. Feed them with AddJob, then Close and
// Wait before draining CollectResults.
func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}

// Spawn pre-starts n resident goroutines waiting on the schedule queue.
func (wp *WorkerPool[T, G]) Spawn(n int) {
	for i := 0; i < n; i++ {
		wp.sem <- struct{}{}
		go wp.reuseWorker(nil)
	}
}

// Schedule runs task on a pooled goroutine, blocking until one is free.
func (wp *WorkerPool[T, G]) Schedule(task func()) error {
	return wp.schedule(task, nil)
}

// ScheduleTimeout is Schedule with a deadline.
func (wp *WorkerPool[T, G]) ScheduleTimeout(timeout time.Duration, task func()) error {
	return wp.schedule(task, time.After(timeout))
}

func (wp *WorkerPool[T, G]) schedule(task func(), deadline <-chan time.Time) error {
	select {
	case <-deadline:
		return ErrScheduleTimeout
	case wp.work <- task:
		return nil
	case wp.sem <- struct{}{}:
		go wp.reuseWorker(task)
		return nil
	}
}

func (wp *WorkerPool[T, G]) reuseWorker(task func()) {
	defer func() { <-wp.sem }()
	if task != nil {
		task()
	}
	for task := range wp.work {
		task()
	}
}

// Close stops accepting work on both queues. Jobs already queued still run.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
	close(wp.work)
}
