// Package worker runs pipeline jobs on a fixed pool of goroutines. The
// dispatcher/worker layout keeps each project's pipeline on one worker so
// its phases stay strictly sequential while distinct projects proceed in
// parallel.
package worker

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is a unit of pipeline work.
type Job interface {
	ID() string
	Execute(ctx context.Context) error
}

// Worker pulls jobs from its own channel after registering it with the
// shared pool.
type Worker struct {
	id         int
	workerPool chan chan Job
	jobChannel chan Job
	quit       chan struct{}
	wg         *sync.WaitGroup
	logger     *logrus.Logger
}

func newWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, logger *logrus.Logger) *Worker {
	return &Worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan Job),
		quit:       make(chan struct{}),
		wg:         wg,
		logger:     logger,
	}
}

func (w *Worker) start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				log := w.logger.WithFields(logrus.Fields{"worker": w.id, "job_id": job.ID()})
				log.Info("Job started")
				if err := job.Execute(ctx); err != nil {
					log.WithField("error", err.Error()).Error("Job failed")
				} else {
					log.Info("Job finished")
				}
			case <-w.quit:
				return
			}
		}
	}()
}

func (w *Worker) stop() {
	close(w.quit)
}

// Dispatcher owns the job queue and the worker pool.
type Dispatcher struct {
	maxWorkers int
	workerPool chan chan Job
	jobQueue   chan Job
	workers    []*Worker
	wg         sync.WaitGroup
	quit       chan struct{}
	logger     *logrus.Logger
}

// NewDispatcher sizes the pool and queue.
func NewDispatcher(maxWorkers, jobQueueSize int, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		workerPool: make(chan chan Job, maxWorkers),
		jobQueue:   make(chan Job, jobQueueSize),
		workers:    make([]*Worker, 0, maxWorkers),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the workers and the dispatch loop. ctx is passed through to
// every job.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.WithField("workers", d.maxWorkers).Info("Dispatcher starting")
	for i := 1; i <= d.maxWorkers; i++ {
		w := newWorker(i, d.workerPool, &d.wg, d.logger)
		d.workers = append(d.workers, w)
		w.start(ctx)
	}
	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			go func(job Job) {
				jobChannel := <-d.workerPool
				jobChannel <- job
			}(job)
		case <-d.quit:
			return
		}
	}
}

// Submit queues a job; it reports false when the queue is full so the
// caller can surface backpressure instead of blocking a request.
func (d *Dispatcher) Submit(job Job) bool {
	select {
	case d.jobQueue <- job:
		d.logger.WithField("job_id", job.ID()).Debug("Job queued")
		return true
	default:
		d.logger.WithField("job_id", job.ID()).Warn("Job queue full, submission refused")
		return false
	}
}

// Stop shuts the dispatch loop down and waits for in-flight jobs.
func (d *Dispatcher) Stop() {
	close(d.quit)
	for _, w := range d.workers {
		w.stop()
	}
	d.wg.Wait()
	d.logger.Info("Dispatcher stopped")
}
