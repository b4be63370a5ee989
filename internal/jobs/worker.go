package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor drains whatever work is currently pending. Implementations
// must tolerate being invoked with an empty backlog.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker invokes a JobProcessor on a fixed poll interval. The extraction
// pipeline runs behind one of these so entry ingestion never waits on the
// text-generation capability.
type Worker struct {
	processor JobProcessor
	interval  time.Duration
	stop      chan struct{}
	done      chan struct{}
}

// NewWorker creates a worker that drains processor every interval.
func NewWorker(processor JobProcessor, interval time.Duration) *Worker {
	return &Worker{
		processor: processor,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called. A failed drain is logged and retried on the next tick.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.done)

	log.Printf("jobs: worker polling every %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("jobs: worker stopping, context cancelled")
			return
		case <-w.stop:
			log.Printf("jobs: worker stopping, stop requested")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				log.Printf("jobs: drain failed: %v", err)
			}
		}
	}
}

// Stop signals the loop to exit and blocks until it has finished. Safe to
// call only once.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
	log.Printf("jobs: worker stopped")
}
