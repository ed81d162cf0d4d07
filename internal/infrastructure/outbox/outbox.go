package outbox

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Job is one durable-store write to be mirrored.
type Job struct {
	Label string
	Run   func(ctx context.Context) error
}

// Outbox mirrors in-memory ledger mutations to the durable store on a
// background goroutine. Local mutations never wait on it; a write that keeps
// failing after all retries is logged and reflected in Synced(), nothing
// else. Jobs are executed strictly in enqueue order so the mirror never sees
// a movement before its session.
type Outbox struct {
	queue    chan Job
	retries  int
	backoff  time.Duration
	timeout  time.Duration
	pending  atomic.Int64
	failed   atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
}

// New creates an outbox and starts its worker.
func New(retries int, backoff time.Duration) *Outbox {
	if retries < 1 {
		retries = 1
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	o := &Outbox{
		queue:   make(chan Job, 256),
		retries: retries,
		backoff: backoff,
		timeout: 10 * time.Second,
		done:    make(chan struct{}),
	}
	go o.worker()
	return o
}

// Enqueue schedules a job. It never blocks the caller: when the queue is
// full the job is dropped and the outbox is marked out of sync.
func (o *Outbox) Enqueue(label string, run func(ctx context.Context) error) {
	o.pending.Add(1)
	select {
	case o.queue <- Job{Label: label, Run: run}:
	default:
		o.pending.Add(-1)
		o.failed.Store(true)
		log.Printf("[outbox] queue full, dropped %s", label)
	}
}

// Synced reports whether every enqueued write has reached the durable store.
func (o *Outbox) Synced() bool {
	return o.pending.Load() == 0 && !o.failed.Load()
}

// Close stops the worker after draining the queue.
func (o *Outbox) Close() {
	o.stopOnce.Do(func() {
		close(o.queue)
		<-o.done
	})
}

func (o *Outbox) worker() {
	defer close(o.done)
	for job := range o.queue {
		o.process(job)
		o.pending.Add(-1)
	}
}

func (o *Outbox) process(job Job) {
	var err error
	for attempt := 1; attempt <= o.retries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		err = job.Run(ctx)
		cancel()
		if err == nil {
			return
		}
		log.Printf("[outbox] %s failed (attempt %d/%d): %v", job.Label, attempt, o.retries, err)
		if attempt < o.retries {
			time.Sleep(o.backoff * time.Duration(attempt))
		}
	}
	o.failed.Store(true)
	log.Printf("[outbox] %s gave up after %d attempts, working offline", job.Label, o.retries)
}
