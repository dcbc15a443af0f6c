// Package worker builds badge models off the job queue in parallel.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/medallion/internal/adapters/mq/queue"
	"github.com/okian/medallion/internal/domain/achievement"
	"github.com/okian/medallion/pkg/logger"
	"github.com/okian/medallion/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Builder turns a badge definition into a graded model.
type Builder interface {
	Build(ctx context.Context, def achievement.Definition) (*achievement.Model, error)
}

// BuildFunc adapts a function to Builder.
type BuildFunc func(ctx context.Context, def achievement.Definition) (*achievement.Model, error)

// Build calls f.
func (f BuildFunc) Build(ctx context.Context, def achievement.Definition) (*achievement.Model, error) {
	return f(ctx, def)
}

// Result is the outcome of one job.
type Result struct {
	Seq   int
	Model *achievement.Model
	Err   error
}

// Sink receives results. Collect may be called from several workers at once.
type Sink interface {
	Collect(r Result)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until the queue is drained.
type Worker interface {
	// Run starts the worker loop until the queue closes or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	builder Builder
	sink    Sink
	name    string
	active  *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, builder Builder, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		builder:  builder,
		sink:     sink,
		name:     "worker",
		active:   new(atomic.Int64),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value over the channel
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	m, err := w.builder.Build(ctx, j.Definition)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordBadgeBuildError()
		w.logger.Error(ctx, "badge build failed",
			logger.String("badge", j.Definition.ID),
			logger.Error(err),
		)
	} else {
		metrics.RecordBadgeBuild(m.ID, float64(time.Since(start).Milliseconds()), m.Population())
		w.logger.Debug(ctx, "badge built",
			logger.String("badge", m.ID),
			logger.Int("population", m.Population()),
		)
	}
	w.sink.Collect(Result{Seq: j.Seq, Model: m, Err: err})
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, q Queue, builder Builder, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	active := new(atomic.Int64)
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, builder, sink, wopts...)
		w.active = active
		p.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has returned or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return fmt.Errorf("wait for workers: %w", ctx.Err())
		}
	}
	return nil
}

// Shutdown closes the queue, when it can be closed, and stops every worker.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}

// Collector is a Sink that stores results by sequence number.
type Collector struct {
	mu      sync.Mutex
	results []Result
}

// NewCollector returns a collector sized for n jobs.
func NewCollector(n int) *Collector {
	return &Collector{results: make([]Result, n)}
}

// Collect stores r at its sequence slot; out-of-range results are dropped.
func (c *Collector) Collect(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.Seq >= 0 && r.Seq < len(c.results) {
		c.results[r.Seq] = r
	}
}

// Results returns a copy of the stored results in sequence order.
func (c *Collector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Result, len(c.results))
	copy(out, c.results)
	return out
}
