package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ScanQueue fans queued tasks out to a fixed pool of workers, each scan
// bounded by a per-task timeout.
type ScanQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Task
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ScanQueue)

func WithWorkers(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.ch = make(chan Task, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ScanQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(q *ScanQueue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

func NewScanQueue(proc Processor, opts ...Option) *ScanQueue {
	q := &ScanQueue{
		proc:    proc,
		logger:  slog.Default(),
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan Task, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ScanQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for task := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.proc.ProcessTask(ctx, task)
					cancel()

					if err != nil {
						q.logger.Error("scan failed", "worker_id", workerID, "job_id", task.JobID, "source_path", task.SourcePath, "error", err)
					} else {
						q.logger.Info("scan completed", "worker_id", workerID, "job_id", task.JobID, "source_path", task.SourcePath)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue adds a task without blocking; a full queue returns ErrQueueFull.
func (q *ScanQueue) Enqueue(_ context.Context, task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", task.JobID)
		return ErrQueueFull
	}
	if task.SubmittedAt.IsZero() {
		task.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- task:
		q.logger.Info("queued scan", "job_id", task.JobID, "source_path", task.SourcePath, "force", task.Force)
		return nil
	default:
		q.logger.Warn("queue full, rejecting scan", "job_id", task.JobID, "source_path", task.SourcePath)
		return ErrQueueFull
	}
}

// Shutdown stops intake and waits for in-flight scans until ctx expires.
func (q *ScanQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

var _ Queue = (*ScanQueue)(nil)
