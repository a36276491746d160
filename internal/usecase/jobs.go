package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ContentEngine/internal/domain"
)

// ErrQueueClosed is returned by Submit after Stop.
var ErrQueueClosed = errors.New("job queue closed")

// ErrQueueFull is returned by Submit when the backlog is at capacity.
var ErrQueueFull = errors.New("job queue full")

// JobStatus tracks a queued pipeline run.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is the queryable state of one submitted audience run.
type Job struct {
	ID          string
	AudienceID  string
	Status      JobStatus
	Report      domain.RunReport
	SubmittedAt time.Time
	FinishedAt  time.Time
}

type jobTask struct {
	jobID    string
	audience domain.Audience
}

// JobQueue runs audience pipelines on a fixed pool of workers. Submitted
// jobs stay queryable by ID after completion, including their run reports.
type JobQueue struct {
	runner  *Runner
	logger  *slog.Logger
	workers int
	tasks   chan jobTask

	mu     sync.Mutex
	jobs   map[string]*Job
	closed bool

	wg sync.WaitGroup
}

// NewJobQueue sizes the pool; workers and buffer fall back to sane minimums.
func NewJobQueue(runner *Runner, workers, buffer int, logger *slog.Logger) *JobQueue {
	if workers < 1 {
		workers = 2
	}
	if buffer < 1 {
		buffer = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobQueue{
		runner:  runner,
		logger:  logger.With("component", "jobqueue"),
		workers: workers,
		tasks:   make(chan jobTask, buffer),
		jobs:    make(map[string]*Job),
	}
}

// Start launches the workers. They drain the queue until Stop closes it or
// the context is cancelled.
func (q *JobQueue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.logger.Info("workers started", "count", q.workers)
}

// Submit enqueues a run for the audience and returns the job ID. The
// enqueue happens under the queue mutex so it can never race Stop closing
// the task channel.
func (q *JobQueue) Submit(audience domain.Audience) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return "", ErrQueueClosed
	}
	job := &Job{
		ID:          uuid.NewString(),
		AudienceID:  audience.ID,
		Status:      JobQueued,
		SubmittedAt: time.Now().UTC(),
	}

	select {
	case q.tasks <- jobTask{jobID: job.ID, audience: audience}:
		q.jobs[job.ID] = job
		return job.ID, nil
	default:
		return "", ErrQueueFull
	}
}

// Job returns a snapshot of the job state.
func (q *JobQueue) Job(id string) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Stop closes the queue and waits for in-flight jobs to finish. Closing
// happens under the same mutex Submit sends under, so every Submit either
// completes its enqueue first or observes the closed flag.
func (q *JobQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("workers stopped")
}

func (q *JobQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	logger := q.logger.With("worker", id)
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-q.tasks:
			if !ok {
				return
			}
			q.setStatus(task.jobID, JobRunning, nil)
			report, err := q.runner.ProcessAudience(ctx, task.audience)
			if err != nil {
				logger.Error("job failed", "job_id", task.jobID, "error", err)
				q.setStatus(task.jobID, JobFailed, &report)
				continue
			}
			q.setStatus(task.jobID, JobCompleted, &report)
		}
	}
}

func (q *JobQueue) setStatus(jobID string, status JobStatus, report *domain.RunReport) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[jobID]
	if !ok {
		return
	}
	job.Status = status
	if report != nil {
		job.Report = *report
	}
	if status == JobCompleted || status == JobFailed {
		job.FinishedAt = time.Now().UTC()
	}
}
