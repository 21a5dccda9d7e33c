package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-engine/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(jobID uuid.UUID) bool
}

type WorkerOptions struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
}

type worker struct {
	evalRepo  repositories.EvaluationRepository
	processor JobProcessor
	opts      WorkerOptions
	logger    *zap.Logger

	jobQueue chan uuid.UUID
	inFlight sync.Map
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

func NewWorker(
	evalRepo repositories.EvaluationRepository,
	processor JobProcessor,
	opts WorkerOptions,
	logger *zap.Logger,
) Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &worker{
		evalRepo:  evalRepo,
		processor: processor,
		opts:      opts,
		logger:    logger.Named("worker"),
		jobQueue:  make(chan uuid.UUID, opts.QueueSize),
		stopChan:  make(chan struct{}),
	}
}

func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting worker pool", zap.Int("concurrency", w.opts.Concurrency))

	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping worker pool")
		close(w.stopChan)
		w.wg.Wait()
		w.logger.Info("worker pool stopped")
	})
}

// EnqueueJob hands a job to the pool without blocking. It reports false when
// the job is already queued or running, the queue is full, or the pool is
// stopping. Jobs that are not accepted stay queued for the poller.
func (w *worker) EnqueueJob(jobID uuid.UUID) bool {
	if _, loaded := w.inFlight.LoadOrStore(jobID, struct{}{}); loaded {
		return false
	}

	select {
	case w.jobQueue <- jobID:
		w.logger.Debug("job enqueued", zap.String("job_id", jobID.String()))
		return true
	case <-w.stopChan:
		w.inFlight.Delete(jobID)
		w.logger.Warn("worker stopped, cannot enqueue job", zap.String("job_id", jobID.String()))
		return false
	default:
		w.inFlight.Delete(jobID)
		w.logger.Warn("job queue full, leaving job for poller", zap.String("job_id", jobID.String()))
		return false
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.logger.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case jobID := <-w.jobQueue:
			log.Info("processing job", zap.String("job_id", jobID.String()))
			if err := w.processor.ProcessJob(ctx, jobID); err != nil {
				log.Error("job failed", zap.String("job_id", jobID.String()), zap.Error(err))
			} else {
				log.Info("job finished", zap.String("job_id", jobID.String()))
			}
			w.inFlight.Delete(jobID)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.evalRepo.FindPendingJobs(w.opts.QueueSize)
			if err != nil {
				w.logger.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}
			for _, job := range pendingJobs {
				// Only jobs the pool has lost track of are re-queued.
				if w.EnqueueJob(job.ID) {
					w.logger.Info("re-queued pending job", zap.String("job_id", job.ID.String()))
				}
			}
		}
	}
}
