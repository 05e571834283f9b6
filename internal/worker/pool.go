// Package worker provides background processing for track previews.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
	"github.com/ewilliams-labs/beatbuddies/internal/core/ports"
	"github.com/ewilliams-labs/beatbuddies/internal/platform/logger"
)

const jobTimeout = 30 * time.Second

// Job represents a background analysis of one track preview.
type Job struct {
	ItemID     string
	PreviewURL string
}

var _ ports.PreviewQueue = (*Pool)(nil)

// Pool manages background workers for async jobs.
type Pool struct {
	repo ports.AnalysisRepository
	log  *logger.Logger
	jobs chan Job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	now func() time.Time
}

// NewPool creates a worker pool with the given queue size.
func NewPool(repo ports.AnalysisRepository, queueSize int, log *logger.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{repo: repo, log: log, jobs: make(chan Job, queueSize), now: time.Now}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues a job without blocking. It reports false when the queue is
// full or the pool has stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		p.log.Warn("dropping preview job", "item", job.ItemID)
		return false
	}
}

// Enqueue adapts Submit to the preview queue port.
func (p *Pool) Enqueue(itemID, previewURL string) bool {
	return p.Submit(Job{ItemID: itemID, PreviewURL: previewURL})
}

func (p *Pool) processJob(job Job) {
	if job.PreviewURL == "" {
		p.log.Debug("no preview url, skipping analysis", "item", job.ItemID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := p.repo.GetAnalysis(ctx, job.ItemID); err == nil {
		p.log.Debug("preview already analyzed", "item", job.ItemID)
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		p.log.Warn("failed to check existing analysis", "item", job.ItemID, "error", err)
		return
	}

	energy, err := AnalyzePreviewFunc(ctx, job.PreviewURL)
	if err != nil {
		p.log.Warn("preview analysis failed", "item", job.ItemID, "error", err)
		return
	}

	analysis := domain.PreviewAnalysis{ItemID: job.ItemID, Energy: energy, AnalyzedAt: p.now().UTC()}
	if err := p.repo.SaveAnalysis(ctx, analysis); err != nil {
		p.log.Warn("failed to store analysis", "item", job.ItemID, "error", err)
		return
	}
	p.log.Info("stored preview analysis", "item", job.ItemID, "energy", energy)
}
