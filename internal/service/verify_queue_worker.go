package service

import (
	"context"
	"log"
	"sync"
	"time"

	"veridoc/internal/port"
)

// VerifyQueueConfig holds settings for the verification queue worker.
type VerifyQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// VerifyQueueWorker polls for queued cases and dispatches them for
// verification.
type VerifyQueueWorker struct {
	caseRepo    port.CaseRepository
	caseService CaseService
	cfg         VerifyQueueConfig
	wg          sync.WaitGroup
}

// NewVerifyQueueWorker creates a new VerifyQueueWorker.
func NewVerifyQueueWorker(caseRepo port.CaseRepository, caseService CaseService, cfg VerifyQueueConfig) *VerifyQueueWorker {
	return &VerifyQueueWorker{
		caseRepo:    caseRepo,
		caseService: caseService,
		cfg:         cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight verifications have finished.
func (w *VerifyQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("verifyQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("verifyQueueWorker: shutting down, waiting for in-flight cases...")
			w.wg.Wait()
			log.Printf("verifyQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			cases, err := w.caseRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll, let the next select exit
					continue
				}
				log.Printf("verifyQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range cases {
				c := cases[i] // copy for goroutine
				c.Attempts++

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight cases complete even during shutdown.
					verifyCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
					defer cancel()

					log.Printf("verifyQueueWorker: dispatching case %s (attempt %d)", c.ID, c.Attempts)
					w.caseService.ProcessCase(verifyCtx, &c, w.cfg.MaxRetries)
				}()
			}
		}
	}
}
