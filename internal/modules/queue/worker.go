package queue

import (
	"context"
	"log"
	"time"
)

// Worker runs the periodic queue maintenance: lazy approval of the next
// song and the stale-pending safety net.
type Worker struct {
	svc    *Service
	period time.Duration
}

func NewWorker(svc *Service, period time.Duration) *Worker {
	if period <= 0 {
		period = 15 * time.Second
	}
	return &Worker{svc: svc, period: period}
}

// Run blocks until ctx is cancelled, sweeping once per period.
func (w *Worker) Run(ctx context.Context) {
	log.Printf("queue worker started, sweeping every %s", w.period)

	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("queue worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	if err := w.svc.CheckAndApproveNextLazy(ctx); err != nil {
		log.Printf("queue worker: lazy approval sweep: %v", err)
	}
	if err := w.svc.ApproveStaleRequests(ctx); err != nil {
		log.Printf("queue worker: stale approval sweep: %v", err)
	}
}
