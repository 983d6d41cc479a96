package screening

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Queue runs screenings in the background with at most one in-flight run per
// applicant. A second Enqueue for the same applicant while a run is active
// joins the existing run instead of starting another.
type Queue struct {
	orchestrator *Orchestrator
	log          *zap.Logger

	group singleflight.Group
	wg    sync.WaitGroup
}

// NewQueue creates a screening queue.
func NewQueue(orchestrator *Orchestrator, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{orchestrator: orchestrator, log: log}
}

// Enqueue schedules a screening run for the applicant and returns
// immediately. The run uses a background context so it survives the
// originating HTTP request.
func (q *Queue) Enqueue(applicantID uuid.UUID) {
	key := applicantID.String()
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		_, err, shared := q.group.Do(key, func() (interface{}, error) {
			return nil, q.orchestrator.Screen(context.Background(), applicantID)
		})
		if shared {
			return
		}
		if err != nil {
			q.log.Error("background screening failed",
				zap.String("applicant_id", key),
				zap.Error(err))
		}
	}()
}

// Wait blocks until all enqueued screenings finish. Used at shutdown and in
// tests.
func (q *Queue) Wait() {
	q.wg.Wait()
}
