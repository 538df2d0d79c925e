package application

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"jarvis/internal/domain"
)

// UtteranceQueue is the bounded hand-off between audio capture and the
// consumer loop. Offer never blocks: when the queue is full the oldest
// utterance is evicted, so fresh speech wins over stale speech and the
// capture path never stalls.
type UtteranceQueue struct {
	ch      chan domain.Utterance
	dropped atomic.Uint64
	logger  *slog.Logger
}

func NewUtteranceQueue(capacity int, logger *slog.Logger) *UtteranceQueue {
	if capacity <= 0 {
		capacity = 8
	}
	return &UtteranceQueue{
		ch:     make(chan domain.Utterance, capacity),
		logger: logger,
	}
}

func (q *UtteranceQueue) Offer(u domain.Utterance) bool {
	select {
	case q.ch <- u:
		return true
	default:
	}

	// Full: evict the oldest and retry once. A concurrent pop can race the
	// eviction; losing that race only means the retry finds room anyway.
	select {
	case old := <-q.ch:
		q.dropped.Add(1)
		q.logger.Warn("utterance dropped, queue full", "id", old.ID)
	default:
	}

	select {
	case q.ch <- u:
		return true
	default:
		q.dropped.Add(1)
		q.logger.Warn("utterance dropped, queue full", "id", u.ID)
		return false
	}
}

// Next waits up to wait for an utterance. The bounded wait keeps the
// consumer loop responsive to shutdown even when nothing is being said.
func (q *UtteranceQueue) Next(ctx context.Context, wait time.Duration) (domain.Utterance, bool) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return domain.Utterance{}, false
	case u := <-q.ch:
		return u, true
	case <-timer.C:
		return domain.Utterance{}, false
	}
}

func (q *UtteranceQueue) Len() int {
	return len(q.ch)
}

// Dropped returns how many utterances were discarded for backpressure.
func (q *UtteranceQueue) Dropped() uint64 {
	return q.dropped.Load()
}
