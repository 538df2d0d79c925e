package application_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"jarvis/internal/application"
	"jarvis/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUtteranceQueue_OfferNext(t *testing.T) {
	q := application.NewUtteranceQueue(4, testLogger())

	if ok := q.Offer(domain.Utterance{ID: "a"}); !ok {
		t.Fatal("offer on empty queue failed")
	}

	u, ok := q.Next(context.Background(), time.Second)
	if !ok {
		t.Fatal("expected an utterance")
	}
	if u.ID != "a" {
		t.Errorf("expected utterance a, got %s", u.ID)
	}
}

func TestUtteranceQueue_DropOldestOnOverflow(t *testing.T) {
	q := application.NewUtteranceQueue(2, testLogger())

	for _, id := range []string{"u1", "u2", "u3"} {
		if ok := q.Offer(domain.Utterance{ID: id}); !ok {
			t.Fatalf("offer %s failed, drop-oldest should make room", id)
		}
	}

	if got := q.Dropped(); got != 1 {
		t.Errorf("expected 1 dropped utterance, got %d", got)
	}

	u, _ := q.Next(context.Background(), time.Second)
	if u.ID != "u2" {
		t.Errorf("oldest should have been evicted, head is %s", u.ID)
	}
	u, _ = q.Next(context.Background(), time.Second)
	if u.ID != "u3" {
		t.Errorf("expected u3, got %s", u.ID)
	}
}

func TestUtteranceQueue_NextTimesOut(t *testing.T) {
	q := application.NewUtteranceQueue(2, testLogger())

	start := time.Now()
	_, ok := q.Next(context.Background(), 20*time.Millisecond)
	if ok {
		t.Fatal("expected timeout on empty queue")
	}
	if time.Since(start) > time.Second {
		t.Fatal("bounded wait took far too long")
	}
}

func TestUtteranceQueue_NextHonorsContext(t *testing.T) {
	q := application.NewUtteranceQueue(2, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := q.Next(ctx, time.Minute); ok {
		t.Fatal("expected no utterance after cancellation")
	}
}
