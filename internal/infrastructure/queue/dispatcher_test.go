package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/pkg/metrics"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubPublisher struct {
	mu        sync.Mutex
	published []domain.MarkerUpdate
	err       error
	block     chan struct{}
}

func (p *stubPublisher) Publish(ctx context.Context, u domain.MarkerUpdate) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, u)
	return p.err
}

func (p *stubPublisher) snapshot() []domain.MarkerUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.MarkerUpdate(nil), p.published...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestDispatcher_PreservesPerSubjectOrder(t *testing.T) {
	pub := &stubPublisher{}
	d := NewDispatcher(4, pub, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	defer func() {
		cancel()
		d.Wait()
	}()

	for i := 0; i < 10; i++ {
		d.Enqueue(domain.MarkerUpdate{SubjectID: "C-1", Position: domain.LatLng{Lat: float64(i)}})
	}
	waitFor(t, func() bool { return len(pub.snapshot()) == 10 })

	for i, u := range pub.snapshot() {
		if u.Position.Lat != float64(i) {
			t.Fatalf("update %d out of order: %v", i, u.Position)
		}
	}
}

func TestDispatcher_ShardIndexIsDeterministic(t *testing.T) {
	d := NewDispatcher(8, &stubPublisher{}, zerolog.Nop())
	for _, id := range []string{"C-1", "C-2", "ABC123", ""} {
		a, b := d.shardIndex(id), d.shardIndex(id)
		if a != b || a < 0 || a >= 8 {
			t.Errorf("shardIndex(%q) = %d, %d", id, a, b)
		}
	}
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &stubPublisher{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Errorf("workers = %d, want %d", len(d.workers), defaultWorkers)
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	pub := &stubPublisher{block: make(chan struct{})}
	d := NewDispatcher(1, pub, zerolog.Nop())
	// Workers not started: the buffer fills and further moves are dropped.
	before := testutil.ToFloat64(metrics.FeedDroppedTotal)

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+5; i++ {
			d.Enqueue(domain.MarkerUpdate{SubjectID: "C-1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full worker")
	}

	if got := testutil.ToFloat64(metrics.FeedDroppedTotal) - before; got != 5 {
		t.Errorf("dropped = %v, want 5", got)
	}
}

func TestDispatcher_PublishErrorDoesNotStopWorker(t *testing.T) {
	pub := &stubPublisher{err: errors.New("redis down")}
	d := NewDispatcher(1, pub, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	defer func() {
		cancel()
		d.Wait()
	}()

	d.Enqueue(domain.MarkerUpdate{SubjectID: "C-1"})
	d.Enqueue(domain.MarkerUpdate{SubjectID: "C-1"})
	waitFor(t, func() bool { return len(pub.snapshot()) == 2 })
}
