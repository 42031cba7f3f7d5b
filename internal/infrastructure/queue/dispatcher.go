package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/core/ports"
	"github.com/99minutos/tracking-viewer/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
	publishTimeout = 2 * time.Second
)

// Dispatcher fans marker moves out to a fixed set of workers using consistent
// hashing on the subject id, so moves of one subject are published in order.
type Dispatcher struct {
	workers   []chan domain.MarkerUpdate
	publisher ports.MarkerPublisher
	log       zerolog.Logger
	wg        sync.WaitGroup
}

var _ ports.MarkerSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.MarkerPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.MarkerUpdate, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.MarkerUpdate, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands a move to the worker responsible for its subject. It never
// blocks: when that worker is backed up the move is dropped, since a newer
// one will follow on the next poll.
func (d *Dispatcher) Enqueue(update domain.MarkerUpdate) {
	idx := d.shardIndex(update.SubjectID)
	select {
	case d.workers[idx] <- update:
		metrics.FeedQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.FeedDroppedTotal.Inc()
		d.log.Warn().Str("subject", update.SubjectID).Int("worker_id", idx).Msg("feed worker full, marker update dropped")
	}
}

// shardIndex maps a subject id deterministically to a worker index.
func (d *Dispatcher) shardIndex(subjectID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subjectID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.MarkerUpdate) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-ch:
			metrics.FeedQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			err := d.publisher.Publish(pubCtx, update)
			cancel()
			if err != nil {
				d.log.Error().Err(err).
					Str("subject", update.SubjectID).
					Int("worker_id", id).
					Msg("marker publish failed")
			}
		}
	}
}
