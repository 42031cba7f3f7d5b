package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/core/normalize"
	"github.com/99minutos/tracking-viewer/internal/core/ports"
	"github.com/99minutos/tracking-viewer/internal/pkg/metrics"
)

// DefaultInterval is the poll period when none is configured.
const DefaultInterval = 3 * time.Second

const resourcePosition = "position"

// SessionConfig tunes a PollingSession.
type SessionConfig struct {
	Interval time.Duration
	// Now is injectable for tests.
	Now func() time.Time
}

// PollingSession polls the position and route resources of one subject at a
// fixed interval and keeps the latest reconciled TrackingView.
//
// Every Start bumps a generation counter; results are committed only while
// their generation is current, so a fetch that resolves after Stop or after a
// subject switch never touches the view.
type PollingSession struct {
	reader   ports.ResponseReader
	renderer ports.ViewRenderer
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger

	// lifecycle serialises Start and Stop; it owns cancel and done.
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	mu   sync.Mutex
	gen  uint64
	view domain.TrackingView
}

var _ ports.TrackingSession = (*PollingSession)(nil)

// NewPollingSession returns an idle session. renderer may be nil.
func NewPollingSession(reader ports.ResponseReader, renderer ports.ViewRenderer, cfg SessionConfig, log zerolog.Logger) *PollingSession {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &PollingSession{
		reader:   reader,
		renderer: renderer,
		interval: cfg.Interval,
		now:      cfg.Now,
		log:      log,
		view:     idleView(),
	}
}

// Start begins polling subjectID. One cycle runs immediately, then one per
// interval. A running session is stopped first, so there is never more than
// one timer. The session also ends when ctx is cancelled.
func (s *PollingSession) Start(ctx context.Context, subjectID string) error {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return fmt.Errorf("start session: %w", domain.ErrInvalidSubject)
	}

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.view = domain.TrackingView{
		SubjectID:      subjectID,
		Active:         true,
		Loading:        true,
		SimulatedRoute: domain.EmptyRoute(domain.RouteSimulated),
		OptimizedRoute: domain.EmptyRoute(domain.RouteOptimized),
		Generation:     gen,
		UpdatedAt:      s.now().UTC(),
	}
	s.renderLocked()
	s.mu.Unlock()

	s.cancel, s.done = cancel, done
	metrics.ActiveSessions.Set(1)
	s.log.Info().Str("subject", subjectID).Uint64("generation", gen).Dur("interval", s.interval).Msg("tracking session started")

	go s.run(runCtx, gen, subjectID, done)
	return nil
}

// Stop ends polling and discards the subject's state. The timer is released
// before Stop returns. Fetches already in flight are cancelled through their
// context and, should they still resolve, their results are dropped.
func (s *PollingSession) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stopLocked()
}

// Close stops the session; it makes PollingSession usable with defer.
func (s *PollingSession) Close() error {
	s.Stop()
	return nil
}

// View returns the current projection.
func (s *PollingSession) View() domain.TrackingView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Active reports whether a subject is being polled.
func (s *PollingSession) Active() bool {
	return s.View().Active
}

func (s *PollingSession) stopLocked() {
	if s.cancel == nil {
		return
	}

	s.retire(0)
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

// retire invalidates generation gen (0 means whatever is current) and resets
// the view to idle.
func (s *PollingSession) retire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != 0 && gen != s.gen {
		return
	}
	subject := s.view.SubjectID
	s.gen++
	s.view = idleView()
	s.view.Generation = s.gen
	s.view.UpdatedAt = s.now().UTC()
	s.renderLocked()
	metrics.ActiveSessions.Set(0)
	s.log.Info().Str("subject", subject).Msg("tracking session stopped")
}

// inflight tracks one pending fetch per resource. The map is built once and
// only read afterwards.
type inflight map[string]*atomic.Bool

func newInflight() inflight {
	f := inflight{resourcePosition: new(atomic.Bool)}
	for _, src := range domain.RouteSources {
		f[string(src)] = new(atomic.Bool)
	}
	return f
}

func (f inflight) claim(resource string) bool {
	return f[resource].CompareAndSwap(false, true)
}

func (f inflight) release(resource string) {
	f[resource].Store(false)
}

// run owns the ticker. Cycles run in their own goroutine so that teardown
// never waits on a slow backend.
func (s *PollingSession) run(ctx context.Context, gen uint64, subjectID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	pending := newInflight()
	go s.cycle(ctx, gen, subjectID, pending)
	for {
		select {
		case <-ctx.Done():
			// Parent teardown; a no-op when Stop already retired gen.
			s.retire(gen)
			return
		case <-ticker.C:
			go s.cycle(ctx, gen, subjectID, pending)
		}
	}
}

// cycle fetches every resource concurrently. A resource whose previous fetch
// is still pending is skipped this round; the others are fetched regardless.
// Results are applied as they arrive, in no particular order.
func (s *PollingSession) cycle(ctx context.Context, gen uint64, subjectID string, pending inflight) {
	metrics.PollCyclesTotal.Inc()

	var g errgroup.Group
	launch := func(resource string, poll func()) {
		if !pending.claim(resource) {
			metrics.SkippedFetchesTotal.WithLabelValues(resource).Inc()
			s.log.Debug().Str("subject", subjectID).Str("resource", resource).Msg("previous fetch still running, skipped")
			return
		}
		g.Go(func() error {
			defer pending.release(resource)
			poll()
			return nil
		})
	}

	launch(resourcePosition, func() { s.pollPosition(ctx, gen, subjectID) })
	for _, src := range domain.RouteSources {
		launch(string(src), func() { s.pollRoute(ctx, gen, subjectID, src) })
	}
	_ = g.Wait()
}

func (s *PollingSession) pollPosition(ctx context.Context, gen uint64, subjectID string) {
	start := time.Now()
	out := s.reader.Read(ctx, ports.TrackingPath(subjectID))

	label := out.Kind.String()
	var (
		snap    domain.TrackingSnapshot
		normErr error
	)
	if out.Kind == domain.OutcomeSuccess {
		snap, normErr = normalize.Position(subjectID, out.Payload, s.now())
		if normErr != nil {
			label = "invalid_location"
		}
	}
	metrics.FetchDuration.WithLabelValues(resourcePosition).Observe(time.Since(start).Seconds())

	s.apply(gen, resourcePosition, label, func(v *domain.TrackingView) {
		v.Loading = false
		switch {
		case out.Kind == domain.OutcomeSuccess && normErr == nil:
			v.Snapshot = &snap
			v.Error = ""
			v.InvalidLocation = false
		case out.Kind == domain.OutcomeSuccess:
			// Showing nothing beats showing a false position.
			v.Snapshot = nil
			v.Error = ""
			v.InvalidLocation = true
		case out.Kind == domain.OutcomeNotFound:
			v.Error = ""
			v.InvalidLocation = false
		default:
			// Keep the last good snapshot on screen under the error.
			v.Error = out.Message
		}
	})

	switch {
	case out.Failed():
		s.log.Warn().Str("subject", subjectID).Str("outcome", label).Str("message", out.Message).Msg("position fetch failed")
	case normErr != nil:
		s.log.Warn().Err(normErr).Str("subject", subjectID).Msg("position payload not renderable")
	default:
		s.log.Debug().Str("subject", subjectID).Str("outcome", label).Msg("position polled")
	}
}

func (s *PollingSession) pollRoute(ctx context.Context, gen uint64, subjectID string, src domain.RouteSource) {
	start := time.Now()
	out := s.reader.Read(ctx, ports.RoutePath(src, subjectID))

	route := domain.EmptyRoute(src)
	if out.Kind == domain.OutcomeSuccess {
		route = normalize.Route(out.Payload, src)
	}
	metrics.FetchDuration.WithLabelValues(string(src)).Observe(time.Since(start).Seconds())

	s.apply(gen, string(src), out.Kind.String(), func(v *domain.TrackingView) {
		v.SetRoute(route)
	})

	if out.Failed() {
		s.log.Debug().Str("subject", subjectID).Str("source", string(src)).Str("message", out.Message).Msg("route fetch failed, overlay cleared")
	}
}

// apply commits mutate if gen is still current and reports whether it did.
func (s *PollingSession) apply(gen uint64, resource, outcome string, mutate func(*domain.TrackingView)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		metrics.StaleResultsTotal.WithLabelValues(resource).Inc()
		return false
	}
	metrics.FetchOutcomesTotal.WithLabelValues(resource, outcome).Inc()
	mutate(&s.view)
	s.view.UpdatedAt = s.now().UTC()
	s.renderLocked()
	return true
}

// renderLocked hands the current view to the renderer. Called with mu held so
// that renders are ordered and none can follow a retirement.
func (s *PollingSession) renderLocked() {
	if s.renderer != nil {
		s.renderer.Render(s.view)
	}
}

func idleView() domain.TrackingView {
	return domain.TrackingView{
		SimulatedRoute: domain.EmptyRoute(domain.RouteSimulated),
		OptimizedRoute: domain.EmptyRoute(domain.RouteOptimized),
	}
}
