package service

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/core/ports"
	"github.com/99minutos/tracking-viewer/internal/infrastructure/mapview"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubMarker struct {
	at      domain.LatLng
	visible bool
	popup   string
}

type stubSurface struct {
	next     ports.MarkerHandle
	markers  map[ports.MarkerHandle]*stubMarker
	adds     int
	moves    int
	removes  int
	clears   int
	overlays map[domain.RouteSource]domain.RouteGeometry
	notice   string
}

func newStubSurface() *stubSurface {
	return &stubSurface{
		markers:  map[ports.MarkerHandle]*stubMarker{},
		overlays: map[domain.RouteSource]domain.RouteGeometry{},
	}
}

func (s *stubSurface) AddMarker(at domain.LatLng) ports.MarkerHandle {
	s.next++
	s.adds++
	s.markers[s.next] = &stubMarker{at: at, visible: true}
	return s.next
}

func (s *stubSurface) MoveMarker(h ports.MarkerHandle, at domain.LatLng) error {
	m, ok := s.markers[h]
	if !ok {
		return domain.ErrMarkerNotFound
	}
	s.moves++
	m.at = at
	return nil
}

func (s *stubSurface) SetMarkerVisible(h ports.MarkerHandle, visible bool) error {
	m, ok := s.markers[h]
	if !ok {
		return domain.ErrMarkerNotFound
	}
	m.visible = visible
	return nil
}

func (s *stubSurface) RemoveMarker(h ports.MarkerHandle) error {
	if _, ok := s.markers[h]; !ok {
		return domain.ErrMarkerNotFound
	}
	s.removes++
	delete(s.markers, h)
	return nil
}

func (s *stubSurface) SetPopup(h ports.MarkerHandle, text string) error {
	m, ok := s.markers[h]
	if !ok {
		return domain.ErrMarkerNotFound
	}
	m.popup = text
	return nil
}

func (s *stubSurface) SetOverlay(r domain.RouteGeometry) {
	if r.Empty() {
		delete(s.overlays, r.Source)
		return
	}
	s.overlays[r.Source] = r
}

func (s *stubSurface) ClearOverlays() {
	s.clears++
	s.overlays = map[domain.RouteSource]domain.RouteGeometry{}
}

func (s *stubSurface) SetNotice(text string) { s.notice = text }

type stubSink struct {
	updates []domain.MarkerUpdate
}

func (s *stubSink) Enqueue(u domain.MarkerUpdate) { s.updates = append(s.updates, u) }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustSnapshot(t *testing.T, subject string, lat, lng float64, opts ...domain.SnapshotOption) *domain.TrackingSnapshot {
	t.Helper()
	s, err := domain.NewTrackingSnapshot(subject, lat, lng, opts...)
	if err != nil {
		t.Fatalf("NewTrackingSnapshot: %v", err)
	}
	return &s
}

func activeView(subject string, snap *domain.TrackingSnapshot) domain.TrackingView {
	return domain.TrackingView{
		SubjectID:      subject,
		Active:         true,
		Snapshot:       snap,
		SimulatedRoute: domain.EmptyRoute(domain.RouteSimulated),
		OptimizedRoute: domain.EmptyRoute(domain.RouteOptimized),
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestPresenter_RepositionsSingleMarker(t *testing.T) {
	surface := newStubSurface()
	sink := &stubSink{}
	p := NewMarkerPresenter(surface, sink, zerolog.Nop())

	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.7, -74.0)))
	first, ok := p.Handle()
	if !ok {
		t.Fatal("expected a marker after first snapshot")
	}

	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.71, -74.01)))
	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.72, -74.02)))

	h, _ := p.Handle()
	if h != first {
		t.Errorf("handle changed %d -> %d", first, h)
	}
	if surface.adds != 1 || surface.moves != 2 || len(surface.markers) != 1 {
		t.Errorf("adds=%d moves=%d markers=%d, want 1/2/1", surface.adds, surface.moves, len(surface.markers))
	}
	if got := surface.markers[h].at; got != (domain.LatLng{Lat: 40.72, Lng: -74.02}) {
		t.Errorf("marker at %v", got)
	}
	if len(sink.updates) != 3 || sink.updates[2].SubjectID != "C-1" {
		t.Errorf("unexpected feed updates %+v", sink.updates)
	}
}

func TestPresenter_SameSnapshotDoesNotMove(t *testing.T) {
	surface := newStubSurface()
	sink := &stubSink{}
	p := NewMarkerPresenter(surface, sink, zerolog.Nop())

	view := activeView("C-1", mustSnapshot(t, "C-1", 40.7, -74.0))
	p.Render(view)
	// A route landing re-renders the same snapshot.
	view.SimulatedRoute = domain.RouteGeometry{Points: []domain.LatLng{{Lat: 40.7, Lng: -74.0}, {Lat: 40.8, Lng: -73.9}}, Source: domain.RouteSimulated}
	p.Render(view)

	if surface.moves != 0 || len(sink.updates) != 1 {
		t.Errorf("moves=%d updates=%d, want 0/1", surface.moves, len(sink.updates))
	}
	if _, ok := surface.overlays[domain.RouteSimulated]; !ok {
		t.Error("expected simulated overlay")
	}
}

func TestPresenter_IgnoresNonFinitePosition(t *testing.T) {
	surface := newStubSurface()
	p := NewMarkerPresenter(surface, nil, zerolog.Nop())

	if !p.Reposition(domain.LatLng{Lat: 40.7, Lng: -74.0}) {
		t.Fatal("expected finite reposition to succeed")
	}
	h, _ := p.Handle()

	for _, bad := range []domain.LatLng{
		{Lat: math.NaN(), Lng: -74.0},
		{Lat: 40.7, Lng: math.Inf(1)},
	} {
		if p.Reposition(bad) {
			t.Errorf("Reposition(%v) should be ignored", bad)
		}
	}
	if got := surface.markers[h].at; got != (domain.LatLng{Lat: 40.7, Lng: -74.0}) {
		t.Errorf("marker moved to %v", got)
	}
	if surface.moves != 0 {
		t.Errorf("moves = %d, want 0", surface.moves)
	}
}

func TestPresenter_InvalidLocationHidesMarker(t *testing.T) {
	surface := newStubSurface()
	p := NewMarkerPresenter(surface, nil, zerolog.Nop())

	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.7, -74.0)))
	h, _ := p.Handle()

	v := activeView("C-1", nil)
	v.InvalidLocation = true
	p.Render(v)

	if surface.markers[h].visible {
		t.Error("marker should be hidden")
	}
	if surface.notice != NoticeInvalidLocation {
		t.Errorf("notice = %q", surface.notice)
	}

	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.8, -74.1)))
	if !surface.markers[h].visible || surface.notice != "" {
		t.Errorf("marker should be shown again, notice %q", surface.notice)
	}
	if surface.adds != 1 {
		t.Errorf("adds = %d, want 1", surface.adds)
	}
}

func TestPresenter_SubjectChangeResetsSurface(t *testing.T) {
	surface := newStubSurface()
	p := NewMarkerPresenter(surface, nil, zerolog.Nop())

	v := activeView("OLD", mustSnapshot(t, "OLD", 1, 1))
	v.OptimizedRoute = domain.RouteGeometry{Points: []domain.LatLng{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}, Source: domain.RouteOptimized}
	p.Render(v)

	newView := activeView("NEW", nil)
	newView.Loading = true
	p.Render(newView)

	if _, ok := p.Handle(); ok {
		t.Error("old marker should be gone")
	}
	if surface.removes != 1 || len(surface.markers) != 0 || len(surface.overlays) != 0 {
		t.Errorf("removes=%d markers=%d overlays=%d", surface.removes, len(surface.markers), len(surface.overlays))
	}
	if surface.notice != NoticeLoading {
		t.Errorf("notice = %q", surface.notice)
	}
}

func TestPresenter_ErrorNoticeKeepsMarker(t *testing.T) {
	surface := newStubSurface()
	p := NewMarkerPresenter(surface, nil, zerolog.Nop())

	snap := mustSnapshot(t, "C-1", 40.7, -74.0)
	p.Render(activeView("C-1", snap))

	v := activeView("C-1", snap)
	v.Error = "GET /api/containers/C-1/tracking: HTTP 502"
	p.Render(v)

	if !strings.HasPrefix(surface.notice, "tracking unavailable: ") || !strings.Contains(surface.notice, "HTTP 502") {
		t.Errorf("notice = %q", surface.notice)
	}
	if len(surface.markers) != 1 {
		t.Errorf("markers = %d, want 1", len(surface.markers))
	}
}

func TestPresenter_PopupSummarisesSnapshot(t *testing.T) {
	surface := newStubSurface()
	p := NewMarkerPresenter(surface, nil, zerolog.Nop())

	eta := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	v := activeView("C-1", mustSnapshot(t, "C-1", 40.7, -74.0,
		domain.WithStatus("in_transit"), domain.WithEstimatedDelivery(eta)))
	v.OptimizedRoute = domain.RouteGeometry{
		Points: []domain.LatLng{{Lat: 40.7, Lng: -74.0}, {Lat: 40.8, Lng: -74.0}},
		Source: domain.RouteOptimized,
	}
	p.Render(v)

	h, _ := p.Handle()
	popup := surface.markers[h].popup
	for _, want := range []string{"Shipment C-1", "Status: In transit", "ETA: 2026-03-04 18:00 UTC", "Remaining: 11.1 km (optimized)"} {
		if !strings.Contains(popup, want) {
			t.Errorf("popup %q missing %q", popup, want)
		}
	}
}

func TestPresenter_StopRemovesEverything(t *testing.T) {
	surface := newStubSurface()
	p := NewMarkerPresenter(surface, nil, zerolog.Nop())

	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.7, -74.0)))
	p.Render(domain.TrackingView{
		SimulatedRoute: domain.EmptyRoute(domain.RouteSimulated),
		OptimizedRoute: domain.EmptyRoute(domain.RouteOptimized),
	})

	if len(surface.markers) != 0 || surface.notice != "" {
		t.Errorf("markers=%d notice=%q", len(surface.markers), surface.notice)
	}
}

func TestPresenter_TerminalStatusNotice(t *testing.T) {
	for status, want := range map[string]string{
		"delivered":  "shipment delivered",
		"cancelled":  "shipment cancelled",
		"in_transit": "",
	} {
		surface := newStubSurface()
		p := NewMarkerPresenter(surface, nil, zerolog.Nop())
		p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.7, -74.0, domain.WithStatus(status))))

		if surface.notice != want {
			t.Errorf("status %q: notice = %q, want %q", status, surface.notice, want)
		}
		if len(surface.markers) != 1 {
			t.Errorf("status %q: markers = %d, want 1", status, len(surface.markers))
		}
	}
}

func TestPresenter_FlagsUnknownStatus(t *testing.T) {
	var buf bytes.Buffer
	surface := newStubSurface()
	p := NewMarkerPresenter(surface, nil, zerolog.New(&buf))

	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.7, -74.0, domain.WithStatus("held_at_customs"))))
	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.8, -74.0, domain.WithStatus("held_at_customs"))))

	h, _ := p.Handle()
	if popup := surface.markers[h].popup; !strings.Contains(popup, "Status: held_at_customs (unknown)") {
		t.Errorf("popup %q should flag the unknown status", popup)
	}
	if n := strings.Count(buf.String(), "unknown shipment status"); n != 1 {
		t.Errorf("unknown status logged %d times, want 1", n)
	}

	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.9, -74.0, domain.WithStatus("in_transit"))))
	if popup := surface.markers[h].popup; strings.Contains(popup, "unknown") {
		t.Errorf("known status flagged: %q", popup)
	}
}

func TestPresenter_DrivesMapSurface(t *testing.T) {
	surface := mapview.NewSurface(mapview.Options{BaseLayer: "osm", Zoom: 12})
	p := NewMarkerPresenter(surface, nil, zerolog.Nop())

	loading := activeView("C-1", nil)
	loading.Loading = true
	p.Render(loading)
	if got := surface.Notice(); got != NoticeLoading {
		t.Errorf("notice = %q, want %q", got, NoticeLoading)
	}

	p.Render(activeView("C-1", nil))
	if got := surface.Notice(); got != NoticeWaiting {
		t.Errorf("notice = %q, want %q", got, NoticeWaiting)
	}

	p.Render(activeView("C-1", mustSnapshot(t, "C-1", 40.7, -74.0, domain.WithStatus("delivered"))))
	if got := surface.Notice(); got != "shipment delivered" {
		t.Errorf("notice = %q", got)
	}
	h, ok := p.Handle()
	if !ok {
		t.Fatal("expected a marker")
	}
	if at, ok := surface.MarkerPosition(h); !ok || at != (domain.LatLng{Lat: 40.7, Lng: -74.0}) {
		t.Errorf("marker at %v (present=%t)", at, ok)
	}
	if surface.MarkerCount() != 1 {
		t.Errorf("markers = %d, want 1", surface.MarkerCount())
	}
}
