// Package mapview holds the map composition: a view built once with its base
// layer and initial viewport, hosting marker objects and route overlays that
// are mutated in place.
package mapview

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/core/ports"
)

// Options are fixed for the lifetime of a surface.
type Options struct {
	BaseLayer string
	Center    domain.LatLng
	Zoom      int
}

type marker struct {
	position domain.LatLng
	visible  bool
	popup    string
	moves    int
}

// Surface implements ports.MapSurface. It is safe for concurrent use.
type Surface struct {
	id        string
	baseLayer string

	mu         sync.RWMutex
	viewport   ports.Viewport
	markers    map[ports.MarkerHandle]*marker
	nextHandle ports.MarkerHandle
	overlays   map[domain.RouteSource]domain.RouteGeometry
	notice     string
}

var _ ports.MapSurface = (*Surface)(nil)

// NewSurface builds the map view. Callers keep the returned surface for the
// whole mounted session; data updates never rebuild it.
func NewSurface(opts Options) *Surface {
	return &Surface{
		id:        uuid.NewString(),
		baseLayer: opts.BaseLayer,
		viewport:  ports.Viewport{Center: opts.Center, Zoom: opts.Zoom},
		markers:   make(map[ports.MarkerHandle]*marker),
		overlays:  make(map[domain.RouteSource]domain.RouteGeometry),
	}
}

// ID identifies this surface instance.
func (s *Surface) ID() string { return s.id }

func (s *Surface) AddMarker(at domain.LatLng) ports.MarkerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	s.markers[s.nextHandle] = &marker{position: at, visible: true}
	return s.nextHandle
}

func (s *Surface) MoveMarker(h ports.MarkerHandle, at domain.LatLng) error {
	return s.withMarker(h, func(m *marker) {
		m.position = at
		m.moves++
	})
}

func (s *Surface) SetMarkerVisible(h ports.MarkerHandle, visible bool) error {
	return s.withMarker(h, func(m *marker) { m.visible = visible })
}

func (s *Surface) SetPopup(h ports.MarkerHandle, text string) error {
	return s.withMarker(h, func(m *marker) { m.popup = text })
}

func (s *Surface) RemoveMarker(h ports.MarkerHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[h]; !ok {
		return fmt.Errorf("remove marker %d: %w", h, domain.ErrMarkerNotFound)
	}
	delete(s.markers, h)
	return nil
}

func (s *Surface) withMarker(h ports.MarkerHandle, fn func(*marker)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[h]
	if !ok {
		return fmt.Errorf("marker %d: %w", h, domain.ErrMarkerNotFound)
	}
	fn(m)
	return nil
}

// SetOverlay replaces the overlay for route.Source. Empty routes remove it.
func (s *Surface) SetOverlay(route domain.RouteGeometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if route.Empty() {
		delete(s.overlays, route.Source)
		return
	}
	s.overlays[route.Source] = route
}

func (s *Surface) ClearOverlays() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.overlays)
}

func (s *Surface) SetNotice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = text
}

// SetViewport records a user pan/zoom.
func (s *Surface) SetViewport(v ports.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
}

func (s *Surface) Viewport() ports.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

func (s *Surface) Notice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}

// MarkerCount is the number of marker objects on the surface.
func (s *Surface) MarkerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}

// MarkerPosition returns the current position of h.
func (s *Surface) MarkerPosition(h ports.MarkerHandle) (domain.LatLng, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markers[h]
	if !ok {
		return domain.LatLng{}, false
	}
	return m.position, true
}

// MarkerMoves is how many times h was repositioned in place.
func (s *Surface) MarkerMoves(h ports.MarkerHandle) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.markers[h]; ok {
		return m.moves
	}
	return 0
}

// Overlay returns the overlay for source, if any.
func (s *Surface) Overlay(source domain.RouteSource) (domain.RouteGeometry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.overlays[source]
	return r, ok
}

// FeatureCollection renders the composition as GeoJSON. Surface-level state
// (base layer, viewport, notice) is carried in the collection's foreign members.
func (s *Surface) FeatureCollection() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"surface_id": s.id,
		"base_layer": s.baseLayer,
		"center":     map[string]float64{"lat": s.viewport.Center.Lat, "lng": s.viewport.Center.Lng},
		"zoom":       s.viewport.Zoom,
	}
	if s.notice != "" {
		fc.ExtraMembers["notice"] = s.notice
	}

	handles := make([]ports.MarkerHandle, 0, len(s.markers))
	for h := range s.markers {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		m := s.markers[h]
		if !m.visible {
			continue
		}
		f := geojson.NewFeature(orb.Point{m.position.Lng, m.position.Lat})
		f.ID = uint64(h)
		f.Properties["kind"] = "marker"
		f.Properties["popup"] = m.popup
		fc.Append(f)
	}

	for _, src := range domain.RouteSources {
		r, ok := s.overlays[src]
		if !ok {
			continue
		}
		f := geojson.NewFeature(r.LineString())
		f.Properties["kind"] = "route"
		f.Properties["source"] = string(src)
		f.Properties["length_m"] = r.LengthMeters()
		fc.Append(f)
	}
	return fc
}
