package service

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/core/ports"
	"github.com/99minutos/tracking-viewer/internal/pkg/metrics"
)

const (
	NoticeLoading         = "loading tracking data"
	NoticeWaiting         = "no position reported yet"
	NoticeInvalidLocation = "location unavailable"
	noticeErrorPrefix     = "tracking unavailable: "
	noticeTerminalPrefix  = "shipment "
)

// MarkerPresenter keeps exactly one marker object on a MapSurface for the
// tracked subject and moves it in place as snapshots arrive. It implements
// ports.ViewRenderer and is driven by the polling session.
type MarkerPresenter struct {
	surface ports.MapSurface
	sink    ports.MarkerSink
	log     zerolog.Logger

	mu        sync.Mutex
	subject   string
	handle    ports.MarkerHandle
	hasMarker bool
	lastSnap  *domain.TrackingSnapshot
	unknown   domain.ShipmentStatus
}

var _ ports.ViewRenderer = (*MarkerPresenter)(nil)

// NewMarkerPresenter binds a presenter to surface. sink may be nil.
func NewMarkerPresenter(surface ports.MapSurface, sink ports.MarkerSink, log zerolog.Logger) *MarkerPresenter {
	return &MarkerPresenter{surface: surface, sink: sink, log: log}
}

// Render reconciles the surface with view.
func (p *MarkerPresenter) Render(view domain.TrackingView) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if view.SubjectID != p.subject {
		p.resetLocked()
		p.subject = view.SubjectID
	}

	p.surface.SetNotice(notice(view))

	switch {
	case view.InvalidLocation:
		p.hideLocked()
	case view.Snapshot != nil && view.Snapshot != p.lastSnap:
		p.lastSnap = view.Snapshot
		p.flagUnknownLocked(*view.Snapshot)
		if p.repositionLocked(view.Snapshot.Position()) {
			p.publishLocked(*view.Snapshot)
		}
	}

	if p.hasMarker && view.Snapshot != nil {
		if err := p.surface.SetPopup(p.handle, popupText(view)); err != nil {
			p.log.Debug().Err(err).Msg("popup update skipped")
		}
	}

	for _, src := range domain.RouteSources {
		p.surface.SetOverlay(withSource(view.Route(src), src))
	}
}

// Reposition moves the marker to at, creating it on first use. Non-finite
// coordinates are ignored and leave the marker where it was.
func (p *MarkerPresenter) Reposition(at domain.LatLng) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repositionLocked(at)
}

// Handle returns the marker handle, if the marker exists.
func (p *MarkerPresenter) Handle() (ports.MarkerHandle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle, p.hasMarker
}

func (p *MarkerPresenter) repositionLocked(at domain.LatLng) bool {
	if !at.Finite() {
		p.log.Debug().Float64("lat", at.Lat).Float64("lng", at.Lng).Msg("non-finite position ignored")
		return false
	}

	if !p.hasMarker {
		p.handle = p.surface.AddMarker(at)
		p.hasMarker = true
	} else if err := p.surface.MoveMarker(p.handle, at); err != nil {
		// The surface lost the marker; recreate it rather than stack a second one.
		p.log.Warn().Err(err).Uint64("handle", uint64(p.handle)).Msg("marker move failed, recreating")
		p.handle = p.surface.AddMarker(at)
	} else {
		metrics.MarkerRepositionsTotal.Inc()
	}

	if err := p.surface.SetMarkerVisible(p.handle, true); err != nil {
		p.log.Debug().Err(err).Msg("marker show skipped")
	}
	return true
}

func (p *MarkerPresenter) hideLocked() {
	if !p.hasMarker {
		return
	}
	if err := p.surface.SetMarkerVisible(p.handle, false); err != nil {
		p.log.Debug().Err(err).Msg("marker hide skipped")
	}
}

// resetLocked drops everything drawn for the previous subject.
func (p *MarkerPresenter) resetLocked() {
	if p.hasMarker {
		if err := p.surface.RemoveMarker(p.handle); err != nil {
			p.log.Debug().Err(err).Msg("marker removal skipped")
		}
	}
	p.surface.ClearOverlays()
	p.hasMarker = false
	p.handle = 0
	p.lastSnap = nil
	p.unknown = ""
}

// flagUnknownLocked logs a status we have no label for, once per status.
func (p *MarkerPresenter) flagUnknownLocked(snap domain.TrackingSnapshot) {
	status, ok := snap.Status()
	if !ok || status.IsKnown() || status == p.unknown {
		return
	}
	p.unknown = status
	p.log.Warn().Str("subject", snap.SubjectID()).Str("status", string(status)).Msg("unknown shipment status")
}

func (p *MarkerPresenter) publishLocked(snap domain.TrackingSnapshot) {
	if p.sink == nil {
		return
	}
	status, _ := snap.Status()
	p.sink.Enqueue(domain.MarkerUpdate{
		SubjectID: snap.SubjectID(),
		Position:  snap.Position(),
		Status:    string(status),
		At:        snap.ObservedAt(),
	})
}

func notice(view domain.TrackingView) string {
	switch {
	case view.SubjectID == "":
		return ""
	case view.Error != "":
		return noticeErrorPrefix + view.Error
	case view.InvalidLocation:
		return NoticeInvalidLocation
	case view.Snapshot != nil:
		if status, ok := view.Snapshot.Status(); ok && status.Terminal() {
			return noticeTerminalPrefix + strings.ToLower(status.Label())
		}
		return ""
	case view.Loading:
		return NoticeLoading
	default:
		return NoticeWaiting
	}
}

// popupText summarises the snapshot for the marker popup.
func popupText(view domain.TrackingView) string {
	snap := view.Snapshot
	lines := []string{"Shipment " + snap.SubjectID()}

	if status, ok := snap.Status(); ok {
		label := status.Label()
		if !status.IsKnown() {
			label += " (unknown)"
		}
		lines = append(lines, "Status: "+label)
	}
	if eta, ok := snap.EstimatedDelivery(); ok {
		lines = append(lines, "ETA: "+eta.UTC().Format("2006-01-02 15:04 UTC"))
	}

	route := view.Route(domain.RouteOptimized)
	if route.Empty() {
		route = view.Route(domain.RouteSimulated)
	}
	if !route.Empty() {
		km := route.RemainingMeters(snap.Position()) / 1000
		lines = append(lines, fmt.Sprintf("Remaining: %.1f km (%s)", km, route.Source))
	}
	return strings.Join(lines, "\n")
}

func withSource(r domain.RouteGeometry, src domain.RouteSource) domain.RouteGeometry {
	r.Source = src
	return r
}
