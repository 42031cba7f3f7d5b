package domain

import "time"

// TrackingView is the read-only projection handed to the hosting view.
type TrackingView struct {
	SubjectID       string            `json:"subject_id"`
	Active          bool              `json:"active"`
	Loading         bool              `json:"loading"`
	Error           string            `json:"error,omitempty"`
	InvalidLocation bool              `json:"invalid_location"`
	Snapshot        *TrackingSnapshot `json:"current_snapshot"`
	SimulatedRoute  RouteGeometry     `json:"simulated_route"`
	OptimizedRoute  RouteGeometry     `json:"optimized_route"`
	Generation      uint64            `json:"generation"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Route returns the route held for source.
func (v TrackingView) Route(source RouteSource) RouteGeometry {
	if source == RouteOptimized {
		return v.OptimizedRoute
	}
	return v.SimulatedRoute
}

// SetRoute replaces the route held for r.Source.
func (v *TrackingView) SetRoute(r RouteGeometry) {
	if r.Source == RouteOptimized {
		v.OptimizedRoute = r
		return
	}
	v.SimulatedRoute = r
}

// MarkerUpdate is published every time the live marker moves.
type MarkerUpdate struct {
	SubjectID string    `json:"subject_id"`
	Position  LatLng    `json:"position"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}
