package domain

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// RouteSource tags which backend computation produced a route.
type RouteSource string

const (
	RouteSimulated RouteSource = "simulated"
	RouteOptimized RouteSource = "optimized"
)

// RouteSources lists every source polled on each cycle, in display order.
var RouteSources = []RouteSource{RouteSimulated, RouteOptimized}

const earthRadiusMeters = 6371000.0

// RouteGeometry is an ordered path in (lat, lng) order. An empty Points slice
// means no route is available. Routes are replaced wholesale, never patched.
type RouteGeometry struct {
	Points []LatLng    `json:"points"`
	Source RouteSource `json:"source"`
}

// EmptyRoute returns a valid route with no points.
func EmptyRoute(source RouteSource) RouteGeometry {
	return RouteGeometry{Points: []LatLng{}, Source: source}
}

// Empty reports whether the route has no points.
func (r RouteGeometry) Empty() bool {
	return len(r.Points) == 0
}

// LineString converts the route to orb's (lon, lat) order.
func (r RouteGeometry) LineString() orb.LineString {
	ls := make(orb.LineString, len(r.Points))
	for i, p := range r.Points {
		ls[i] = orb.Point{p.Lng, p.Lat}
	}
	return ls
}

// LengthMeters is the great-circle length of the route.
func (r RouteGeometry) LengthMeters() float64 {
	var total float64
	for i := 1; i < len(r.Points); i++ {
		total += DistanceMeters(r.Points[i-1], r.Points[i])
	}
	return total
}

// RemainingMeters returns the length of the route from the vertex closest to
// from until its end.
func (r RouteGeometry) RemainingMeters(from LatLng) float64 {
	if len(r.Points) == 0 {
		return 0
	}
	best, bestDist := 0, DistanceMeters(from, r.Points[0])
	for i := 1; i < len(r.Points); i++ {
		if d := DistanceMeters(from, r.Points[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	total := bestDist
	for i := best + 1; i < len(r.Points); i++ {
		total += DistanceMeters(r.Points[i-1], r.Points[i])
	}
	return total
}

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(a, b LatLng) float64 {
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lng))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lng))
	return pa.Distance(pb).Radians() * earthRadiusMeters
}
