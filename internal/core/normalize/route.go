package normalize

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
)

var geometryKeys = []string{"geometry", "Geometry"}

var (
	labeledLatFields = chain(number, "lat", "latitude", "Lat", "Latitude")
	labeledLngFields = chain(number, "lng", "lon", "longitude", "Lng", "Lon", "Longitude")
)

type pointConvention int

const (
	conventionUnknown pointConvention = iota
	// [lon, lat] pairs, the GeoJSON order.
	conventionPair
	// {lat, lng} objects, already in canonical order.
	conventionLabeled
)

// Route normalizes a route payload. raw is either an object carrying a
// geometry field or the geometry itself. Anything unrecognised, including a
// single malformed point, yields an empty route.
func Route(raw any, source domain.RouteSource) domain.RouteGeometry {
	geom := raw
	if obj, ok := raw.(map[string]any); ok && !isGeoJSONGeometry(obj) {
		geom = nil
		for _, k := range geometryKeys {
			if v, ok := obj[k]; ok {
				geom = v
				break
			}
		}
	}

	points, ok := decodePoints(geom)
	if !ok {
		return domain.EmptyRoute(source)
	}
	return domain.RouteGeometry{Points: points, Source: source}
}

func decodePoints(geom any) ([]domain.LatLng, bool) {
	switch g := geom.(type) {
	case nil:
		return []domain.LatLng{}, true
	case []any:
		if len(g) == 0 {
			return []domain.LatLng{}, true
		}
		switch detectConvention(g[0]) {
		case conventionPair:
			return decodePairs(g)
		case conventionLabeled:
			return decodeLabeled(g)
		}
		return nil, false
	case map[string]any:
		if isGeoJSONGeometry(g) {
			return decodeGeoJSON(g)
		}
		return nil, false
	default:
		return nil, false
	}
}

// detectConvention inspects the first element only.
func detectConvention(v any) pointConvention {
	switch e := v.(type) {
	case []any:
		if _, _, ok := pair(e); ok {
			return conventionPair
		}
	case map[string]any:
		if _, ok := first(e, labeledLatFields); ok {
			return conventionLabeled
		}
	}
	return conventionUnknown
}

func pair(e []any) (float64, float64, bool) {
	if len(e) < 2 {
		return 0, 0, false
	}
	a, okA := number(e[0])
	b, okB := number(e[1])
	return a, b, okA && okB
}

func decodePairs(items []any) ([]domain.LatLng, bool) {
	out := make([]domain.LatLng, 0, len(items))
	for _, item := range items {
		e, ok := item.([]any)
		if !ok {
			return nil, false
		}
		lng, lat, ok := pair(e)
		if !ok {
			return nil, false
		}
		out = append(out, domain.LatLng{Lat: lat, Lng: lng})
	}
	return out, true
}

func decodeLabeled(items []any) ([]domain.LatLng, bool) {
	out := make([]domain.LatLng, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		lat, okLat := first(obj, labeledLatFields)
		lng, okLng := first(obj, labeledLngFields)
		if !okLat || !okLng {
			return nil, false
		}
		out = append(out, domain.LatLng{Lat: lat, Lng: lng})
	}
	return out, true
}

func isGeoJSONGeometry(obj map[string]any) bool {
	t, _ := obj["type"].(string)
	_, hasCoords := obj["coordinates"]
	return t != "" && hasCoords
}

// decodeGeoJSON accepts LineString and MultiPoint geometries.
func decodeGeoJSON(obj map[string]any) ([]domain.LatLng, bool) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, false
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil || g == nil {
		return nil, false
	}

	var pts []orb.Point
	switch geom := g.Geometry().(type) {
	case orb.LineString:
		pts = geom
	case orb.MultiPoint:
		pts = geom
	default:
		return nil, false
	}

	out := make([]domain.LatLng, 0, len(pts))
	for _, p := range pts {
		ll := domain.LatLng{Lat: p.Lat(), Lng: p.Lon()}
		if !ll.Finite() {
			return nil, false
		}
		out = append(out, ll)
	}
	return out, true
}
