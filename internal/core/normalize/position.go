package normalize

import (
	"fmt"
	"time"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
)

// Fallback chains, highest priority first.
var (
	latitudeFields = chain(number,
		"CurrentLat", "currentLat", "current_lat", "Latitude", "latitude", "lat", "Lat")
	longitudeFields = chain(number,
		"CurrentLng", "currentLng", "current_lng", "CurrentLon", "Longitude", "longitude", "lng", "Lng", "lon")
	statusFields = chain(text,
		"CurrentState", "currentState", "current_state", "Status", "status", "state")
	etaFields = chain(timestamp,
		"EstimatedDelivery", "estimatedDelivery", "estimated_delivery", "ETA", "eta")
)

// envelopeKey is the single wrapper level some backends put around the record.
const envelopeKey = "data"

// Position normalizes a tracking payload into a snapshot for subjectID.
// A payload whose coordinates do not both resolve to finite numbers yields
// domain.ErrInvalidLocation.
func Position(subjectID string, raw any, observedAt time.Time) (domain.TrackingSnapshot, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.TrackingSnapshot{}, fmt.Errorf("normalize position: payload is %T: %w", raw, domain.ErrInvalidLocation)
	}

	lat, okLat := first(obj, latitudeFields)
	lng, okLng := first(obj, longitudeFields)
	if !okLat && !okLng {
		if inner, ok := obj[envelopeKey].(map[string]any); ok {
			return Position(subjectID, inner, observedAt)
		}
	}
	if !okLat || !okLng {
		return domain.TrackingSnapshot{}, fmt.Errorf("normalize position: coordinates unresolved (lat=%t lng=%t): %w",
			okLat, okLng, domain.ErrInvalidLocation)
	}

	opts := []domain.SnapshotOption{domain.WithObservedAt(observedAt)}
	if status, ok := first(obj, statusFields); ok {
		opts = append(opts, domain.WithStatus(status))
	}
	if eta, ok := first(obj, etaFields); ok {
		opts = append(opts, domain.WithEstimatedDelivery(eta))
	}
	return domain.NewTrackingSnapshot(subjectID, lat, lng, opts...)
}
