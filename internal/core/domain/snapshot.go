package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// LatLng is a geographic point in canonical (latitude, longitude) order.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Finite reports whether both coordinates are real numbers.
func (p LatLng) Finite() bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

// TrackingSnapshot is a point-in-time normalized position of a subject.
// It can only be built through NewTrackingSnapshot and never changes afterwards;
// a newer snapshot supersedes it.
type TrackingSnapshot struct {
	subjectID  string
	position   LatLng
	status     ShipmentStatus
	hasStatus  bool
	eta        time.Time
	hasETA     bool
	observedAt time.Time
}

// SnapshotOption sets an optional field of a snapshot at construction time.
type SnapshotOption func(*TrackingSnapshot)

// WithStatus attaches the reported status. Empty values are ignored.
func WithStatus(status string) SnapshotOption {
	return func(s *TrackingSnapshot) {
		if status == "" {
			return
		}
		s.status = ShipmentStatus(status)
		s.hasStatus = true
	}
}

// WithEstimatedDelivery attaches the estimated delivery time.
func WithEstimatedDelivery(eta time.Time) SnapshotOption {
	return func(s *TrackingSnapshot) {
		if eta.IsZero() {
			return
		}
		s.eta = eta.UTC()
		s.hasETA = true
	}
}

// WithObservedAt records when the snapshot was received.
func WithObservedAt(at time.Time) SnapshotOption {
	return func(s *TrackingSnapshot) {
		s.observedAt = at.UTC()
	}
}

// NewTrackingSnapshot builds a snapshot. Non-finite coordinates yield
// ErrInvalidLocation and no snapshot.
func NewTrackingSnapshot(subjectID string, lat, lng float64, opts ...SnapshotOption) (TrackingSnapshot, error) {
	if !isFinite(lat) || !isFinite(lng) {
		return TrackingSnapshot{}, fmt.Errorf("new snapshot (%v, %v): %w", lat, lng, ErrInvalidLocation)
	}
	s := TrackingSnapshot{
		subjectID: subjectID,
		position:  LatLng{Lat: lat, Lng: lng},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s, nil
}

func (s TrackingSnapshot) SubjectID() string { return s.subjectID }
func (s TrackingSnapshot) Latitude() float64 { return s.position.Lat }
func (s TrackingSnapshot) Longitude() float64 { return s.position.Lng }
func (s TrackingSnapshot) Position() LatLng { return s.position }
func (s TrackingSnapshot) ObservedAt() time.Time { return s.observedAt }

// Status returns the reported status, if any.
func (s TrackingSnapshot) Status() (ShipmentStatus, bool) {
	return s.status, s.hasStatus
}

// EstimatedDelivery returns the estimated delivery time, if any.
func (s TrackingSnapshot) EstimatedDelivery() (time.Time, bool) {
	return s.eta, s.hasETA
}

type snapshotJSON struct {
	SubjectID         string     `json:"subject_id"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	Status            *string    `json:"status"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	ObservedAt        time.Time  `json:"observed_at"`
}

// MarshalJSON renders absent optional fields as null.
func (s TrackingSnapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		SubjectID:  s.subjectID,
		Latitude:   s.position.Lat,
		Longitude:  s.position.Lng,
		ObservedAt: s.observedAt,
	}
	if s.hasStatus {
		st := string(s.status)
		out.Status = &st
	}
	if s.hasETA {
		eta := s.eta
		out.EstimatedDelivery = &eta
	}
	return json.Marshal(out)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
