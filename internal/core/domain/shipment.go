package domain

import "errors"

// ShipmentStatus is the lifecycle state reported by the backend for a shipment.
type ShipmentStatus string

const (
	StatusCreated     ShipmentStatus = "created"
	StatusPickedUp    ShipmentStatus = "picked_up"
	StatusInWarehouse ShipmentStatus = "in_warehouse"
	StatusInTransit   ShipmentStatus = "in_transit"
	StatusDelivered   ShipmentStatus = "delivered"
	StatusCancelled   ShipmentStatus = "cancelled"
)

var knownStatuses = map[ShipmentStatus]string{
	StatusCreated:     "Created",
	StatusPickedUp:    "Picked up",
	StatusInWarehouse: "In warehouse",
	StatusInTransit:   "In transit",
	StatusDelivered:   "Delivered",
	StatusCancelled:   "Cancelled",
}

var ErrInvalidLocation = errors.New("invalid location")
var ErrInvalidSubject = errors.New("invalid subject id")
var ErrSessionInactive = errors.New("tracking session not active")
var ErrMarkerNotFound = errors.New("marker not found")

// IsKnown reports whether the backend sent one of the statuses we have a label for.
// Unknown statuses are still displayed verbatim.
func (s ShipmentStatus) IsKnown() bool {
	_, ok := knownStatuses[s]
	return ok
}

// Label returns a human-friendly label, falling back to the raw value.
func (s ShipmentStatus) Label() string {
	if l, ok := knownStatuses[s]; ok {
		return l
	}
	return string(s)
}

// Terminal reports whether no further movement is expected.
func (s ShipmentStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}
