package ports

import "github.com/99minutos/tracking-viewer/internal/core/domain"

// MarkerHandle addresses one marker object inside a MapSurface.
type MarkerHandle uint64

// Viewport is the user-controlled part of the map (pan and zoom).
type Viewport struct {
	Center domain.LatLng `json:"center"`
	Zoom   int           `json:"zoom"`
}

// MapSurface is the long-lived map composition hosting markers and route
// overlays. It is built once; data updates only mutate objects inside it.
type MapSurface interface {
	AddMarker(at domain.LatLng) MarkerHandle
	MoveMarker(h MarkerHandle, at domain.LatLng) error
	SetMarkerVisible(h MarkerHandle, visible bool) error
	RemoveMarker(h MarkerHandle) error
	SetPopup(h MarkerHandle, text string) error
	SetOverlay(route domain.RouteGeometry)
	ClearOverlays()
	SetNotice(text string)
}
