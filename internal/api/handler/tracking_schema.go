package handler

import "github.com/99minutos/tracking-viewer/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type startTrackingRequest struct {
	SubjectID string `json:"subject_id" validate:"required,max=128"`
}

// Pointers so that 0 stays a valid latitude, longitude and zoom.
type viewportRequest struct {
	Lat  *float64 `json:"lat"  validate:"required,gte=-90,lte=90"`
	Lng  *float64 `json:"lng"  validate:"required,gte=-180,lte=180"`
	Zoom *int     `json:"zoom" validate:"required,gte=0,lte=22"`
}

type viewportResponse struct {
	Center domain.LatLng `json:"center"`
	Zoom   int           `json:"zoom"`
}

type trackingLinks struct {
	Self   string `json:"self"`
	Map    string `json:"map"`
	Stream string `json:"stream"`
}

type trackingResponse struct {
	domain.TrackingView
	Links trackingLinks `json:"_links"`
}

func newTrackingResponse(v domain.TrackingView) trackingResponse {
	return trackingResponse{
		TrackingView: v,
		Links: trackingLinks{
			Self:   "/v1/tracking",
			Map:    "/v1/tracking/map",
			Stream: "/v1/tracking/stream",
		},
	}
}
