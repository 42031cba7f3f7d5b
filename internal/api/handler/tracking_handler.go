package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/core/ports"
)

const mimeGeoJSON = "application/geo+json"

// MapView is the part of the map surface exposed over HTTP.
type MapView interface {
	FeatureCollection() *geojson.FeatureCollection
	Viewport() ports.Viewport
	SetViewport(v ports.Viewport)
}

// MarkerSubscriber streams live marker moves of one subject.
type MarkerSubscriber interface {
	Subscribe(ctx context.Context, subjectID string) (<-chan domain.MarkerUpdate, error)
}

// TrackingHandler exposes the tracking projection and its lifecycle.
type TrackingHandler struct {
	// base outlives requests; sessions started over HTTP are bound to it.
	base    context.Context
	session ports.TrackingSession
	surface MapView
	feed    MarkerSubscriber
	log     zerolog.Logger
}

// NewTrackingHandler builds the handler. feed may be nil when the live feed
// is disabled.
func NewTrackingHandler(base context.Context, session ports.TrackingSession, surface MapView, feed MarkerSubscriber, log zerolog.Logger) *TrackingHandler {
	return &TrackingHandler{base: base, session: session, surface: surface, feed: feed, log: log}
}

// Get handles GET /v1/tracking.
//
// @Summary      Current tracking projection
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  trackingResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/tracking [get]
func (h *TrackingHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, newTrackingResponse(h.session.View()))
}

// Map handles GET /v1/tracking/map.
//
// @Summary      Map composition as GeoJSON
// @Description  Visible marker and route overlays, plus the viewport and notice as foreign members.
// @Tags         tracking
// @Produce      application/geo+json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  errorResponse
// @Router       /v1/tracking/map [get]
func (h *TrackingHandler) Map(c echo.Context) error {
	data, err := h.surface.FeatureCollection().MarshalJSON()
	if err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return c.Blob(http.StatusOK, mimeGeoJSON, data)
}

// Start handles PUT /v1/tracking/subject.
//
// @Summary      Track a shipment
// @Description  Retires the current session, if any, and starts polling the given subject.
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startTrackingRequest  true  "Subject to track"
// @Success      202   {object}  trackingResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tracking/subject [put]
func (h *TrackingHandler) Start(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req startTrackingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.session.Start(h.base, req.SubjectID); err != nil {
		return err
	}
	h.log.Info().Str("actor", actor).Str("subject", strings.TrimSpace(req.SubjectID)).Msg("tracking requested")

	return c.JSON(http.StatusAccepted, newTrackingResponse(h.session.View()))
}

// Stop handles DELETE /v1/tracking/subject.
//
// @Summary      Stop tracking
// @Tags         tracking
// @Security     BearerAuth
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/tracking/subject [delete]
func (h *TrackingHandler) Stop(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}

	view := h.session.View()
	if !view.Active {
		return fmt.Errorf("stop tracking: %w", domain.ErrSessionInactive)
	}
	h.session.Stop()
	h.log.Info().Str("actor", actor).Str("subject", view.SubjectID).Msg("tracking stopped")

	return c.NoContent(http.StatusNoContent)
}

// SetViewport handles PUT /v1/tracking/viewport.
//
// @Summary      Pan and zoom the map
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      viewportRequest  true  "Map center and zoom"
// @Success      200   {object}  viewportResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/tracking/viewport [put]
func (h *TrackingHandler) SetViewport(c echo.Context) error {
	var req viewportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.surface.SetViewport(ports.Viewport{
		Center: domain.LatLng{Lat: *req.Lat, Lng: *req.Lng},
		Zoom:   *req.Zoom,
	})
	vp := h.surface.Viewport()
	return c.JSON(http.StatusOK, viewportResponse{Center: vp.Center, Zoom: vp.Zoom})
}

// Stream handles GET /v1/tracking/stream as server-sent events.
//
// @Summary      Live marker moves
// @Description  One "marker" event per reposition of the tracked subject. Defaults to the active session's subject.
// @Tags         tracking
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        subject_id  query     string  false  "Subject to follow"
// @Success      200
// @Failure      409  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/tracking/stream [get]
func (h *TrackingHandler) Stream(c echo.Context) error {
	if h.feed == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "live feed disabled")
	}

	subject := strings.TrimSpace(c.QueryParam("subject_id"))
	if subject == "" {
		view := h.session.View()
		if !view.Active {
			return fmt.Errorf("stream: %w", domain.ErrSessionInactive)
		}
		subject = view.SubjectID
	}

	updates, err := h.feed.Subscribe(c.Request().Context(), subject)
	if err != nil {
		return err
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	for u := range updates {
		data, err := json.Marshal(u)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: marker\ndata: %s\n\n", data); err != nil {
			// Client went away.
			return nil
		}
		w.Flush()
	}
	return nil
}
