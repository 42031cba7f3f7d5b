package ports

import (
	"context"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
)

// TrackingSession is the lifecycle surface of the polling session.
type TrackingSession interface {
	// Start begins polling subjectID, retiring any session already running.
	Start(ctx context.Context, subjectID string) error
	// Stop ends polling; no state update happens after it returns.
	Stop()
	View() domain.TrackingView
}
