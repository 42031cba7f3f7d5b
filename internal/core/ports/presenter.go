package ports

import (
	"context"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
)

// ViewRenderer receives every projection the polling session commits.
type ViewRenderer interface {
	Render(view domain.TrackingView)
}

// MarkerSink accepts marker moves for fan-out. Enqueue must not block.
type MarkerSink interface {
	Enqueue(update domain.MarkerUpdate)
}

// MarkerPublisher delivers one marker move to the live feed backend.
type MarkerPublisher interface {
	Publish(ctx context.Context, update domain.MarkerUpdate) error
}
