package ports

import (
	"context"
	"fmt"
	"net/url"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
)

// ResponseReader performs one retrieval of a backend resource. Failures are
// reported through the Outcome kind, never as Go errors, and nothing is retried.
type ResponseReader interface {
	Read(ctx context.Context, path string) domain.Outcome
}

// TrackingPath is the position resource of a subject.
func TrackingPath(subjectID string) string {
	return fmt.Sprintf("/api/containers/%s/tracking", url.PathEscape(subjectID))
}

// RoutePath is the route resource of a subject for the given source.
func RoutePath(source domain.RouteSource, subjectID string) string {
	return fmt.Sprintf("/api/routes/%s/%s", source, url.PathEscape(subjectID))
}
