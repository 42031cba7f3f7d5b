package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/tracking-viewer/internal/api/middleware"
)

// ctxActor extracts who is calling from the claims injected by the Auth
// middleware. A missing role means the middleware did not run.
func ctxActor(c echo.Context) (subject, role string, err error) {
	role, _ = c.Get(middleware.CtxRole).(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	subject, _ = c.Get(middleware.CtxSubject).(string)
	return subject, role, nil
}
