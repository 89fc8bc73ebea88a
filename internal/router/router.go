package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/hall-scheme-editor/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/hall-scheme-editor/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the admin login endpoint and the identity probe.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(handler.AdminRole))
}

// RegisterAdmin registers the seating scheme editor under /v1/admin.  All
// routes require a valid JWT with the ADMIN role; extra middleware such as
// the rate limiter runs after authentication so limits are per user.
func RegisterAdmin(e *echo.Echo, halls *handler.HallHandler, h *handler.SchemeHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.AdminRole),
	}, extra...)
	g := e.Group("/v1/admin", mws...)

	// ---- Halls ----
	g.POST("/halls", halls.CreateHall)
	g.GET("/cinemas/:id/halls", halls.ListHalls)
	g.DELETE("/halls/:id", halls.DeleteHall)
	g.POST("/halls/:id/editor", h.OpenEditor)   // open an editor seeded from the hall
	g.POST("/halls/:id/scheme", h.SubmitScheme) // direct form submission of a payload

	// ---- Editor sessions ----
	g.GET("/editor/:sid", h.GetEditor)
	g.GET("/editor/:sid/view", h.GetEditorView)
	g.POST("/editor/:sid/size", h.ApplySize)
	g.POST("/editor/:sid/clear", h.Clear)
	g.POST("/editor/:sid/seats/toggle", h.ToggleSeat)
	g.POST("/editor/:sid/screen", h.SetScreen)
	g.POST("/editor/:sid/save", h.SaveEditor)
	g.DELETE("/editor/:sid", h.CloseEditor)
}

// RegisterPublic registers unauthenticated read endpoints.  cache wraps the
// scheme lookup so repeated page loads are served from Redis.
func RegisterPublic(e *echo.Echo, h *handler.SchemeHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/halls/:id/scheme", h.GetPublicScheme, cache)
}
