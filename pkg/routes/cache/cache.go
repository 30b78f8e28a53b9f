package cache

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// Register registers cache admin routes
func Register(g *echo.Group) {
	g.GET("/stats", Stats)
	g.DELETE("", Invalidate)
}

// Stats returns cache size and hit rate
func Stats(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "cache_handler.Stats")
	defer span.End()

	_, orchestrator, err := ectoinject.GetContext[*matching.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get orchestrator")
	}

	report := orchestrator.GetPerformanceReport()
	return c.JSON(http.StatusOK, map[string]any{
		"size":     report.CacheSize,
		"hit_rate": report.CacheHitRate,
	})
}

// Invalidate clears cached match results. An optional ?pattern= query limits
// the purge to keys containing the pattern.
func Invalidate(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "cache_handler.Invalidate")
	defer span.End()

	_, orchestrator, err := ectoinject.GetContext[*matching.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get orchestrator")
	}

	removed := orchestrator.InvalidateCache(c.QueryParam("pattern"))
	return c.JSON(http.StatusOK, map[string]any{"removed": removed})
}
