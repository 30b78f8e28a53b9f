package match

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/sage/pkg/context"
	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
	"github.com/Ramsey-B/sage/pkg/utils"
)

// Register registers match routes
func Register(g *echo.Group) {
	g.POST("/batch", Batch)
	g.GET("/report", Report)
}

// Batch matches a batch of inbound items against the tenant's catalog
func Batch(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "match_handler.Batch")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	req, err := utils.BindRequest[models.BatchMatchRequest](c)
	if err != nil {
		return err
	}

	ctx, orchestrator, err := ectoinject.GetContext[*matching.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get orchestrator")
	}

	response, err := orchestrator.MatchBatch(ctx, tenantID, req.Items)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response)
}

// Report returns match throughput, strategy usage, and cache health
func Report(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "match_handler.Report")
	defer span.End()

	_, orchestrator, err := ectoinject.GetContext[*matching.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get orchestrator")
	}

	return c.JSON(http.StatusOK, orchestrator.GetPerformanceReport())
}
