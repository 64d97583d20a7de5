package admin

import (
	"log/slog"
	"net/http"

	adminsvc "github.com/ceciliaMar/Virtual-Library/service/admin"

	"github.com/labstack/echo/v4"
)

// Controller exposes the scheduled jobs for manual triggering.
type Controller struct {
	Svc adminsvc.Service
	Log *slog.Logger
}

// POST /v1/admin/reports/weekly
func (h *Controller) RunWeeklyReport(c echo.Context) error {
	report, err := h.Svc.RunWeeklyReport(c.Request().Context())
	if err != nil {
		h.Log.Error("weekly report", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"report": report})
}

// POST /v1/admin/alerts/overdue
func (h *Controller) RunOverdueAlerts(c echo.Context) error {
	alerts, err := h.Svc.RunOverdueAlertSweep(c.Request().Context())
	if err != nil {
		h.Log.Error("overdue alerts", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"alerts": alerts, "count": len(alerts)})
}
