package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lawsuit_tracker_go/db"
	"lawsuit_tracker_go/repository"

	"github.com/labstack/echo/v4"
)

var lawyerPreload = repository.Preload{Association: "Lawyer", Columns: []string{"id", "name", "specialization"}}

// WorkloadWorkbook downloads the workload report as a spreadsheet
func (h *Handler) WorkloadWorkbook(c echo.Context) error {
	buf, err := h.reports.BuildWorkbook(c.Request().Context())
	if err != nil {
		return err
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=workload_report_%s.xlsx", time.Now().Format("20060102_150405")))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Health reports whether the database answers
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, h.db); err != nil {
		h.log.ErrorContext(ctx, "health check failed", "error", err.Error())
		return c.JSON(http.StatusServiceUnavailable, Response{
			Status:  "error",
			Message: "Database unavailable",
			Data:    map[string]string{"database": "down"},
		})
	}
	return success(c, http.StatusOK, "OK", map[string]string{"database": "up"})
}
