package handlers

import (
	"log/slog"

	"lawsuit_tracker_go/container"
	"lawsuit_tracker_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Handler serves the JSON API over the lawyer and lawsuit services
type Handler struct {
	lawyers  *services.LawyerService
	lawsuits *services.LawsuitService
	reports  *services.WorkloadReporter
	db       *gorm.DB
	log      *slog.Logger
}

// New resolves the services it needs from app
func New(app *container.App, conn *gorm.DB, log *slog.Logger) (*Handler, error) {
	lawyers, err := app.Lawyers()
	if err != nil {
		return nil, err
	}
	lawsuits, err := app.Lawsuits()
	if err != nil {
		return nil, err
	}
	reports, err := app.Reporter()
	if err != nil {
		return nil, err
	}
	return &Handler{lawyers: lawyers, lawsuits: lawsuits, reports: reports, db: conn, log: log}, nil
}

// Register mounts every route on e. Middleware in mw wraps the /api group.
func (h *Handler) Register(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)

	api := e.Group("/api", mw...)

	lawyers := api.Group("/lawyers")
	{
		lawyers.POST("", h.CreateLawyer)
		lawyers.GET("", h.ListLawyers)
		lawyers.GET("/active", h.ListActiveLawyers)
		lawyers.GET("/workload", h.LawyerWorkload)
		lawyers.GET("/:id", h.GetLawyer)
		lawyers.GET("/:id/stats", h.LawyerStats)
		lawyers.GET("/:id/lawsuits", h.LawyerLawsuits)
		lawyers.PUT("/:id", h.UpdateLawyer)
		lawyers.DELETE("/:id", h.DeleteLawyer)
	}

	lawsuits := api.Group("/lawsuits")
	{
		lawsuits.POST("", h.CreateLawsuit)
		lawsuits.GET("", h.ListLawsuits)
		lawsuits.GET("/analytics", h.LawsuitAnalytics)
		lawsuits.GET("/status/:status", h.LawsuitsByStatus)
		lawsuits.GET("/import/template", h.LawsuitImportTemplate)
		lawsuits.POST("/import", h.ImportLawsuits)
		lawsuits.GET("/:id", h.GetLawsuit)
		lawsuits.GET("/:id/recommendations", h.RecommendLawyer)
		lawsuits.PUT("/:id", h.UpdateLawsuit)
		lawsuits.PUT("/:id/assign", h.AssignLawyer)
		lawsuits.PUT("/:id/unassign", h.UnassignLawyer)
		lawsuits.PUT("/:id/resolve", h.ResolveLawsuit)
		lawsuits.DELETE("/:id", h.DeleteLawsuit)
	}

	api.GET("/reports/workload.xlsx", h.WorkloadWorkbook)
}
