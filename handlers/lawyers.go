package handlers

import (
	"net/http"

	"lawsuit_tracker_go/models"

	"github.com/labstack/echo/v4"
)

// CreateLawyer registers a new lawyer
func (h *Handler) CreateLawyer(c echo.Context) error {
	var req CreateLawyerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	lawyer, err := h.lawyers.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Lawyer created successfully", lawyer)
}

// ListLawyers returns a page of lawyers, optionally filtered by status or specialization
func (h *Handler) ListLawyers(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	opts := q.options()
	if q.Status != "" {
		opts.Filter["status"] = q.Status
	}
	if q.Specialization != "" {
		page, err := h.lawyers.GetLawyersBySpecialization(ctx, q.Specialization, opts)
		if err != nil {
			return err
		}
		return paginated(c, "Lawyers retrieved successfully", page)
	}

	page, err := h.lawyers.GetAll(ctx, opts)
	if err != nil {
		return err
	}
	return paginated(c, "Lawyers retrieved successfully", page)
}

// ListActiveLawyers returns lawyers that can take assignments
func (h *Handler) ListActiveLawyers(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}

	page, err := h.lawyers.GetActiveLawyers(c.Request().Context(), q.options())
	if err != nil {
		return err
	}
	return paginated(c, "Active lawyers retrieved successfully", page)
}

// LawyerWorkload returns every lawyer ranked by assigned cases
func (h *Handler) LawyerWorkload(c echo.Context) error {
	report, err := h.lawyers.GetLawyerWorkload(c.Request().Context())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawyer workload retrieved successfully", report)
}

// GetLawyer returns one lawyer
func (h *Handler) GetLawyer(c echo.Context) error {
	lawyer, err := h.lawyers.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawyer retrieved successfully", lawyer)
}

// LawyerStats returns a lawyer with its case breakdown
func (h *Handler) LawyerStats(c echo.Context) error {
	stats, err := h.lawyers.GetLawyerWithStats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawyer statistics retrieved successfully", stats)
}

// LawyerLawsuits returns a page of the lawyer's lawsuits
func (h *Handler) LawyerLawsuits(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}

	opts := q.options()
	if q.Status != "" {
		if !models.IsValidLawsuitStatus(q.Status) {
			return h.lawsuitStatusError(q.Status)
		}
		opts.Filter["status"] = q.Status
	}

	page, err := h.lawyers.GetLawyerLawsuits(c.Request().Context(), c.Param("id"), opts)
	if err != nil {
		return err
	}
	return paginated(c, "Lawyer lawsuits retrieved successfully", page)
}

// UpdateLawyer applies the fields present in the body
func (h *Handler) UpdateLawyer(c echo.Context) error {
	var req UpdateLawyerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	lawyer, err := h.lawyers.Update(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawyer updated successfully", lawyer)
}

// DeleteLawyer removes a lawyer without case history
func (h *Handler) DeleteLawyer(c echo.Context) error {
	if err := h.lawyers.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
