package handlers

import (
	"net/http"
	"strings"

	"lawsuit_tracker_go/apperrors"
	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/services"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) lawsuitStatusError(status string) error {
	return apperrors.FieldInvalid("status", "Invalid status. Must be one of: "+strings.Join(models.LawsuitStatuses(), ", "), status)
}

// CreateLawsuit files a new pending lawsuit
func (h *Handler) CreateLawsuit(c echo.Context) error {
	var req CreateLawsuitRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	lawsuit, err := h.lawsuits.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Lawsuit created successfully", lawsuit)
}

// ListLawsuits returns a page of lawsuits with their lawyer, filtered by
// status, lawyer or case type
func (h *Handler) ListLawsuits(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}

	opts := q.options()
	if q.Status != "" {
		opts.Filter["status"] = q.Status
	}
	if q.CaseType != "" {
		opts.Filter["case_type"] = q.CaseType
	}

	ctx := c.Request().Context()
	if q.LawyerID != "" {
		page, err := h.lawsuits.GetLawsuitsByLawyer(ctx, q.LawyerID, opts)
		if err != nil {
			return err
		}
		return paginated(c, "Lawsuits retrieved successfully", page)
	}

	page, err := h.lawsuits.GetAllWithLawyers(ctx, opts)
	if err != nil {
		return err
	}
	return paginated(c, "Lawsuits retrieved successfully", page)
}

// LawsuitAnalytics returns totals and rates over all lawsuits
func (h *Handler) LawsuitAnalytics(c echo.Context) error {
	analytics, err := h.lawsuits.GetLawsuitAnalytics(c.Request().Context())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawsuit analytics retrieved successfully", analytics)
}

// LawsuitsByStatus returns a page of lawsuits in one lifecycle state
func (h *Handler) LawsuitsByStatus(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}

	page, err := h.lawsuits.GetLawsuitsByStatus(c.Request().Context(), c.Param("status"), q.options())
	if err != nil {
		return err
	}
	return paginated(c, "Lawsuits retrieved successfully", page)
}

// GetLawsuit returns one lawsuit with its lawyer
func (h *Handler) GetLawsuit(c echo.Context) error {
	lawsuit, err := h.lawsuits.GetByID(c.Request().Context(), c.Param("id"), lawyerPreload)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawsuit retrieved successfully", lawsuit)
}

// RecommendLawyer returns the best candidates for the lawsuit
func (h *Handler) RecommendLawyer(c echo.Context) error {
	result, err := h.lawsuits.RecommendLawyer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawyer recommendations generated successfully", result)
}

// UpdateLawsuit applies the fields present in the body
func (h *Handler) UpdateLawsuit(c echo.Context) error {
	var req UpdateLawsuitRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	lawsuit, err := h.lawsuits.Update(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawsuit updated successfully", lawsuit)
}

// AssignLawyer assigns the lawyer in the body to the lawsuit
func (h *Handler) AssignLawyer(c echo.Context) error {
	var req AssignLawyerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	lawsuit, err := h.lawsuits.AssignLawyer(c.Request().Context(), c.Param("id"), req.LawyerID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawyer assigned successfully", lawsuit)
}

// UnassignLawyer returns the lawsuit to the pending queue
func (h *Handler) UnassignLawyer(c echo.Context) error {
	lawsuit, err := h.lawsuits.UnassignLawyer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawyer unassigned successfully", lawsuit)
}

// ResolveLawsuit closes an assigned lawsuit
func (h *Handler) ResolveLawsuit(c echo.Context) error {
	lawsuit, err := h.lawsuits.ResolveLawsuit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Lawsuit resolved successfully", lawsuit)
}

// DeleteLawsuit removes a lawsuit
func (h *Handler) DeleteLawsuit(c echo.Context) error {
	if err := h.lawsuits.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// LawsuitImportTemplate serves the spreadsheet accepted by ImportLawsuits
func (h *Handler) LawsuitImportTemplate(c echo.Context) error {
	buf, err := services.LawsuitImportTemplate()
	if err != nil {
		return err
	}

	c.Response().Header().Set("Content-Disposition", "attachment; filename=lawsuit_import_template.xlsx")
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportLawsuits creates lawsuits from an uploaded spreadsheet
func (h *Handler) ImportLawsuits(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return apperrors.FieldInvalid("file", "No file uploaded", nil)
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	result, err := h.lawsuits.ImportLawsuits(c.Request().Context(), src)
	if err != nil {
		return apperrors.FieldInvalid("file", "File is not a valid spreadsheet", file.Filename)
	}
	return success(c, http.StatusOK, "Lawsuit import finished", result)
}
