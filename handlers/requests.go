package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"lawsuit_tracker_go/apperrors"
	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/repository"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CreateLawyerRequest is the body of POST /api/lawyers
type CreateLawyerRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Phone          string `json:"phone" validate:"required,numeric,min=7,max=15"`
	Specialization string `json:"specialization" validate:"required,min=2,max=100"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r CreateLawyerRequest) toModel() *models.Lawyer {
	return &models.Lawyer{
		Name:           strings.TrimSpace(r.Name),
		Email:          strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:          r.Phone,
		Specialization: r.Specialization,
		Status:         r.Status,
	}
}

// UpdateLawyerRequest is the body of PUT /api/lawyers/:id. Absent fields are left unchanged.
type UpdateLawyerRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email          *string `json:"email" validate:"omitempty,email,max=255"`
	Phone          *string `json:"phone" validate:"omitempty,numeric,min=7,max=15"`
	Specialization *string `json:"specialization" validate:"omitempty,min=2,max=100"`
	Status         *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r UpdateLawyerRequest) toPatch() repository.Patch {
	patch := repository.Patch{}
	if r.Name != nil {
		patch["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		patch["email"] = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.Phone != nil {
		patch["phone"] = *r.Phone
	}
	if r.Specialization != nil {
		patch["specialization"] = *r.Specialization
	}
	if r.Status != nil {
		patch["status"] = *r.Status
	}
	return patch
}

// CreateLawsuitRequest is the body of POST /api/lawsuits
type CreateLawsuitRequest struct {
	CaseNumber string `json:"case_number" validate:"required,max=50"`
	Plaintiff  string `json:"plaintiff" validate:"required,min=2,max=200"`
	Defendant  string `json:"defendant" validate:"required,min=2,max=200"`
	CaseType   string `json:"case_type" validate:"required,oneof=civil criminal labor commercial"`
}

func (r CreateLawsuitRequest) toModel() *models.Lawsuit {
	return &models.Lawsuit{
		CaseNumber: strings.TrimSpace(r.CaseNumber),
		Plaintiff:  strings.TrimSpace(r.Plaintiff),
		Defendant:  strings.TrimSpace(r.Defendant),
		CaseType:   r.CaseType,
	}
}

// UpdateLawsuitRequest is the body of PUT /api/lawsuits/:id. Assignment has its own endpoint.
type UpdateLawsuitRequest struct {
	CaseNumber *string `json:"case_number" validate:"omitempty,max=50"`
	Plaintiff  *string `json:"plaintiff" validate:"omitempty,min=2,max=200"`
	Defendant  *string `json:"defendant" validate:"omitempty,min=2,max=200"`
	CaseType   *string `json:"case_type" validate:"omitempty,oneof=civil criminal labor commercial"`
	Status     *string `json:"status" validate:"omitempty,oneof=pending"`
}

func (r UpdateLawsuitRequest) toPatch() repository.Patch {
	patch := repository.Patch{}
	if r.CaseNumber != nil {
		patch["case_number"] = strings.TrimSpace(*r.CaseNumber)
	}
	if r.Plaintiff != nil {
		patch["plaintiff"] = strings.TrimSpace(*r.Plaintiff)
	}
	if r.Defendant != nil {
		patch["defendant"] = strings.TrimSpace(*r.Defendant)
	}
	if r.CaseType != nil {
		patch["case_type"] = *r.CaseType
	}
	if r.Status != nil {
		patch["status"] = *r.Status
	}
	return patch
}

// AssignLawyerRequest is the body of PUT /api/lawsuits/:id/assign
type AssignLawyerRequest struct {
	LawyerID string `json:"lawyer_id" validate:"required,uuid"`
}

// listQuery holds the pagination and filter query parameters shared by list endpoints
type listQuery struct {
	Page           int    `query:"page" json:"page" validate:"omitempty,min=1"`
	Limit          int    `query:"limit" json:"limit" validate:"omitempty,min=1"`
	Status         string `query:"status" json:"status"`
	Specialization string `query:"specialization" json:"specialization"`
	LawyerID       string `query:"lawyer_id" json:"lawyer_id" validate:"omitempty,uuid"`
	CaseType       string `query:"case_type" json:"case_type"`
}

func (q listQuery) options() repository.ListOptions {
	return repository.ListOptions{Page: q.Page, Limit: q.Limit, Filter: map[string]any{}}
}

// bindBody decodes the JSON body into req and validates it
func bindBody(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
		return apperrors.NewValidationError("Invalid request body")
	}
	return validateStruct(req)
}

// bindQuery decodes the list query parameters
func bindQuery(c echo.Context) (listQuery, error) {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return q, apperrors.NewValidationError("Invalid query parameters")
	}
	return q, validateStruct(&q)
}

func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error())
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if field == "" {
			field = strings.ToLower(fe.StructField())
		}
		fields = append(fields, apperrors.FieldError{
			Field:   field,
			Message: fieldMessage(field, fe),
			Value:   fe.Value(),
		})
	}
	return apperrors.NewValidationError("", fields...)
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email format"
	case "numeric":
		return fmt.Sprintf("%s must contain only numbers", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "min":
		if fe.Kind() == reflect.Int {
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Int {
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
